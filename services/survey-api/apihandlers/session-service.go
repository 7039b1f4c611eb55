package apihandlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gardners/surveysystem-sub000/pkg/errtrace"
	"github.com/gardners/surveysystem-sub000/pkg/filestore"
	"github.com/gardners/surveysystem-sub000/pkg/survey/serialize"
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

type createSessionReq struct {
	SurveyID string `json:"survey_id"`
}

func (h *HttpEndpoints) createSession(c *gin.Context) {
	trace := errtrace.New()

	surveyName := c.Query("surveyid")
	if surveyName == "" {
		var req createSessionReq
		if err := c.ShouldBindJSON(&req); err == nil {
			surveyName = req.SurveyID
		}
	}
	if err := validate.SurveyID(surveyName); err != nil {
		h.respondError(c, trace, err)
		return
	}

	sessionID := filestore.NewSessionID()

	locks := filestore.NewLockManager(h.store.Paths)
	defer locks.ReleaseAll()
	if err := locks.LockSession(sessionID); err != nil {
		h.respondError(c, trace, err)
		return
	}

	ses, err := h.store.Create(surveyName, sessionID, h.sessionMeta(c))
	if err != nil {
		trace.AddError("create session", err)
		h.respondError(c, trace, err)
		return
	}

	setConsistencyETag(c, ses)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": ses.SessionID,
		"survey_id":  ses.SurveyID,
	})
}

func (h *HttpEndpoints) getNextQuestions(c *gin.Context) {
	trace := errtrace.New()
	sessionID := c.Param("sessionID")

	locks := filestore.NewLockManager(h.store.Paths)
	defer locks.ReleaseAll()
	if err := locks.LockSession(sessionID); err != nil {
		h.respondError(c, trace, err)
		return
	}

	ses, err := h.store.Load(sessionID)
	if err != nil {
		trace.AddError("load session", err)
		h.respondError(c, trace, err)
		return
	}
	if err := validate.SessionAction(validate.ActionNextQuestions, ses.State); err != nil {
		h.respondError(c, trace, err)
		return
	}

	stateBefore := ses.State
	nq, err := h.dispatcher.GetNextQuestions(ses, validate.ActionNextQuestions, 0)
	if err != nil {
		trace.AddError("next questions", err)
		h.respondError(c, trace, err)
		return
	}
	if ses.State != stateBefore {
		if err := h.store.Save(ses); err != nil {
			trace.AddError("save session", err)
			h.respondError(c, trace, err)
			return
		}
	}

	setConsistencyETag(c, ses)
	c.JSON(http.StatusOK, newNextQuestionsResponse(ses, nq))
}

type addAnswerReq struct {
	// Answer is a public-scope serialized answer line.
	Answer string `json:"answer"`
}

func (h *HttpEndpoints) addAnswer(c *gin.Context) {
	trace := errtrace.New()
	sessionID := c.Param("sessionID")

	var req addAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload must contain a serialized answer"})
		return
	}

	ans, err := serialize.DeserializeAnswer(req.Answer, serialize.ScopePublic)
	if err != nil {
		trace.AddError("deserialize answer", err)
		h.respondError(c, trace, err)
		return
	}

	locks := filestore.NewLockManager(h.store.Paths)
	defer locks.ReleaseAll()
	if err := locks.LockSession(sessionID); err != nil {
		h.respondError(c, trace, err)
		return
	}

	ses, err := h.store.Load(sessionID)
	if err != nil {
		trace.AddError("load session", err)
		h.respondError(c, trace, err)
		return
	}
	if err := validate.SessionAction(validate.ActionAddAnswer, ses.State); err != nil {
		h.respondError(c, trace, err)
		return
	}
	// A stale consistency hash means another device already moved this
	// session on; reject rather than merge. The header is optional on add.
	if err := checkConsistencyHash(c, ses, false); err != nil {
		h.respondError(c, trace, err)
		return
	}

	q := ses.QuestionByUID(ans.UID)
	if q == nil {
		h.respondError(c, trace, fmt.Errorf("%w: '%s'", filestore.ErrNoSuchQuestion, ans.UID))
		return
	}
	if err := validate.AnswerStructure(q, ans); err != nil {
		h.respondError(c, trace, err)
		return
	}

	affected, err := h.store.AddAnswer(ses, ans)
	if err != nil {
		trace.AddError("add answer", err)
		h.respondError(c, trace, err)
		return
	}

	nq, err := h.dispatcher.GetNextQuestions(ses, validate.ActionAddAnswer, affected)
	if err != nil {
		trace.AddError("next questions", err)
		h.respondError(c, trace, err)
		return
	}

	if err := h.store.Save(ses); err != nil {
		trace.AddError("save session", err)
		h.respondError(c, trace, err)
		return
	}

	setConsistencyETag(c, ses)
	c.JSON(http.StatusOK, newNextQuestionsResponse(ses, nq))
}

func (h *HttpEndpoints) deleteAnswer(c *gin.Context) {
	trace := errtrace.New()
	sessionID := c.Param("sessionID")
	questionID := c.Param("questionID")

	locks := filestore.NewLockManager(h.store.Paths)
	defer locks.ReleaseAll()
	if err := locks.LockSession(sessionID); err != nil {
		h.respondError(c, trace, err)
		return
	}

	ses, err := h.store.Load(sessionID)
	if err != nil {
		trace.AddError("load session", err)
		h.respondError(c, trace, err)
		return
	}
	if err := validate.SessionAction(validate.ActionDeleteAnswer, ses.State); err != nil {
		h.respondError(c, trace, err)
		return
	}
	// Deleting by previous answer always requires the precondition token.
	if err := checkConsistencyHash(c, ses, true); err != nil {
		h.respondError(c, trace, err)
		return
	}

	affected, err := h.store.DeleteAnswer(ses, questionID)
	if err != nil {
		trace.AddError("delete answer", err)
		h.respondError(c, trace, err)
		return
	}

	nq, err := h.dispatcher.GetNextQuestions(ses, validate.ActionDeleteAnswer, -affected)
	if err != nil {
		trace.AddError("next questions", err)
		h.respondError(c, trace, err)
		return
	}

	if err := h.store.Save(ses); err != nil {
		trace.AddError("save session", err)
		h.respondError(c, trace, err)
		return
	}

	setConsistencyETag(c, ses)
	c.JSON(http.StatusOK, newNextQuestionsResponse(ses, nq))
}

func (h *HttpEndpoints) getAnalysis(c *gin.Context) {
	trace := errtrace.New()
	sessionID := c.Param("sessionID")

	locks := filestore.NewLockManager(h.store.Paths)
	defer locks.ReleaseAll()
	if err := locks.LockSession(sessionID); err != nil {
		h.respondError(c, trace, err)
		return
	}

	ses, err := h.store.Load(sessionID)
	if err != nil {
		trace.AddError("load session", err)
		h.respondError(c, trace, err)
		return
	}
	if err := validate.SessionAction(validate.ActionAnalysis, ses.State); err != nil {
		h.respondError(c, trace, err)
		return
	}

	analysis, err := h.dispatcher.GetAnalysis(ses)
	if err != nil {
		trace.AddError("analysis", err)
		h.respondError(c, trace, err)
		return
	}

	setConsistencyETag(c, ses)
	c.JSON(http.StatusOK, analysis)
}

// deleteSession always refuses: there is no deletion policy on the request
// path, removing sessions is an administrative CLI operation.
func (h *HttpEndpoints) deleteSession(c *gin.Context) {
	trace := errtrace.New()
	if err := validate.SessionAction(validate.ActionDeleteSession, types.StateOpen); err != nil {
		h.respondError(c, trace, err)
		return
	}
}
