package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gardners/surveysystem-sub000/pkg/apihelpers"
	"github.com/gardners/surveysystem-sub000/pkg/errtrace"
	"github.com/gardners/surveysystem-sub000/pkg/filestore"
	jwthandling "github.com/gardners/surveysystem-sub000/pkg/jwt-handling"
	"github.com/gardners/surveysystem-sub000/pkg/survey/nextquestion"
	"github.com/gardners/surveysystem-sub000/pkg/survey/serialize"
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

// questionInfo is the client-facing rendering of a question.
type questionInfo struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	TitleText    string   `json:"title_text"`
	Type         string   `json:"type"`
	DefaultValue string   `json:"default_value"`
	MinValue     int64    `json:"min_value"`
	MaxValue     int64    `json:"max_value"`
	Choices      []string `json:"choices"`
	Unit         string   `json:"unit"`
}

type nextQuestionsResponse struct {
	SessionID     string         `json:"session_id"`
	Status        int            `json:"status"`
	Message       string         `json:"message"`
	Progress      [2]int         `json:"progress"`
	NextQuestions []questionInfo `json:"next_questions"`
}

func newNextQuestionsResponse(ses *types.Session, nq *nextquestion.NextQuestions) nextQuestionsResponse {
	resp := nextQuestionsResponse{
		SessionID:     ses.SessionID,
		Status:        nq.Status,
		Message:       nq.Message,
		Progress:      nq.Progress,
		NextQuestions: []questionInfo{},
	}
	for _, q := range nq.Next {
		info := questionInfo{
			ID:           q.UID,
			Title:        q.QuestionHTML,
			TitleText:    q.QuestionText,
			Type:         q.Type.String(),
			DefaultValue: q.DefaultValue,
			MinValue:     q.MinValue,
			MaxValue:     q.MaxValue,
			Choices:      []string{},
			Unit:         q.Unit,
		}
		if q.Choices != "" {
			info.Choices = strings.Split(q.Choices, ",")
		}
		resp.NextQuestions = append(resp.NextQuestions, info)
	}
	return resp
}

// respondError maps the engine's error categories onto HTTP statuses and
// optionally attaches the request's diagnostic trace.
func (h *HttpEndpoints) respondError(c *gin.Context, trace *errtrace.Trace, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, filestore.ErrConsistencyMismatch),
		errors.Is(err, filestore.ErrMissingStateHeader):
		status = http.StatusPreconditionFailed
	case errors.Is(err, filestore.ErrSessionNotFound),
		errors.Is(err, filestore.ErrSurveyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, validate.ErrIllegalAction):
		status = http.StatusForbidden
	case errors.Is(err, filestore.ErrAlreadyAnswered):
		status = http.StatusConflict
	case errors.Is(err, validate.ErrInvalidSessionID),
		errors.Is(err, validate.ErrInvalidSurveyID),
		errors.Is(err, validate.ErrInvalidValue),
		errors.Is(err, validate.ErrOutOfRange),
		errors.Is(err, filestore.ErrHeaderAnswer),
		errors.Is(err, filestore.ErrNoSuchQuestion),
		errors.Is(err, serialize.ErrFieldCount),
		errors.Is(err, serialize.ErrRawNewline),
		errors.Is(err, serialize.ErrInvalidEscape),
		errors.Is(err, serialize.ErrInvalidInteger):
		status = http.StatusBadRequest
	case errors.Is(err, nextquestion.ErrHookNotConfigured),
		errors.Is(err, nextquestion.ErrHookReply),
		errors.Is(err, nextquestion.ErrHookUnknownQuestion):
		status = http.StatusBadGateway
	}

	slog.Error("session request failed", slog.String("error", err.Error()), slog.Int("status", status))

	resp := apihelpers.ErrorResponse{Error: err.Error()}
	if h.returnErrorTrace && trace != nil {
		resp.Trace = trace.Entries()
	}
	c.JSON(status, resp)
	c.Abort()
}

// sessionMeta derives the identity header values for a new session from
// the request context: validated JWT claims when present, the trusted
// middleware authority when configured, otherwise the public client
// address.
func (h *HttpEndpoints) sessionMeta(c *gin.Context) filestore.SessionMeta {
	meta := filestore.SessionMeta{
		Provider:  types.AuthorityHTTPPublic,
		Authority: c.ClientIP(),
	}
	if h.trustedAuthority != "" {
		meta.Provider = types.AuthorityHTTPTrusted
		meta.Authority = h.trustedAuthority
	}
	if raw, ok := c.Get("validatedToken"); ok {
		if claims, ok := raw.(*jwthandling.RespondentClaims); ok {
			meta.User = claims.UserID
			meta.Group = claims.Group
		}
	}
	return meta
}

// checkConsistencyHash validates the If-Match precondition against the
// loaded session. When required is false a missing header passes.
func checkConsistencyHash(c *gin.Context, ses *types.Session, required bool) error {
	ifMatch := strings.Trim(c.GetHeader("If-Match"), `"`)
	if ifMatch == "" {
		if required {
			return errors.New("missing If-Match consistency hash header")
		}
		return nil
	}
	if ifMatch != ses.ConsistencyHash {
		return filestore.ErrConsistencyMismatch
	}
	return nil
}

func setConsistencyETag(c *gin.Context, ses *types.Session) {
	c.Header("ETag", `"`+ses.ConsistencyHash+`"`)
}
