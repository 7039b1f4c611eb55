package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/gardners/surveysystem-sub000/pkg/apihelpers/middlewares"
	"github.com/gardners/surveysystem-sub000/pkg/filestore"
	"github.com/gardners/surveysystem-sub000/pkg/survey/nextquestion"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	store            *filestore.Store
	dispatcher       *nextquestion.Dispatcher
	trustedAuthority string
	tokenSignKey     string
	returnErrorTrace bool
}

func NewHTTPHandler(
	store *filestore.Store,
	dispatcher *nextquestion.Dispatcher,
	trustedAuthority string,
	tokenSignKey string,
	returnErrorTrace bool,
) *HttpEndpoints {
	return &HttpEndpoints{
		store:            store,
		dispatcher:       dispatcher,
		trustedAuthority: trustedAuthority,
		tokenSignKey:     tokenSignKey,
		returnErrorTrace: returnErrorTrace,
	}
}

func (h *HttpEndpoints) AddSessionAPI(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	if h.trustedAuthority != "" {
		sessions.Use(mw.HasTrustedMiddlewareAuthority(h.trustedAuthority))
	}
	if h.tokenSignKey != "" {
		sessions.Use(mw.GetAndValidateRespondentJWT(h.tokenSignKey))
	}

	sessions.POST("", h.createSession)
	sessions.GET("/:sessionID/questions", h.getNextQuestions)
	sessions.POST("/:sessionID/answers", mw.RequirePayload(), h.addAnswer)
	sessions.DELETE("/:sessionID/answers/:questionID", h.deleteAnswer)
	sessions.GET("/:sessionID/analysis", h.getAnalysis)
	sessions.DELETE("/:sessionID", h.deleteSession)
}
