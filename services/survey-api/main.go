package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gardners/surveysystem-sub000/pkg/apihelpers"
	"github.com/gardners/surveysystem-sub000/pkg/filestore"
	httpclient "github.com/gardners/surveysystem-sub000/pkg/http-client"
	"github.com/gardners/surveysystem-sub000/pkg/survey/nextquestion"
	"github.com/gardners/surveysystem-sub000/services/survey-api/apihandlers"
)

var conf SurveyApiConfig

func main() {
	store := filestore.NewStore(conf.SurveyData.RootDir)

	var hook nextquestion.HookCaller
	if conf.NextQuestionsHook != nil && conf.NextQuestionsHook.URL != "" {
		hook = httpclient.ClientConfig{
			RootURL: conf.NextQuestionsHook.URL,
			APIKey:  conf.NextQuestionsHook.APIKey,
			Timeout: time.Duration(conf.NextQuestionsHook.Timeout) * time.Second,
		}
	}

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "If-Match"},
		ExposeHeaders:    []string{"Content-Type", "Content-Length", "ETag"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		store,
		nextquestion.NewDispatcher(hook),
		conf.AuthConfig.TrustedMiddlewareAuthority,
		conf.AuthConfig.RespondentJWTSignKey,
		conf.ReturnErrorTrace,
	)
	v1APIHandlers.AddSessionAPI(v1Root)

	// Start the server
	slog.Info("Starting Survey API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Survey API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Survey API", slog.String("error", err.Error()))
			return
		}
	}
}
