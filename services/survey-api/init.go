package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/gardners/surveysystem-sub000/pkg/apihelpers"
	"github.com/gardners/surveysystem-sub000/pkg/survey/nextquestion"
	"github.com/gardners/surveysystem-sub000/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_TRUSTED_MIDDLEWARE_AUTHORITY = "TRUSTED_MIDDLEWARE_AUTHORITY"
	ENV_RESPONDENT_JWT_SIGN_KEY      = "RESPONDENT_JWT_SIGN_KEY"
	ENV_NEXTQUESTION_HOOK_API_KEY    = "NEXTQUESTION_HOOK_API_KEY"
	ENV_SURVEY_DATA_ROOT             = "SURVEY_DATA_ROOT"
)

type SurveyApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// Survey data configs
	SurveyData struct {
		// RootDir holds surveys/, sessions/ and locks/.
		RootDir string `json:"root_dir" yaml:"root_dir"`
	} `json:"survey_data" yaml:"survey_data"`

	AuthConfig struct {
		// TrustedMiddlewareAuthority is the authority string a trusted
		// reverse proxy asserts; empty disables the trusted mode.
		TrustedMiddlewareAuthority string `json:"trusted_middleware_authority" yaml:"trusted_middleware_authority"`
		// RespondentJWTSignKey enables bearer-token identity extraction
		// when set.
		RespondentJWTSignKey string `json:"respondent_jwt_sign_key" yaml:"respondent_jwt_sign_key"`
	} `json:"auth_config" yaml:"auth_config"`

	// NextQuestionsHook configures the external scripted selection service.
	NextQuestionsHook *nextquestion.HookServiceConfig `json:"next_questions_hook" yaml:"next_questions_hook"`

	// ReturnErrorTrace includes the request's diagnostic trace in error
	// responses, for debugging deployments only.
	ReturnErrorTrace bool `json:"return_error_trace" yaml:"return_error_trace"`
}

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	if conf.SurveyData.RootDir == "" {
		panic("survey data root directory is not configured")
	}

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if authority := os.Getenv(ENV_TRUSTED_MIDDLEWARE_AUTHORITY); authority != "" {
		conf.AuthConfig.TrustedMiddlewareAuthority = authority
	}

	if signKey := os.Getenv(ENV_RESPONDENT_JWT_SIGN_KEY); signKey != "" {
		conf.AuthConfig.RespondentJWTSignKey = signKey
	}

	if apiKey := os.Getenv(ENV_NEXTQUESTION_HOOK_API_KEY); apiKey != "" {
		if conf.NextQuestionsHook != nil {
			conf.NextQuestionsHook.APIKey = apiKey
		}
	}

	if rootDir := os.Getenv(ENV_SURVEY_DATA_ROOT); rootDir != "" {
		conf.SurveyData.RootDir = rootDir
	}
}
