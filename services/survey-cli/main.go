package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gardners/surveysystem-sub000/pkg/utils"
)

const ENV_SURVEY_DATA_ROOT = "SURVEY_DATA_ROOT"

var (
	dataRoot string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "survey-cli",
	Short: "Administrative tool for the survey session engine",
	Long: `survey-cli manages survey sessions directly on the data directory.
Unlike the HTTP API it may remove sessions; there is no remote deletion
policy, removal is an operator decision.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(logLevel, false, false, "", 0, 0, 0, false)
		if dataRoot == "" {
			dataRoot = os.Getenv(ENV_SURVEY_DATA_ROOT)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "survey data root directory (defaults to $SURVEY_DATA_ROOT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(surveyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
