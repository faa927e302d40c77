// Package cli defines the cobra command tree for compsight.
package cli

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"compsight/server/config"
	"compsight/server/internal/guidelines"
)

var flagFormat string

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compsight",
		Short:         "Comparable property valuation engine",
		Long:          "Find comparable sales for a subject property, apply appraisal-style adjustments, and estimate market value. Runs one-off analyses from JSON files or serves the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")

	root.AddCommand(
		newAnalyzeCmd(),
		newGuidelineCmd(),
		newServeCmd(),
	)

	return root
}

// newLogger builds the shared logrus logger. CLI runs log text to stderr so
// stdout stays parseable.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return logger
}

// loadConfig loads configuration from the environment.
func loadConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// openGuidelines opens the guidelines store at the configured path.
func openGuidelines(cfg *config.Config, logger *logrus.Logger) (*guidelines.Store, error) {
	return guidelines.NewStore(cfg.Guidelines.Path, logger)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
