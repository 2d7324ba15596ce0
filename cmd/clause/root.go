package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-clause/internal/config"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

// cli holds state shared by all commands
type cli struct {
	viper      *viper.Viper
	configPath string
	settings   *config.Settings
	logger     *clause.Logger
	engine     *clause.Engine
}

func newRootCommand() *cobra.Command {
	c := &cli{viper: config.New()}

	rootCmd := &cobra.Command{
		Use:   "clause",
		Short: "Contract template merge engine",
		Long: `clause renders contract templates written in HTML with two marker kinds:

  {{FIELD:<id>:<hint>}}  a blank the reader fills in
  {{COND:<id>}}          text chosen by a questionnaire answer

Examples:
  clause import contract.docx -o contract.html
  clause detect contract.html
  clause render contract.html -q questionnaire.yaml -a payment=postpaid
  clause export contract.html -q questionnaire.json --target word -o contract.doc
  clause serve --addr :8080`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initialize,
	}

	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./clause.yaml or $HOME/.config/clause/clause.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error, off")
	c.viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newRenderCommand(c),
		newDetectCommand(c),
		newImportCommand(c),
		newExportCommand(c),
		newValidateCommand(c),
		newServeCommand(c),
		newVersionCommand(),
	)
	return rootCmd
}

func (c *cli) initialize(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(c.viper, c.configPath)
	if err != nil {
		return err
	}
	c.settings = settings

	clause.SetGlobalConfig(&settings.Engine)
	c.logger = clause.NewLogger(cmd.ErrOrStderr(), clause.ParseLogLevel(settings.Engine.LogLevel))
	clause.SetLogger(c.logger)
	c.engine = clause.NewWithConfig(&settings.Engine).WithLogger(c.logger)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clause version %s\n", Version)
		},
	}
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// loadQuestionnaire reads a JSON or YAML questionnaire. An empty path gives an
// empty questionnaire.
func loadQuestionnaire(path string) (*clause.Questionnaire, error) {
	if path == "" {
		return clause.NewQuestionnaire(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return clause.ParseQuestionnaireYAML(data)
	default:
		return clause.ParseQuestionnaire(string(data))
	}
}

// parsePairs turns ["k=v", ...] into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[k] = v
	}
	return out, nil
}
