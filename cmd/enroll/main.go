package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/config"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/tui/theme"
)

const (
	logoText1 = "█▀▀ █▄ █ █▀█ █▀█ █   █  "
	logoText2 = "██▄ █ ▀█ █▀▄ █▄█ █▄▄ █▄▄"
)

// Version set via ldflags during build
var version = "dev"

// Global flags shared by every command.
var rootFlags struct {
	endpoint string
	dataDir  string
	token    string
}

// cfg is loaded once before any command runs.
var cfg *config.Config

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "enroll",
	Short:             "Enroll students for a free trial lesson",
	PersistentPreRunE: loadConfig,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	return strings.Join([]string{
		gradient(logoText1, t.Primary, t.Secondary),
		gradient(logoText2, t.Primary, t.Secondary),
	}, "\n")
}

func gradient(text, from, to string) string {
	runes := []rune(text)
	var sb strings.Builder
	for i, r := range runes {
		c := theme.InterpolateColor(from, to, float64(i)/float64(len(runes)))
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(string(r)))
	}
	return sb.String()
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

enroll walks a parent or student through the three-step free trial
enrollment (contact, learning preferences, schedule) and submits it to the
student API. Failed submissions are kept as drafts, every attempt is logged
to an embedded NATS JetStream history, and the same validation and
submission is offered to agents as MCP tools.`

	rootCmd.PersistentFlags().StringVar(&rootFlags.endpoint, "endpoint", "", "Student API base URL (default: from config)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory for session, drafts and history (default: .enroll)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.token, "token", "", "Bearer token, overrides the saved login")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(optionsCmd)
}

// loadConfig reads .env, the config files and the environment, then applies
// the global flags on top.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if rootFlags.endpoint != "" {
		loaded.Endpoint = rootFlags.endpoint
	}
	if rootFlags.dataDir != "" {
		loaded.DataDir = rootFlags.dataDir
	}
	if rootFlags.token != "" {
		loaded.AuthToken = rootFlags.token
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	if err := logger.Configure(loaded.LogLevel, loaded.LogFile); err != nil {
		return err
	}
	cfg = loaded
	logger.Debug("Loaded config: endpoint=%s data_dir=%s", cfg.Endpoint, cfg.DataDir)
	return nil
}
