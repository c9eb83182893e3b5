package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/submission"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".enroll.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
type Variables struct {
	PayloadID  string
	Name       string
	Email      string
	TrialStart string
	Status     string
	StatusCode string
	Message    string
	ReceiptID  string
}

// VariablesFor maps a submission event to hook variables.
func VariablesFor(e submission.Event) Variables {
	v := Variables{
		PayloadID:  e.PayloadID,
		Name:       e.Name,
		Email:      e.Email,
		TrialStart: e.TrialStart,
		Status:     e.Type,
		Message:    e.Message,
		ReceiptID:  e.ReceiptID,
	}
	if e.StatusCode != 0 {
		v.StatusCode = strconv.Itoa(e.StatusCode)
	}
	return v
}

// Execute runs a hook command with stdin as its input and returns its
// output. Template variables in the command ({{email}}, {{payload_id}}, ...)
// are expanded single-quoted before execution.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables, stdin []byte) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	// Execute command via shell
	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Check for context cancellation (propagate this)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	// Handle command failure (graceful degradation - include error in output)
	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return output, nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
// Values come from user input and are shell-quoted.
func expandVariables(command string, vars Variables) string {
	replacements := map[string]string{
		"{{payload_id}}":  vars.PayloadID,
		"{{name}}":        vars.Name,
		"{{email}}":       vars.Email,
		"{{trial_start}}": vars.TrialStart,
		"{{status}}":      vars.Status,
		"{{status_code}}": vars.StatusCode,
		"{{message}}":     vars.Message,
		"{{receipt_id}}":  vars.ReceiptID,
	}

	result := command
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, shellQuote(value))
	}
	return result
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Runner runs the configured hooks for submission outcomes. It implements
// submission.Recorder; attempts are ignored.
type Runner struct {
	cfg     *Config
	workDir string
}

// NewRunner returns a runner, or nil when cfg has no hooks.
func NewRunner(cfg *Config, workDir string) *Runner {
	if cfg == nil || (len(cfg.Hooks.OnSuccess) == 0 && len(cfg.Hooks.OnFailure) == 0) {
		return nil
	}
	return &Runner{cfg: cfg, workDir: workDir}
}

// Record runs the hooks for e in order, each with the event JSON on stdin.
// Hook failures are logged, never returned.
func (r *Runner) Record(ctx context.Context, e submission.Event) error {
	var list []*HookConfig
	switch e.Type {
	case submission.EventSuccess:
		list = r.cfg.Hooks.OnSuccess
	case submission.EventFailure:
		list = r.cfg.Hooks.OnFailure
	default:
		return nil
	}

	input, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	vars := VariablesFor(e)
	for _, hook := range list {
		out, err := Execute(ctx, hook, r.workDir, vars, input)
		if err != nil {
			return err
		}
		if out != "" {
			logger.Info("Hook %q output: %s", hook.Command, strings.TrimSpace(out))
		}
	}
	return nil
}
