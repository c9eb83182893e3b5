package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alf-academy/enroll/internal/submission"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil || cfg != nil {
		t.Fatalf("LoadConfig() without file = %v, %v; want nil, nil", cfg, err)
	}

	content := "version: 1\nhooks:\n  on_success:\n    - command: echo ok\n      timeout: 5\n  on_failure:\n    - command: echo fail\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Hooks.OnSuccess) != 1 || cfg.Hooks.OnSuccess[0].Timeout != 5 {
		t.Errorf("unexpected on_success hooks: %+v", cfg.Hooks.OnSuccess)
	}
	if len(cfg.Hooks.OnFailure) != 1 {
		t.Errorf("unexpected on_failure hooks: %+v", cfg.Hooks.OnFailure)
	}

	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("hooks: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Name: "Amina Yusuf", Email: "amina@example.com"}

	tests := []struct {
		name     string
		hook     *HookConfig
		stdin    string
		contains string
	}{
		{"nil hook", nil, "", ""},
		{"variables", &HookConfig{Command: "echo {{name}} {{email}}"}, "", "Amina Yusuf amina@example.com"},
		{"stdin", &HookConfig{Command: "cat"}, `{"type":"success"}`, `{"type":"success"}`},
		{"failure is output", &HookConfig{Command: "exit 3"}, "", "[Hook command failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Execute(ctx, tt.hook, workDir, vars, []byte(tt.stdin))
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("Execute() output = %q, want it to contain %q", out, tt.contains)
			}
		})
	}
}

func TestExecute_QuotesUserInput(t *testing.T) {
	vars := Variables{Name: "O'Brien $(echo pwned)"}
	out, err := Execute(context.Background(), &HookConfig{Command: "printf %s {{name}}"}, t.TempDir(), vars, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "O'Brien $(echo pwned)" {
		t.Errorf("Execute() output = %q, want the name verbatim", out)
	}
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := Execute(ctx, &HookConfig{Command: "echo test", Timeout: 5}, t.TempDir(), Variables{}, nil)
	if err == nil {
		t.Error("Execute() expected error for cancelled context, got nil")
	}
}

func TestRunner(t *testing.T) {
	if NewRunner(nil, "") != nil || NewRunner(&Config{}, "") != nil {
		t.Fatal("NewRunner() should be nil without hooks")
	}

	dir := t.TempDir()
	cfg := &Config{Hooks: HooksConfig{
		OnSuccess: []*HookConfig{{Command: "printf %s {{receipt_id}} > success.txt"}},
		OnFailure: []*HookConfig{{Command: "printf %s {{status_code}} > failure.txt"}},
	}}
	r := NewRunner(cfg, dir)
	ctx := context.Background()

	if err := r.Record(ctx, submission.Event{Type: submission.EventAttempt, PayloadID: "p1"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Record(ctx, submission.Event{Type: submission.EventSuccess, PayloadID: "p1", ReceiptID: "stu_1"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Record(ctx, submission.Event{Type: submission.EventFailure, PayloadID: "p2", StatusCode: 409}); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "success.txt"))
	if err != nil || string(got) != "stu_1" {
		t.Errorf("success hook wrote %q, %v", got, err)
	}
	got, err = os.ReadFile(filepath.Join(dir, "failure.txt"))
	if err != nil || string(got) != "409" {
		t.Errorf("failure hook wrote %q, %v", got, err)
	}
}
