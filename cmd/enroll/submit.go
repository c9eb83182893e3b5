package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/submission"
)

var submitFlags struct {
	file   string
	set    []string
	dryRun bool
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an enrollment without the wizard",
	Long: `Submit an enrollment read from a file and/or --set flags.

The file is YAML or JSON: either a flat map of field names to values or a
saved draft. --set field=value pairs are applied after the file.
Every step is validated before anything is sent; with --dry-run the request
body is printed instead of posted.`,
	Example: `  enroll submit --file amina.yaml
  enroll submit --set firstName=Amina --set lastName=Yusuf ... --dry-run`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitFlags.file, "file", "f", "", "YAML or JSON file with field values")
	submitCmd.Flags().StringArrayVar(&submitFlags.set, "set", nil, "Set a field, e.g. --set email=a@b.com (repeatable)")
	submitCmd.Flags().BoolVar(&submitFlags.dryRun, "dry-run", false, "Print the request body instead of sending it")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	values := map[enrollment.Field]string{}
	if submitFlags.file != "" {
		fromFile, err := readFieldsFile(submitFlags.file)
		if err != nil {
			return err
		}
		values = fromFile
	}
	if err := parseSetFlags(submitFlags.set, values); err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("nothing to submit: use --file or --set")
	}

	ctx := cmd.Context()
	svc, err := openServices(ctx, cfg, !submitFlags.dryRun)
	if err != nil {
		return err
	}
	defer svc.Close()

	form := newForm(cfg)
	if err := form.Load(values); err != nil {
		return err
	}
	nav := enrollment.NewNavigator(form, svc.validator)
	if res := nav.Seek(); !res.Valid {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Prompt())
		return res.Err()
	}

	if submitFlags.dryRun {
		body, err := svc.client.DryRun(form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "POST %s\n", svc.client.URL())
		fmt.Fprintln(cmd.OutOrStdout(), highlight(cmd.OutOrStdout(), string(body), "json"))
		return nil
	}

	receipt, err := svc.client.SubmitWizard(ctx, nav)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), alertFor(err))
		if !enrollment.IsValidationError(err) {
			if path, derr := svc.drafts.SaveForm(drafts.NameFor(form, time.Now()), form, err.Error()); derr == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Draft saved to %s\n", path)
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Enrolled: %s\n", receiptLine(receipt))
	return nil
}

// readFieldsFile accepts a flat field map or a saved draft. JSON parses as
// YAML.
func readFieldsFile(path string) (map[enrollment.Field]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var d drafts.Draft
	if err := yaml.Unmarshal(data, &d); err == nil && len(d.Fields) > 0 {
		return toFields(d.Fields)
	}

	var flat map[string]any
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	raw := make(map[string]string, len(flat))
	for k, v := range flat {
		if v == nil {
			continue
		}
		raw[k] = fmt.Sprint(v)
	}
	return toFields(raw)
}

func toFields(raw map[string]string) (map[enrollment.Field]string, error) {
	out := make(map[enrollment.Field]string, len(raw))
	for k, v := range raw {
		field, err := enrollment.ParseField(k)
		if err != nil {
			return nil, err
		}
		out[field] = v
	}
	return out, nil
}

func parseSetFlags(pairs []string, into map[enrollment.Field]string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: want field=value", pair)
		}
		field, err := enrollment.ParseField(strings.TrimSpace(key))
		if err != nil {
			return err
		}
		into[field] = value
	}
	return nil
}

// alertFor renders a submission error as a single stderr line.
func alertFor(err error) string {
	var ve *enrollment.ValidationError
	if errors.As(err, &ve) {
		return ve.Prompt()
	}
	if submission.IsAPIError(err) || submission.IsTransportError(err) {
		return err.Error()
	}
	return "Failed to submit form: " + err.Error()
}

func receiptLine(r *submission.Receipt) string {
	if r == nil {
		return "accepted"
	}
	id := r.ID
	if id == "" {
		id = r.PayloadID
	}
	return fmt.Sprintf("%s (HTTP %d)", id, r.StatusCode)
}
