package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
	"github.com/alf-academy/enroll/internal/state"
	"github.com/alf-academy/enroll/internal/template"
	"github.com/alf-academy/enroll/internal/tui/wizard"
)

var registerFlags struct {
	draft string
}

var registerCmd = &cobra.Command{
	Use:     "register",
	Aliases: []string{"new"},
	Short:   "Fill in the enrollment wizard",
	Long: `Open the three-step enrollment wizard: contact details, learning
preferences and the trial lesson schedule.

A failed submission keeps the form on screen and saves a draft under the
data directory. Use --draft to continue from a saved draft.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVarP(&registerFlags.draft, "draft", "d", "", "Resume from a saved draft (name or slug)")
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openServices(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	confirmation, err := template.GetTemplate(cfg.Confirmation)
	if err != nil {
		return err
	}

	ui := state.Load(cfg.DataDir)
	defaults := *cfg
	if ui.Prefill.Country != "" {
		defaults.DefaultCountry = ui.Prefill.Country
	}

	nav := enrollment.NewNavigator(newForm(&defaults), svc.validator)
	if registerFlags.draft != "" {
		d, err := svc.drafts.Load(registerFlags.draft)
		if err != nil {
			return err
		}
		if err := d.Apply(nav.Form()); err != nil {
			return err
		}
		// Open on the first step that still needs attention.
		nav.Seek()
	}

	result, err := wizard.Run(ctx, wizard.Options{
		Navigator:    nav,
		Submitter:    svc.client,
		Drafts:       svc.drafts,
		Confirmation: confirmation,
	})
	if err != nil {
		return err
	}

	if len(result.Accepted) > 0 {
		for _, f := range result.Accepted {
			ui.RecordEnrollment(f.Get(enrollment.FieldCountry), time.Now())
		}
		if err := state.Save(cfg.DataDir, ui); err != nil {
			logger.Warn("Failed to save UI state: %v", err)
		}
	}

	for _, r := range result.Receipts {
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolled: %s\n", receiptLine(r))
	}
	if len(result.Receipts) > 0 && registerFlags.draft != "" {
		if err := svc.drafts.Remove(registerFlags.draft); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not remove draft %s: %v\n", registerFlags.draft, err)
		}
	}
	if result.DraftPath != "" && len(result.Receipts) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Draft saved to %s\n", result.DraftPath)
	}
	return nil
}
