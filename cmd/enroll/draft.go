package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/drafts"
	"github.com/alf-academy/enroll/internal/enrollment"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage saved drafts",
	Long: `Manage enrollments saved as drafts, usually after a failed submission.

Drafts are YAML files under <data_dir>/drafts. Resume one in the wizard with
'enroll register --draft <name>' or send it as is with 'enroll draft submit'.`,
}

func init() {
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftEditCmd)
	draftCmd.AddCommand(draftDiffCmd)
	draftCmd.AddCommand(draftRmCmd)
	draftCmd.AddCommand(draftSubmitCmd)
}

var draftListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List drafts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := drafts.NewStore(cfg.DataDir).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, "No drafts.")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(out, "%-28s %s  %s\n", info.Slug, info.SavedAt.Local().Format("2006-01-02 15:04"), info.Name)
		}
		return nil
	},
}

var draftShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := drafts.NewStore(cfg.DataDir)
		data, err := os.ReadFile(store.Path(args[0]))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", drafts.ErrNotFound, args[0])
			}
			return fmt.Errorf("reading draft: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), highlight(cmd.OutOrStdout(), string(data), "yaml"))
		return nil
	},
}

var draftEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Open a draft in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftEdit,
}

func runDraftEdit(cmd *cobra.Command, args []string) error {
	store := drafts.NewStore(cfg.DataDir)
	before, err := store.Load(args[0])
	if err != nil {
		return err
	}
	path := store.Path(args[0])

	c, err := editor.Command("enroll", path)
	if err != nil {
		return fmt.Errorf("opening editor: %w", err)
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor exited: %w", err)
	}

	after, err := drafts.ReadFile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if diff := drafts.Diff(before, after); diff != "" {
		fmt.Fprintln(out, highlight(out, diff, "diff"))
	} else {
		fmt.Fprintln(out, "No changes.")
	}

	// Report what still blocks submission.
	v, err := newValidator(cfg)
	if err != nil {
		return err
	}
	form := newForm(cfg)
	if err := after.Apply(form); err != nil {
		return err
	}
	if res := v.ValidateAll(form); !res.Valid {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Prompt())
	}
	return nil
}

var draftDiffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare the fields of two drafts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := drafts.NewStore(cfg.DataDir)
		a, err := store.Load(args[0])
		if err != nil {
			return err
		}
		b, err := store.Load(args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		diff := drafts.Diff(a, b)
		if diff == "" {
			fmt.Fprintln(out, "Drafts are identical.")
			return nil
		}
		fmt.Fprintln(out, highlight(out, diff, "diff"))
		return nil
	},
}

var draftRmCmd = &cobra.Command{
	Use:     "rm <name>...",
	Aliases: []string{"remove"},
	Short:   "Delete drafts",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := drafts.NewStore(cfg.DataDir)
		for _, name := range args {
			if err := store.Remove(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", drafts.Slug(name))
		}
		return nil
	},
}

var draftSubmitCmd = &cobra.Command{
	Use:   "submit <name>",
	Short: "Validate and submit a draft, deleting it on success",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftSubmit,
}

func runDraftSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openServices(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	d, err := svc.drafts.Load(args[0])
	if err != nil {
		return err
	}
	form := newForm(cfg)
	if err := d.Apply(form); err != nil {
		return err
	}
	nav := enrollment.NewNavigator(form, svc.validator)
	if res := nav.Seek(); !res.Valid {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Prompt())
		return res.Err()
	}

	receipt, err := svc.client.SubmitWizard(ctx, nav)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), alertFor(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Enrolled: %s\n", receiptLine(receipt))

	if err := svc.drafts.Remove(args[0]); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Could not remove draft: %v\n", err)
	}
	return nil
}
