package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/alf-academy/enroll/internal/history"
	"github.com/alf-academy/enroll/internal/tui/theme"
)

var historyFlags struct {
	status string
	limit  int
	json   bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past submissions",
	Long: `List enrollments submitted from this data directory, newest first.

Every attempt, acceptance and failure is recorded in an embedded NATS
JetStream log under <data_dir>/nats. An enrollment that was accepted once
stays accepted even if a later retry failed.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "Only show pending, accepted or failed entries")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "l", 20, "Maximum entries to show, 0 for all")
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	switch historyFlags.status {
	case "", history.StatusPending, history.StatusAccepted, history.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", historyFlags.status)
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	state, err := store.Load(ctx)
	if err != nil {
		return err
	}
	entries := filterEntries(state.List(), historyFlags.status, historyFlags.limit)

	out := cmd.OutOrStdout()
	if historyFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No submissions recorded yet.")
		return nil
	}
	renderHistory(out, entries)
	if state.Malformed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d unreadable events.\n", state.Malformed)
	}
	return nil
}

func filterEntries(entries []*history.Entry, status string, limit int) []*history.Entry {
	if status != "" {
		entries = lo.Filter(entries, func(e *history.Entry, _ int) bool {
			return e.Status == status
		})
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

var historyColumns = []string{"WHEN", "STATUS", "NAME", "EMAIL", "TRIAL", "DETAIL"}

func historyRow(e *history.Entry) []string {
	detail := e.ReceiptID
	if e.Status != history.StatusAccepted {
		detail = e.Message
	}
	if e.Attempts > 1 {
		detail = strings.TrimSpace(fmt.Sprintf("%s (%d attempts)", detail, e.Attempts))
	}
	return []string{
		e.LastAt.Local().Format("2006-01-02 15:04"),
		e.Status,
		e.Name,
		e.Email,
		e.TrialStart,
		detail,
	}
}

// renderHistory prints entries as aligned columns, status colored.
func renderHistory(w io.Writer, entries []*history.Entry) {
	rows := lo.Map(entries, func(e *history.Entry, _ int) []string { return historyRow(e) })

	widths := lo.Map(historyColumns, func(h string, _ int) int { return len(h) })
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	s := theme.Current().S()
	pad := func(cell string, i int) string {
		return cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}

	header := lo.Map(historyColumns, func(h string, i int) string { return s.HintKey.Render(pad(h, i)) })
	lipgloss.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, i)
		}
		cells[1] = statusStyle(row[1]).Render(cells[1])
		lipgloss.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func statusStyle(status string) lipgloss.Style {
	s := theme.Current().S()
	switch status {
	case history.StatusAccepted:
		return s.Success
	case history.StatusFailed:
		return s.Alert
	default:
		return s.Notice
	}
}
