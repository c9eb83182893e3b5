package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alf-academy/enroll/internal/history"
	"github.com/alf-academy/enroll/internal/tui/testfixtures"
)

func sampleEntries() []*history.Entry {
	at := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	return []*history.Entry{
		{PayloadID: "p3", Name: "Amina Yusuf", Email: "amina@example.com", Status: history.StatusAccepted, Attempts: 2, ReceiptID: "stu_9", LastAt: at},
		{PayloadID: "p2", Name: "Omar Said", Email: "omar@example.com", Status: history.StatusFailed, Attempts: 1, Message: "Server returned 502", LastAt: at.Add(-time.Hour)},
		{PayloadID: "p1", Name: "Sara Ali", Email: "sara@example.com", Status: history.StatusPending, Attempts: 1, LastAt: at.Add(-2 * time.Hour)},
	}
}

func TestFilterEntries(t *testing.T) {
	entries := sampleEntries()

	assert.Len(t, filterEntries(entries, "", 0), 3)
	assert.Len(t, filterEntries(entries, "", 2), 2)

	failed := filterEntries(entries, history.StatusFailed, 0)
	require.Len(t, failed, 1)
	assert.Equal(t, "p2", failed[0].PayloadID)
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, sampleEntries())

	lines := strings.Split(strings.TrimSpace(testfixtures.PlainText(buf.String())), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "WHEN"))
	assert.Contains(t, lines[1], "accepted")
	assert.Contains(t, lines[1], "stu_9 (2 attempts)")
	assert.Contains(t, lines[2], "Server returned 502")

	// Columns line up.
	assert.Equal(t, strings.Index(lines[0], "NAME"), strings.Index(lines[1], "Amina"))
	assert.Equal(t, strings.Index(lines[0], "NAME"), strings.Index(lines[3], "Sara"))
}
