package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"glucovoice-go/internal/store"
)

func history() []store.HistoryEntry {
	at := func(day, hour int) time.Time {
		return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC)
	}
	return []store.HistoryEntry{
		{SessionID: "s1", CreatedAt: at(29, 10), PrimaryEstimate: "elevated", RiskLevel: "high", ConfidenceScore: 0.7},
		{SessionID: "s2", CreatedAt: at(29, 18), PrimaryEstimate: "normal", RiskLevel: "minimal", ConfidenceScore: 0.5},
		{SessionID: "s3", CreatedAt: at(30, 9), PrimaryEstimate: "elevated", RiskLevel: "high", ConfidenceScore: 0.6},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(history())

	assert.Equal(t, 3, s.TotalSessions)
	assert.Equal(t, 2, s.ByRiskLevel["high"])
	assert.Equal(t, 1, s.ByRiskLevel["minimal"])
	assert.Equal(t, 2, s.ByEstimate["elevated"])
	assert.InDelta(t, 0.6, s.MeanConfidence, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalSessions)
	assert.Zero(t, s.MeanConfidence)
}

func TestAdviseFlagsRiskPattern(t *testing.T) {
	card := Advise(Summarize(history()))
	assert.Contains(t, card.Insight, "High-risk assessments in 67%")
	assert.Contains(t, card.Action, "glucose meter")
}

func TestAdviseNoHistory(t *testing.T) {
	card := Advise(Summary{})
	assert.Equal(t, "No analysis history yet", card.Insight)
}

func TestAdviseBelowThreshold(t *testing.T) {
	s := Summary{
		TotalSessions: 10,
		ByRiskLevel:   map[string]int{"high": 2, "minimal": 8},
	}
	card := Advise(s)
	assert.Equal(t, "No strong risk pattern detected", card.Insight)
}

func TestExportProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "user-1", history()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Session ID", rows[0][0])

	var found bool
	for _, row := range rows[1:] {
		if len(row) > 0 && row[0] == "s2" {
			found = true
		}
	}
	assert.True(t, found, "every history entry appears in the sheet")
}
