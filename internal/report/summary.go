// Package report aggregates a user's past predictions into a trend summary
// and exports them as a spreadsheet.
package report

import (
	"fmt"

	"glucovoice-go/internal/store"
)

type Summary struct {
	TotalSessions  int            `json:"total_sessions"`
	ByRiskLevel    map[string]int `json:"by_risk_level"`
	ByEstimate     map[string]int `json:"by_estimate"`
	MeanConfidence float64        `json:"mean_confidence"`
}

// AdviceCard is a one-line monitoring suggestion derived from the summary.
type AdviceCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
}

func Summarize(entries []store.HistoryEntry) Summary {
	s := Summary{
		ByRiskLevel: map[string]int{},
		ByEstimate:  map[string]int{},
	}
	var confSum float64
	for _, e := range entries {
		s.TotalSessions++
		if e.RiskLevel != "" {
			s.ByRiskLevel[e.RiskLevel]++
		}
		if e.PrimaryEstimate != "" {
			s.ByEstimate[e.PrimaryEstimate]++
		}
		confSum += e.ConfidenceScore
	}
	if s.TotalSessions > 0 {
		s.MeanConfidence = confSum / float64(s.TotalSessions)
	}
	return s
}

// Advise flags a pattern when at least a third of recent sessions landed in
// an elevated risk band.
func Advise(s Summary) AdviceCard {
	if s.TotalSessions == 0 {
		return AdviceCard{
			Insight: "No analysis history yet",
			Action:  "Record a voice sample to start tracking",
		}
	}

	flagged := s.ByRiskLevel["high"] + s.ByRiskLevel["critical"]
	rate := float64(flagged) / float64(s.TotalSessions)
	if rate >= 0.35 && flagged > 0 {
		return AdviceCard{
			Insight: fmt.Sprintf("High-risk assessments in %.0f%% of recent sessions", rate*100),
			Action:  "Verify with a glucose meter and share the trend with your healthcare provider",
		}
	}
	return AdviceCard{
		Insight: "No strong risk pattern detected",
		Action:  "Keep monitoring and collect more recordings",
	}
}
