package types

// --------------------------------------------
// Canonical assessment record returned by the
// reasoning service (after normalization)
// --------------------------------------------

type GlucoseAssessment struct {
	Assessment       AssessmentCore   `json:"glucose_assessment"`
	AnalysisDetails  AnalysisDetails  `json:"analysis_details"`
	ClinicalInsights ClinicalInsights `json:"clinical_insights"`
	Limitations      Limitations      `json:"limitations"`
}

type AssessmentCore struct {
	PrimaryEstimate string  `json:"primary_estimate"` // normal|elevated|low|critical
	EstimatedRange  string  `json:"estimated_range"`
	ConfidenceScore float64 `json:"confidence_score"` // [0,1]
	RiskLevel       string  `json:"risk_level"`       // minimal|low|moderate|high|critical
}

type AnalysisDetails struct {
	VoiceBiomarkersDetected []string `json:"voice_biomarkers_detected,omitempty"`
	SupportingContext       string   `json:"supporting_context,omitempty"`
	ConflictingSignals      string   `json:"conflicting_signals,omitempty"`
	QualityFactors          string   `json:"quality_factors,omitempty"`
}

type ClinicalInsights struct {
	ImmediateRecommendations string `json:"immediate_recommendations,omitempty"`
	MonitoringSuggestions    string `json:"monitoring_suggestions,omitempty"`
	MedicalConsultation      string `json:"medical_consultation,omitempty"`
}

type Limitations struct {
	ConfidenceFactors string `json:"confidence_factors,omitempty"`
	Disclaimer        string `json:"disclaimer,omitempty"`
}

// Normalize fills the fields no caller is allowed to see empty. A response
// is never rejected solely because the model omitted a section.
func (a *GlucoseAssessment) Normalize() {
	if a.Assessment.PrimaryEstimate == "" {
		a.Assessment.PrimaryEstimate = "normal"
	}
	if a.Assessment.ConfidenceScore == 0 {
		a.Assessment.ConfidenceScore = 0.5
	}
	if a.Assessment.RiskLevel == "" {
		a.Assessment.RiskLevel = "minimal"
	}
	if a.Limitations.Disclaimer == "" {
		a.Limitations.Disclaimer = "This is an experimental technology and should not replace traditional glucose monitoring"
	}
}

// FallbackAssessment is the single canonical default returned whenever the
// reasoning service fails or its output cannot be parsed. Every failure path
// uses this one constant so the defaults cannot drift apart.
func FallbackAssessment() GlucoseAssessment {
	return GlucoseAssessment{
		Assessment: AssessmentCore{
			PrimaryEstimate: "normal",
			EstimatedRange:  "80-120 mg/dL",
			ConfidenceScore: 0.3,
			RiskLevel:       "minimal",
		},
		AnalysisDetails: AnalysisDetails{
			VoiceBiomarkersDetected: []string{"baseline vocal patterns"},
			SupportingContext:       "Limited analysis due to service error",
			ConflictingSignals:      "Unable to process voice data completely",
			QualityFactors:          "Analysis compromised due to technical issues",
		},
		ClinicalInsights: ClinicalInsights{
			ImmediateRecommendations: "Please try again or use traditional glucose monitoring",
			MonitoringSuggestions:    "Continue with your regular monitoring schedule",
			MedicalConsultation:      "Follow your healthcare provider's advice",
		},
		Limitations: Limitations{
			ConfidenceFactors: "Technical error in processing",
			Disclaimer:        "This is an experimental technology and should not replace traditional glucose monitoring",
		},
	}
}
