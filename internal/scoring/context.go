// Package scoring maps questionnaire answers onto the deterministic
// descriptors the prompt composer interpolates. Every function is a total,
// side-effect-free lookup: unrecognized input falls through to an explicit
// Unknown branch, never to an error.
package scoring

import "glucovoice-go/internal/types"

var metabolicPhases = map[string]types.MetabolicPhase{
	"Currently eating/just finished (0-30 min)": {
		Phase:            "Early Postprandial",
		ExpectedPattern:  "Initial glucose rise",
		IsCriticalWindow: false,
		SpecialNotes:     "early insulin response phase, voice may show stress markers",
	},
	"30 minutes to 1 hour ago": {
		Phase:            "Early Postprandial",
		ExpectedPattern:  "Glucose rising",
		IsCriticalWindow: false,
		SpecialNotes:     "early postprandial phase, glucose beginning to rise",
	},
	"1-2 hours ago": {
		Phase:            "Peak Postprandial",
		ExpectedPattern:  "Glucose at or near peak",
		IsCriticalWindow: true,
		SpecialNotes:     "peak postprandial glucose phase (most critical for detection)",
	},
	"2-4 hours ago": {
		Phase:            "Late Postprandial",
		ExpectedPattern:  "Glucose normalizing",
		IsCriticalWindow: false,
		SpecialNotes:     "late postprandial, glucose normalizing in healthy individuals",
	},
	"4-8 hours ago": {
		Phase:            "Post-absorptive",
		ExpectedPattern:  "Return to baseline",
		IsCriticalWindow: false,
		SpecialNotes:     "return to baseline, fasting-like state",
	},
	"8+ hours/overnight fasting": {
		Phase:            "Fasting",
		ExpectedPattern:  "Baseline glucose levels",
		IsCriticalWindow: false,
		SpecialNotes:     "true fasting state, baseline glucose patterns",
	},
	"I don't remember": {
		Phase:            "Unknown",
		ExpectedPattern:  "Unpredictable",
		IsCriticalWindow: false,
		SpecialNotes:     "uncertainty flag, reduced confidence in predictions",
	},
}

// MetabolicPhase maps a canonical meal-timing phrase to its phase
// descriptor. Empty or unrecognized input yields the Unknown descriptor.
func MetabolicPhase(mealTiming string) types.MetabolicPhase {
	if mealTiming == "" {
		return types.MetabolicPhase{
			Phase:            "Unknown",
			ExpectedPattern:  "Unpredictable",
			IsCriticalWindow: false,
			SpecialNotes:     "insufficient meal timing data",
		}
	}
	if p, ok := metabolicPhases[mealTiming]; ok {
		return p
	}
	return types.MetabolicPhase{
		Phase:            "Unknown",
		ExpectedPattern:  "Unpredictable",
		IsCriticalWindow: false,
		SpecialNotes:     "unrecognized meal timing pattern",
	}
}

// Symptom groups used by SymptomCluster. Membership is exact-match on the
// questionnaire's canonical phrasing.
var (
	hyperglycemiaSymptoms = map[string]bool{
		"Unusual thirst or dry mouth": true,
		"Frequent urination":          true,
		"Blurred vision":              true,
	}
	hypoglycemiaSymptoms = map[string]bool{
		"Shakiness or tremors":                  true,
		"Confusion or difficulty concentrating": true,
	}
	nonspecificSymptoms = map[string]bool{
		"Fatigue or drowsiness": true,
		"Nausea or vomiting":    true,
	}
)

const confusionSymptom = "Confusion or difficulty concentrating"

// SymptomCluster classifies a symptom set into a direction and urgency.
// Direction is the larger of the hyper/hypo group counts, Mixed on tie.
// Urgency scales with the total symptom count; confusion forces High
// regardless of count.
func SymptomCluster(symptoms []string) types.SymptomCluster {
	if len(symptoms) == 0 {
		return types.SymptomCluster{
			ClusterType: "Asymptomatic",
			Direction:   "Neutral",
			Urgency:     "Low",
		}
	}

	var hyperCount, hypoCount int
	confused := false
	for _, s := range symptoms {
		if hyperglycemiaSymptoms[s] {
			hyperCount++
		}
		if hypoglycemiaSymptoms[s] {
			hypoCount++
		}
		if s == confusionSymptom {
			confused = true
		}
	}

	cluster := types.SymptomCluster{}
	switch {
	case hyperCount > hypoCount:
		cluster.Direction = "Hyperglycemic"
		cluster.ClusterType = "Hyperglycemia Cluster"
	case hypoCount > hyperCount:
		cluster.Direction = "Hypoglycemic"
		cluster.ClusterType = "Hypoglycemia Cluster"
	default:
		cluster.Direction = "Mixed"
		cluster.ClusterType = "Mixed Symptom Cluster"
	}

	switch {
	case len(symptoms) >= 3:
		cluster.Urgency = "High"
	case len(symptoms) == 2:
		cluster.Urgency = "Moderate"
	default:
		cluster.Urgency = "Low"
	}
	if confused {
		cluster.Urgency = "High"
	}

	return cluster
}

var specialConsiderations = map[string]string{
	"No diabetes, no family history":         "minimal baseline risk with focus on acute glucose spikes",
	"No diabetes, family history of diabetes": "enhanced sensitivity for prediabetic patterns",
	"Prediabetes/borderline diabetes":        "monitoring for progression indicators",
	"Type 1 diabetes":                        "high variability with focus on rapid changes and ketone-related voice markers",
	"Type 2 diabetes, well-controlled":       "moderate stability with attention to medication compliance indicators",
	"Type 2 diabetes, poorly controlled":     "high baseline risk with multiple complication indicators",
	"Gestational diabetes":                   "pregnancy-specific voice changes with hormonal considerations",
	"Unknown":                                "general glucose assessment without specific risk stratification",
}

// SpecialConsiderations returns the analysis framing for a diabetes status.
func SpecialConsiderations(diabetesStatus string) string {
	if c, ok := specialConsiderations[diabetesStatus]; ok {
		return c
	}
	return "general glucose assessment without specific risk stratification"
}

var baselineRisk = map[string]float64{
	"No diabetes, no family history":         0.1,
	"No diabetes, family history of diabetes": 0.3,
	"Prediabetes/borderline diabetes":        0.5,
	"Type 1 diabetes":                        0.7,
	"Type 2 diabetes, well-controlled":       0.5,
	"Type 2 diabetes, poorly controlled":     0.8,
	"Gestational diabetes":                   0.6,
}

// RiskLevel returns the baseline risk score in [0,1] for a diabetes status.
func RiskLevel(diabetesStatus string) float64 {
	if r, ok := baselineRisk[diabetesStatus]; ok {
		return r
	}
	return 0.4
}

var variabilityProfiles = map[string]string{
	"No diabetes, no family history":         "Low variability, stable patterns",
	"No diabetes, family history of diabetes": "Low-moderate variability, possible postprandial spikes",
	"Prediabetes/borderline diabetes":        "Moderate variability, elevated postprandial response",
	"Type 1 diabetes":                        "High variability, rapid fluctuations possible",
	"Type 2 diabetes, well-controlled":       "Moderate variability, managed fluctuations",
	"Type 2 diabetes, poorly controlled":     "High variability, unpredictable patterns",
	"Gestational diabetes":                   "Moderate-high variability, hormone-influenced patterns",
}

// VariabilityProfile returns the expected glucose variability description
// for a diabetes status.
func VariabilityProfile(diabetesStatus string) string {
	if p, ok := variabilityProfiles[diabetesStatus]; ok {
		return p
	}
	return "Unknown variability profile"
}
