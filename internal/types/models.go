package types

// EmbeddingDim is the fixed length of every voice embedding vector.
// Extractors truncate or zero-pad to enforce it.
const EmbeddingDim = 512

// --------------------------------------------
// Audio
// --------------------------------------------

// ProcessedAudio is the output of the preprocessing stage: trimmed,
// normalized, pre-emphasized samples at 16 kHz.
type ProcessedAudio struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Duration   float64   `json:"duration"`
}

// AudioQualityMetrics is derived once per recording and not mutated after.
// The scores are heuristic, not physically calibrated, and must not be
// treated as diagnostic.
type AudioQualityMetrics struct {
	SNR             float64 `json:"snr"`      // dB
	Duration        float64 `json:"duration"` // seconds
	Clarity         int     `json:"clarity"`  // 0-100
	SpectralQuality int     `json:"spectral_quality"` // 0-100
}

// --------------------------------------------
// User context (questionnaire output)
// --------------------------------------------

type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type UserContext struct {
	UserID              string             `json:"user_id,omitempty"`
	DiabetesStatus      string             `json:"diabetes_status,omitempty"`
	MealTiming          string             `json:"meal_timing,omitempty"`
	Symptoms            []string           `json:"symptoms,omitempty"`
	ConversationHistory []ConversationTurn `json:"conversation_history,omitempty"`
}

// --------------------------------------------
// Context scorer outputs
// --------------------------------------------

type MetabolicPhase struct {
	Phase            string `json:"phase"`
	ExpectedPattern  string `json:"expected_pattern"`
	IsCriticalWindow bool   `json:"is_critical_window"`
	SpecialNotes     string `json:"special_notes"`
}

type SymptomCluster struct {
	ClusterType string `json:"cluster_type"`
	Direction   string `json:"direction"` // Hyperglycemic|Hypoglycemic|Mixed|Neutral
	Urgency     string `json:"urgency"`   // Low|Moderate|High
}

// --------------------------------------------
// Voice response
// --------------------------------------------

// VoiceScript is derived deterministically from an assessment's risk level
// and confidence.
type VoiceScript struct {
	Text          string  `json:"text"`
	VoiceID       string  `json:"voice_id"`
	Stability     float64 `json:"stability"`
	ClarityWeight float64 `json:"clarity_weight"`
}

// --------------------------------------------
// Pipeline result delivered to the caller
// --------------------------------------------

type AnalysisResult struct {
	SessionID      string              `json:"session_id"`
	Assessment     GlucoseAssessment   `json:"assessment"`
	QualityMetrics AudioQualityMetrics `json:"quality_metrics"`
	Script         VoiceScript         `json:"voice_script"`
	AudioRef       string              `json:"audio_ref,omitempty"`
	RecordID       string              `json:"record_id,omitempty"`
	DurationMs     int64               `json:"duration_ms"`
	StoreError     string              `json:"store_error,omitempty"`
}
