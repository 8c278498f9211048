// Package store persists analysis sessions and predictions to the managed
// database backend. Persistence failure is reported to the caller but must
// never discard an already-computed assessment.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/types"
)

// Record bundles everything one pipeline run persists.
type Record struct {
	SessionID      string
	UserID         string
	Embedding      []float64
	Assessment     types.GlucoseAssessment
	AudioRef       string
	QualityMetrics types.AudioQualityMetrics
	UserContext    types.UserContext
}

// HistoryEntry is one past prediction, as read back for reporting.
type HistoryEntry struct {
	SessionID       string    `json:"session_id"`
	CreatedAt       time.Time `json:"created_at"`
	PrimaryEstimate string    `json:"primary_estimate"`
	RiskLevel       string    `json:"risk_level"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// Store is the narrow persistence contract consumed by the pipeline.
type Store interface {
	Store(ctx context.Context, rec Record) (string, error)
	History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
}

// Supabase talks to the Supabase PostgREST endpoint.
type Supabase struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewSupabase(baseURL, apiKey string) *Supabase {
	return &Supabase{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type sessionRow struct {
	ID             string                    `json:"id"`
	UserID         string                    `json:"user_id,omitempty"`
	AudioFilePath  string                    `json:"audio_file_path,omitempty"`
	UserContext    types.UserContext         `json:"user_context"`
	QualityMetrics types.AudioQualityMetrics `json:"quality_metrics"`
}

type predictionRow struct {
	ID               string                  `json:"id"`
	SessionID        string                  `json:"session_id"`
	PredictionResult types.GlucoseAssessment `json:"prediction_result"`
	ConfidenceScore  float64                 `json:"confidence_score"`
}

// Store writes a voice_sessions row and a glucose_predictions row and
// returns the prediction record id. Embeddings are kept out of the session
// row; the table schema does not carry the 512-value vector.
func (s *Supabase) Store(ctx context.Context, rec Record) (string, error) {
	log := logger.New().WithField("component", "store").WithField("session_id", rec.SessionID)

	if s.baseURL == "" || s.apiKey == "" {
		return "", fmt.Errorf("supabase not configured")
	}

	sessionID := rec.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	session := sessionRow{
		ID:             sessionID,
		UserID:         rec.UserID,
		AudioFilePath:  rec.AudioRef,
		UserContext:    rec.UserContext,
		QualityMetrics: rec.QualityMetrics,
	}
	if err := s.insert(ctx, "voice_sessions", session, nil); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	prediction := predictionRow{
		ID:               uuid.New().String(),
		SessionID:        sessionID,
		PredictionResult: rec.Assessment,
		ConfidenceScore:  rec.Assessment.Assessment.ConfidenceScore,
	}
	var inserted []predictionRow
	if err := s.insert(ctx, "glucose_predictions", prediction, &inserted); err != nil {
		return "", fmt.Errorf("store prediction: %w", err)
	}

	recordID := prediction.ID
	if len(inserted) > 0 {
		recordID = inserted[0].ID
	}
	log.WithField("record_id", recordID).Info("analysis persisted")
	return recordID, nil
}

// History reads a user's past predictions, newest first.
func (s *Supabase) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if s.baseURL == "" || s.apiKey == "" {
		return nil, fmt.Errorf("supabase not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	// inner-join embed so the filter on voice_sessions.user_id applies
	url := fmt.Sprintf(
		"%s/rest/v1/glucose_predictions?select=session_id,created_at,confidence_score,prediction_result,voice_sessions!inner(user_id)&voice_sessions.user_id=eq.%s&order=created_at.desc&limit=%d",
		s.baseURL, userID, limit)

	var rows []struct {
		SessionID        string                  `json:"session_id"`
		CreatedAt        time.Time               `json:"created_at"`
		ConfidenceScore  float64                 `json:"confidence_score"`
		PredictionResult types.GlucoseAssessment `json:"prediction_result"`
	}
	if err := s.get(ctx, url, &rows); err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{
			SessionID:       r.SessionID,
			CreatedAt:       r.CreatedAt,
			PrimaryEstimate: r.PredictionResult.Assessment.PrimaryEstimate,
			RiskLevel:       r.PredictionResult.Assessment.RiskLevel,
			ConfidenceScore: r.ConfidenceScore,
		})
	}
	return out, nil
}

func (s *Supabase) insert(ctx context.Context, table string, row any, out any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)

	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		s.setHeaders(req)
		req.Header.Set("Prefer", "return=representation")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", body)
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("insert rejected: %s", body)
			return backoff.Permanent(lastErr)
		}
		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				lastErr = fmt.Errorf("decode insert response: %w", err)
				return backoff.Permanent(lastErr)
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 12 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}

func (s *Supabase) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("query failed: %s", body)
	}
	return json.Unmarshal(body, out)
}

func (s *Supabase) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
