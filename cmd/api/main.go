package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"glucovoice-go/internal/audio"
	"glucovoice-go/internal/embedding"
	"glucovoice-go/internal/inference"
	"glucovoice-go/internal/logger"
	"glucovoice-go/internal/pipeline"
	"glucovoice-go/internal/report"
	"glucovoice-go/internal/store"
	"glucovoice-go/internal/synthesis"
	"glucovoice-go/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "glucovoice-go").Info("starting service")

	var reasoner inference.Reasoner
	if os.Getenv("USE_MOCK_LLM") == "true" {
		log.Info("mock LLM mode ON - deterministic assessments")
		reasoner = inference.MockReasoner{}
	} else {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			log.Fatal("ANTHROPIC_API_KEY not set (or set USE_MOCK_LLM=true)")
		}
		reasoner = inference.NewAnthropicReasoner(apiKey)
	}

	maxTokens, _ := strconv.Atoi(envOr("LLM_MAX_TOKENS", "2000"))
	gateway := inference.NewGateway(reasoner, os.Getenv("LLM_MODEL"), maxTokens)
	extractor := embedding.NewExtractor(os.Getenv("EMBEDDING_MODEL_URL"))
	voice := synthesis.NewElevenLabs(os.Getenv("ELEVENLABS_API_KEY"), os.Getenv("AUDIO_OUT_DIR"))
	db := store.NewSupabase(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_ANON_KEY"))
	pipe := pipeline.New(extractor, gateway, voice, db)

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// analyze endpoint: multipart audio + questionnaire fields
	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
		reqLog.Info("analyze request received")

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			reqLog.WithError(err).Warn("bad multipart form")
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("audio")
		if err != nil {
			reqLog.Warn("missing audio file")
			http.Error(w, "missing audio file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "read audio", http.StatusBadRequest)
			return
		}
		samples, sampleRate, err := audio.DecodeWAV(data)
		if err != nil {
			reqLog.WithError(err).Warn("undecodable audio")
			http.Error(w, fmt.Sprintf("undecodable audio: %v", err), http.StatusBadRequest)
			return
		}

		user := types.UserContext{
			UserID:         r.FormValue("user_id"),
			DiabetesStatus: r.FormValue("diabetes_status"),
			MealTiming:     r.FormValue("meal_timing"),
			Symptoms:       r.Form["symptoms"],
		}
		if conv := r.FormValue("conversation"); conv != "" {
			var turns []types.ConversationTurn
			if err := json.Unmarshal([]byte(conv), &turns); err == nil {
				user.ConversationHistory = turns
			} else {
				reqLog.WithError(err).Warn("ignoring malformed conversation history")
			}
		}

		start := time.Now()
		res, err := pipe.Run(r.Context(), samples, sampleRate, user)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			// persistence failed; the assessment is still delivered
			reqLog.WithError(err).Warn("analysis returned with store error")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	// history export endpoint (xlsx)
	mux.HandleFunc("/history/export", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "history-export")

		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "missing user_id", http.StatusBadRequest)
			return
		}
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			fmt.Sscanf(l, "%d", &limit)
		}

		entries, err := db.History(r.Context(), userID, limit)
		if err != nil {
			reqLog.WithError(err).Error("history query failed")
			http.Error(w, "history unavailable", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="glucovoice_history.xlsx"`)
		if err := report.Export(w, userID, entries); err != nil {
			reqLog.WithError(err).Error("export failed")
		}
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
