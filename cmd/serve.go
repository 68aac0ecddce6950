package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
	"github.com/sells-group/admet-cli/internal/store"
	"github.com/sells-group/admet-cli/internal/triage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the triage HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		if err := triage.ValidateConfig(cfg.Triage); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		eng := triage.NewEngine(cfg.Triage, cfg.Batch.Concurrency)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: buildRouter(eng, st, cfg.Server),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// triageRequest is the body of POST /v1/triage.
type triageRequest struct {
	Compounds []model.CompoundRecord `json:"compounds"`
}

// triageResponse is the reply of POST /v1/triage.
type triageResponse struct {
	Decisions []model.DecisionRecord `json:"decisions"`
	Summary   model.BatchSummary     `json:"summary"`
}

// buildRouter wires the API routes. st may be nil, in which case the run
// history endpoints answer 503.
func buildRouter(eng *triage.Engine, st store.Store, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(sc.RateLimitRPS), sc.RateLimitBurst)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/triage", handleTriage(eng))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/{id}/decisions", handleRunDecisions(st))
	})

	return r
}

func handleTriage(eng *triage.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		decisions, err := eng.EvaluateBatch(r.Context(), req.Compounds)
		if errors.Is(err, model.ErrEmptyBatch) {
			writeError(w, http.StatusUnprocessableEntity, "no compounds to process")
			return
		}
		if err != nil {
			zap.L().Error("serve: triage batch", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "triage failed")
			return
		}

		writeJSON(w, http.StatusOK, triageResponse{
			Decisions: decisions,
			Summary:   model.Summarize(decisions, 0),
		})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "run history unavailable")
			return
		}

		filter := store.RunFilter{Status: model.RunStatus(r.URL.Query().Get("status"))}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			filter.Limit = n
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("serve: list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func handleRunDecisions(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusServiceUnavailable, "run history unavailable")
			return
		}

		id := chi.URLParam(r, "id")
		run, err := st.GetRun(r.Context(), id)
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			zap.L().Error("serve: get run", zap.String("run_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get run failed")
			return
		}

		items, err := st.ListDecisions(r.Context(), run.ID)
		if err != nil {
			zap.L().Error("serve: list decisions", zap.String("run_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list decisions failed")
			return
		}
		if items == nil {
			items = []model.TriagedCompound{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run, "decisions": items})
	}
}

// rateLimit rejects requests with 429 once the shared token bucket is empty.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				retry := int(math.Ceil(1 / float64(l.Limit())))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
