package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/quota"
	"github.com/sells-group/leadscout/internal/search"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead search API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initSearchEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		// Set up routes
		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
			var q search.Query
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if q.RadiusMiles <= 0 {
				q.RadiusMiles = cfg.Search.DefaultRadiusMiles
			}

			resp, err := env.Service.Search(r.Context(), q)
			if err != nil {
				writeSearchError(w, err)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(resp)
		})

		mux.HandleFunc("GET /quota/{tenant}", func(w http.ResponseWriter, r *http.Request) {
			tenant := r.PathValue("tenant")
			if tenant == "" {
				http.Error(w, `{"error":"tenant is required"}`, http.StatusBadRequest)
				return
			}

			st := env.Quota.Check(r.Context(), tenant)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(st)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// writeSearchError maps service errors onto HTTP statuses: quota exhaustion
// is 429 with a reset timestamp, validation problems are 400, anything else
// is a 500 with the detail kept out of the response body.
func writeSearchError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error":    "daily search limit reached",
			"reset_at": exceeded.ResetAt,
		})
		return
	}

	var invalid *search.ValidationError
	if errors.As(err, &invalid) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": invalid.Error()})
		return
	}

	zap.L().Error("search request failed", zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "search failed"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
