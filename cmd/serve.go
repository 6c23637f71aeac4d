package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/benxu001/NYC-Rent-Map/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the processed map data over HTTP",
	Long: `Serves the processed GeoJSON and time-series documents for the
interactive map front end. Rendering happens in the browser; this
command only hands out data.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(),
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting data server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Use(rateLimit(rate.Limit(cfg.Server.RateLimit)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/api/rents.geojson", serveFile(cfg.Data.OutGeoJSON, "application/geo+json"))
	r.Get("/api/timeseries.json", serveFile(cfg.Data.OutTimeseries, "application/json"))

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		s, err := openStore(req.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "run history unavailable")
			return
		}
		if s == nil {
			httpError(w, http.StatusNotFound, "run history disabled")
			return
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(req.Context()); err != nil {
			zap.L().Error("migrate run history", zap.Error(err))
			httpError(w, http.StatusInternalServerError, "run history unavailable")
			return
		}

		runs, err := s.ListRuns(req.Context(), 20)
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			httpError(w, http.StatusInternalServerError, "run history unavailable")
			return
		}
		if runs == nil {
			runs = []store.Run{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runs)
	})

	return r
}

// serveFile hands out one processed output document.
func serveFile(path, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			httpError(w, http.StatusNotFound, "not processed yet; run `rentmap process` first")
			return
		}
		defer func() { _ = f.Close() }()

		w.Header().Set("Content-Type", contentType)
		http.ServeContent(w, req, path, time.Time{}, f)
	}
}

// rateLimit applies a global token-bucket limit across all clients.
func rateLimit(limit rate.Limit) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 20
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(limit, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				httpError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
