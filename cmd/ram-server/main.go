// Command ram-server exposes the fetcher over HTTP: on-demand collection
// fetches as JSON, a transport comparison endpoint, and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/compare"
	"github.com/ram-tools/ram-client/pkg/config"
	"github.com/ram-tools/ram-client/pkg/logging"
	"github.com/ram-tools/ram-client/pkg/pagination"
	"github.com/ram-tools/ram-client/pkg/transport/graphql"
	"github.com/ram-tools/ram-client/pkg/transport/rest"
)

func main() {
	cfg := config.FromEnv()
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/api/characters", fetchHandler(cfg, rest.ResourceCharacter))
	r.Get("/api/locations", fetchHandler(cfg, rest.ResourceLocation))
	r.Get("/api/compare", compareHandler(cfg))
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	log.Info().Str("addr", addr).Msg("Starting ram-server")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// fetchHandler fetches one resource to exhaustion and returns the records as
// JSON, along with the run summary.
func fetchHandler(cfg config.Config, resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		src, err := rest.NewSource(client.New(cfg.ClientConfig()), cfg.RESTBaseURL, resource)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		res := pagination.NewDriver(src, cfg.RetryPolicy()).Run(ctx)
		if res.Status != pagination.StatusSuccess {
			http.Error(w, res.Err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]any{
			"count":   len(res.Records),
			"pages":   res.PagesFetched,
			"retries": res.Retries,
			"results": res.Records,
		})
	}
}

// compareHandler runs the character collection through every transport and
// returns the comparison stats as JSON.
func compareHandler(cfg config.Config) http.HandlerFunc {
	type runJSON struct {
		Transport string `json:"transport"`
		Resource  string `json:"resource"`
		Records   int    `json:"records"`
		Pages     int    `json:"pages"`
		Retries   int    `json:"retries"`
		ElapsedMS int64  `json:"elapsed_ms"`
		Status    string `json:"status"`
		Error     string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		policy := cfg.RetryPolicy()
		gqlSource, err := graphql.NewSource(
			client.New(cfg.ClientConfig()), cfg.GraphQLURL, graphql.ResourceCharacters)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		runs := []compare.RunStats{
			compare.Run(ctx, "rest",
				rest.NewCharacterSource(client.New(cfg.ClientConfig()), cfg.RESTBaseURL), policy),
			compare.Run(ctx, "graphql", gqlSource, policy),
			compare.Run(ctx, "graphql-combined",
				graphql.NewCombinedSource(client.New(cfg.ClientConfig()), cfg.GraphQLURL), policy),
		}

		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			rj := runJSON{
				Transport: run.Transport,
				Resource:  run.Resource,
				Records:   run.Records,
				Pages:     run.PageFetches,
				Retries:   run.Retries,
				ElapsedMS: run.Elapsed.Milliseconds(),
				Status:    string(run.Status),
			}
			if run.Err != nil {
				rj.Error = run.Err.Error()
			}
			out = append(out, rj)
		}

		writeJSON(w, map[string]any{"runs": out})
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
