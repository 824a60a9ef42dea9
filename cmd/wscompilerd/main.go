// Command wscompilerd runs the working set compiler as a standalone HTTP
// service fronted by chi.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/contextforge/wscompile/pkg/config"
	"github.com/contextforge/wscompile/pkg/server"
	"github.com/contextforge/wscompile/pkg/telemetry"
	"github.com/contextforge/wscompile/pkg/wscompile"
	"github.com/contextforge/wscompile/pkg/wscompile/httpgen"
	"github.com/contextforge/wscompile/pkg/wscompile/memory"
	"github.com/contextforge/wscompile/pkg/wscompile/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

func main() {
	useReal := flag.Bool("use-real", false, "use HTTP-backed generators instead of mock candidates")
	flag.Parse()

	cfg := config.Load(*useReal)

	exporter := setupTelemetry(cfg)
	if exporter != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := exporter.Shutdown(ctx); err != nil {
				log.Printf("wscompile: telemetry shutdown: %v", err)
			}
		}()
	}

	engine := buildEngine(cfg)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	h := server.NewHandlers(engine)
	r.Get("/health", h.Health)
	r.Post("/compile_workingset", h.CompileWorkingSet)

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Printf("wscompile: listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// requestID stamps every request with a correlation ID (keeping one the
// caller sent in X-Request-Id) and returns it in the X-Request-Id response
// header; the ID is not written to the logs. It exists since the
// collaborator clients this
// service calls (session, memory, semantic, lexical) are independently
// operated and a shared ID is the only way to trace one compile across
// all of them.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// setupTelemetry builds a real OTLP exporter when OTEL_EXPORTER_OTLP_ENDPOINT
// is set, returning nil otherwise. buildEngine enables telemetry.Settings
// whenever the endpoint is set, even if the exporter failed to build; the
// global tracer it then uses has no exporter installed.
func setupTelemetry(cfg config.Config) *telemetry.Exporter {
	if cfg.OTLPEndpoint == "" {
		return nil
	}
	exp, err := telemetry.NewExporter(context.Background(), telemetry.ExporterConfig{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "wscompilerd",
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Printf("wscompile: telemetry exporter disabled: %v", err)
		return nil
	}
	return exp
}

func buildEngine(cfg config.Config) *wscompile.Engine {
	var generators []wscompile.Generator

	if cfg.UseRealGenerators && cfg.SemanticServiceURL != "" {
		generators = append(generators, httpgen.NewSemantic(cfg.SemanticServiceURL, cfg.GeneratorRateLimit))
	}
	if cfg.UseRealGenerators && cfg.LexicalServiceURL != "" {
		generators = append(generators, httpgen.NewLexical(cfg.LexicalServiceURL, cfg.GeneratorRateLimit))
	}
	if len(generators) == 0 {
		log.Printf("wscompile: no real generators configured, falling back to mock generator with demo candidates")
		generators = append(generators, &wscompile.MockGenerator{GenName: "mock_semantic", Candidates: wscompile.DemoCandidates()})
	}

	var sessionClient *session.Client
	if cfg.SessionAPIURL != "" {
		sessionClient = session.NewClient(cfg.SessionAPIURL)
	}

	var memoryClient *memory.Client
	if cfg.MemoryAPIURL != "" {
		memoryClient = memory.NewClient(cfg.MemoryAPIURL)
	}

	settings := telemetry.DefaultSettings()
	if cfg.OTLPEndpoint != "" {
		settings = settings.
			WithEnabled(true).
			WithFunctionID("wscompile.compile_workingset").
			WithTracer(otel.Tracer("wscompile"))
	}
	return wscompile.NewEngine(generators, sessionClient, memoryClient, settings)
}

