// Package config loads process configuration for the working set compiler
// service from environment variables, read once at startup.
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-tunable setting the service reads once
// at startup.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// SemanticServiceURL, if set, enables the HTTP semantic generator.
	SemanticServiceURL string
	// LexicalServiceURL, if set, enables the HTTP lexical (BM25) generator.
	LexicalServiceURL string
	// SessionAPIURL, if set, enables session-context enrichment.
	SessionAPIURL string
	// MemoryAPIURL, if set, enables memory-candidate enrichment.
	MemoryAPIURL string

	// MemoryMaxCandidates is MEMORY_MAX_CANDIDATES as loaded here. The
	// engine does not take this field: wscompile.NewEngine reads the same
	// variable itself.
	MemoryMaxCandidates int

	// GeneratorRateLimit caps requests/sec issued to each HTTP generator;
	// 0 disables rate limiting.
	GeneratorRateLimit float64

	// UseRealGenerators selects HTTP-backed generators over the mock
	// generators used for local development and demos.
	UseRealGenerators bool

	// OTLPEndpoint, if set, enables real span export to an OTLP/HTTP
	// collector at this host:port. Empty disables tracing.
	OTLPEndpoint string
	// OTLPInsecure disables TLS on the OTLP export connection.
	OTLPInsecure bool
}

const (
	defaultPort                = 8080
	defaultMemoryMaxCandidates = 10
	defaultGeneratorRateLimit  = 0.0
)

// Load reads Config from the environment, applying defaults for anything
// unset. useRealFlag comes from the --use-real CLI flag; no environment
// variable sets UseRealGenerators.
func Load(useRealFlag bool) Config {
	cfg := Config{
		Port:                 envInt("PORT", defaultPort),
		SemanticServiceURL:   os.Getenv("SEMANTIC_SERVICE_URL"),
		LexicalServiceURL:    os.Getenv("LEXICAL_SERVICE_URL"),
		SessionAPIURL:        os.Getenv("SESSION_API_URL"),
		MemoryAPIURL:         os.Getenv("MEMORY_API_URL"),
		MemoryMaxCandidates:  envInt("MEMORY_MAX_CANDIDATES", defaultMemoryMaxCandidates),
		GeneratorRateLimit:   envFloat("GENERATOR_RATE_LIMIT", defaultGeneratorRateLimit),
		UseRealGenerators:    useRealFlag,
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:         os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	}
	return cfg
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
