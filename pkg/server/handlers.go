// Package server implements the framework-agnostic HTTP handlers for the
// working set compiler. Handlers' methods are plain net/http handler funcs;
// cmd/wscompilerd registers them on a chi router, which is the only router
// that serves them in this module.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/contextforge/wscompile/pkg/wscompile"
)

// ServiceVersion is reported on the health endpoint.
const ServiceVersion = "0.1.0"

// compileRequestHTTP is the wire shape accepted by /compile_workingset. It
// is deliberately simpler than CompileRequest: one natural-language intent
// per request, an optional workstream shortcut, and a stage-preference
// list, matching what the collaborator that calls this service actually
// sends.
type compileRequestHTTP struct {
	Intent       string   `json:"intent"`
	BudgetTokens int      `json:"budget_tokens"`
	Workstream   string   `json:"workstream,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
	UserID       string   `json:"user_id,omitempty"`
	Explain      *bool    `json:"explain,omitempty"`
	PreferStages []string `json:"prefer_stages,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Handlers bundles the compiler engine behind plain func(http.ResponseWriter,
// *http.Request) handlers any router can register directly.
type Handlers struct {
	Engine *wscompile.Engine
}

// NewHandlers builds a Handlers bound to engine.
func NewHandlers(engine *wscompile.Engine) *Handlers {
	return &Handlers{Engine: engine}
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "wscompile",
		Version: ServiceVersion,
	})
}

// CompileWorkingSet handles POST /compile_workingset.
func (h *Handlers) CompileWorkingSet(w http.ResponseWriter, r *http.Request) {
	var req compileRequestHTTP
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	log.Printf("wscompile: received compile request intent=%q budget=%d session_id=%q user_id=%q",
		req.Intent, req.BudgetTokens, req.SessionID, req.UserID)

	hardFilters := wscompile.HardFilters{}
	if req.Workstream != "" {
		hardFilters.AllowedPaths = []string{"03_workstreams/" + req.Workstream + "/"}
		hardFilters.RequiredWorkstreams = []string{req.Workstream}
	}

	softPrefs := wscompile.DefaultSoftPreferences()
	if len(req.PreferStages) > 0 {
		softPrefs.PreferStages = req.PreferStages
	}

	explain := true
	if req.Explain != nil {
		explain = *req.Explain
	}

	compileReq := wscompile.CompileRequest{
		Intent:       req.Intent,
		BudgetTokens: req.BudgetTokens,
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		QuerySignals: []wscompile.QuerySignal{{Kind: wscompile.QuerySignalNaturalLanguage, NaturalLanguage: req.Intent}},
		HardFilters:  hardFilters,
		SoftPrefs:    softPrefs,
		Explain:      explain,
	}

	resp, err := h.Engine.CompileWorkingSet(r.Context(), compileReq)
	if err != nil {
		log.Printf("wscompile: compilation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "compilation failed", Details: err.Error()})
		return
	}

	log.Printf("wscompile: compilation successful: %d spans, %.1f%% utilization",
		len(resp.WorkingSet.Spans), resp.Stats.TokenUtilization*100)

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("wscompile: failed to encode response: %v", err)
	}
}
