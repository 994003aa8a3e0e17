package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zenbakiak/skillet"
	"github.com/zenbakiak/skillet/config"
)

// ---------------------------------------------------------------------------
// HTTP server: /health, /eval, and the hook-management admin surface
// ---------------------------------------------------------------------------

// HTTPEvalRequest is the /eval request body.
type HTTPEvalRequest struct {
	Expression       string                 `json:"expression"`
	Arguments        map[string]interface{} `json:"arguments,omitempty"`
	IncludeVariables interface{}            `json:"include_variables,omitempty"`
}

// HTTPEvalResponse is the /eval response body.
type HTTPEvalResponse struct {
	Success         bool                   `json:"success"`
	Result          interface{}            `json:"result,omitempty"`
	Variables       map[string]interface{} `json:"variables,omitempty"`
	Error           string                 `json:"error,omitempty"`
	ExecutionTimeMS float64                `json:"execution_time_ms"`
	RequestID       uint64                 `json:"request_id"`
}

// HTTPServer exposes the engine over HTTP/1.1.
type HTTPServer struct {
	cfg      config.Config
	mux      *http.ServeMux
	stats    *Stats
	requests atomic.Uint64
	srv      *http.Server
}

// NewHTTPServer builds the handler tree for the given configuration.
func NewHTTPServer(cfg config.Config) *HTTPServer {
	s := &HTTPServer{
		cfg:   cfg,
		mux:   http.NewServeMux(),
		stats: NewStats(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/eval", s.withAuth(cfg.Server.AuthToken, s.handleEval))

	s.mux.HandleFunc("/upload-js", s.withAuth(cfg.Server.AdminToken, s.handleUploadJS))
	s.mux.HandleFunc("/update-js", s.withAuth(cfg.Server.AdminToken, s.handleUpdateJS))
	s.mux.HandleFunc("/delete-js", s.withAuth(cfg.Server.AdminToken, s.handleDeleteJS))
	s.mux.HandleFunc("/list-js", s.withAuth(cfg.Server.AdminToken, s.handleListJS))
	s.mux.HandleFunc("/reload-hooks", s.withAuth(cfg.Server.AdminToken, s.handleReloadHooks))

	return s
}

// Handler returns the root handler (exported for tests).
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP listener.
func (s *HTTPServer) ListenAndServe(addr string) error {
	log.Infof("Skillet HTTP server listening on http://%s", addr)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Stop shuts the listener down.
func (s *HTTPServer) Stop() {
	if s.srv != nil {
		s.srv.Close()
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	count, avg := s.stats.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                "ok",
		"requests_processed":    count,
		"avg_execution_time_ms": avg,
		"cache":                 skillet.CacheStats(),
	})
}

func (s *HTTPServer) handleEval(w http.ResponseWriter, r *http.Request) {
	requestID := s.requests.Add(1)
	start := time.Now()

	var req HTTPEvalRequest
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeEvalError(w, requestID, start, fmt.Sprintf("invalid JSON body: %v", err))
			return
		}
	case http.MethodGet:
		req.Expression = r.URL.Query().Get("expr")
		if raw := r.URL.Query().Get("vars"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Arguments); err != nil {
				s.writeEvalError(w, requestID, start, fmt.Sprintf("invalid vars parameter: %v", err))
				return
			}
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if req.Expression == "" {
		s.writeEvalError(w, requestID, start, "missing expression")
		return
	}

	vars, err := convertVariables(req.Arguments)
	if err != nil {
		s.writeEvalError(w, requestID, start, err.Error())
		return
	}

	wantVars, varFilter := parseIncludeVariables(req.IncludeVariables)

	var resp HTTPEvalResponse
	if wantVars || usesAssignments(req.Expression) {
		result, finalVars, err := skillet.EvaluateWithAssignments(req.Expression, vars)
		if err != nil {
			s.writeEvalError(w, requestID, start, err.Error())
			return
		}
		payload, err := skillet.ValueToJSON(result)
		if err != nil {
			s.writeEvalError(w, requestID, start, err.Error())
			return
		}
		resp = HTTPEvalResponse{Success: true, Result: payload}
		if wantVars {
			out := make(map[string]interface{}, len(finalVars))
			for name, v := range finalVars {
				if varFilter != nil {
					if _, keep := varFilter[name]; !keep {
						continue
					}
				}
				conv, err := skillet.ValueToJSON(v)
				if err != nil {
					continue
				}
				out[name] = conv
			}
			resp.Variables = out
		}
	} else {
		result, err := skillet.EvaluateCached(req.Expression, vars)
		if err != nil {
			s.writeEvalError(w, requestID, start, err.Error())
			return
		}
		payload, err := skillet.ValueToJSON(result)
		if err != nil {
			s.writeEvalError(w, requestID, start, err.Error())
			return
		}
		resp = HTTPEvalResponse{Success: true, Result: payload}
	}

	resp.ExecutionTimeMS = msSince(start)
	resp.RequestID = requestID
	s.stats.Record(uint64(resp.ExecutionTimeMS * 1000))
	writeJSON(w, http.StatusOK, resp)
}

// parseIncludeVariables interprets the include_variables field: true means
// every final binding (request arguments and assignments alike), a string
// array selects a subset.
func parseIncludeVariables(raw interface{}) (bool, map[string]struct{}) {
	switch x := raw.(type) {
	case bool:
		return x, nil
	case []interface{}:
		filter := make(map[string]struct{}, len(x))
		for _, item := range x {
			if name, ok := item.(string); ok {
				filter[name] = struct{}{}
			}
		}
		return true, filter
	}
	return false, nil
}

func (s *HTTPServer) writeEvalError(w http.ResponseWriter, requestID uint64, start time.Time, msg string) {
	writeJSON(w, http.StatusOK, HTTPEvalResponse{
		Success:         false,
		Error:           msg,
		ExecutionTimeMS: msSince(start),
		RequestID:       requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
