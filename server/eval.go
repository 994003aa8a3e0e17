package server

import (
	"strings"
	"time"

	"github.com/zenbakiak/skillet"
	"github.com/zenbakiak/skillet/vm"
)

// ---------------------------------------------------------------------------
// Shared request processing for both wire surfaces
// ---------------------------------------------------------------------------

// EvalRequest is one evaluation request as it arrives on the wire.
type EvalRequest struct {
	Expression string                 `json:"expression"`
	Variables  map[string]interface{} `json:"variables,omitempty"`
	OutputJSON bool                   `json:"output_json,omitempty"`
}

// EvalResponse is the wire response for the TCP line protocol.
type EvalResponse struct {
	Success         bool        `json:"success"`
	Result          interface{} `json:"result,omitempty"`
	Error           string      `json:"error,omitempty"`
	ExecutionTimeMS float64     `json:"execution_time_ms"`
	RequestID       uint64      `json:"request_id"`
}

// usesAssignments reports whether an expression needs assignment-aware
// evaluation; assignment results depend on scope threading and are kept
// out of the result cache.
func usesAssignments(expr string) bool {
	return strings.Contains(expr, ";") || strings.Contains(expr, ":=")
}

// convertVariables lifts wire variables into Skillet values.
func convertVariables(raw map[string]interface{}) (map[string]vm.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	vars := make(map[string]vm.Value, len(raw))
	for name, data := range raw {
		v, err := vm.FromJSONInterface(data)
		if err != nil {
			return nil, err
		}
		vars[name] = v
	}
	return vars, nil
}

// evaluateExpression runs one request through the engine, choosing the
// cached path for pure expressions.
func evaluateExpression(expr string, vars map[string]vm.Value) (vm.Value, map[string]vm.Value, error) {
	if usesAssignments(expr) {
		return skillet.EvaluateWithAssignments(expr, vars)
	}
	v, err := skillet.EvaluateCached(expr, vars)
	return v, nil, err
}

// processRequest evaluates one TCP request and shapes the response.
func processRequest(req EvalRequest, requestID uint64) EvalResponse {
	start := time.Now()

	vars, err := convertVariables(req.Variables)
	if err != nil {
		return EvalResponse{
			Success:         false,
			Error:           err.Error(),
			ExecutionTimeMS: msSince(start),
			RequestID:       requestID,
		}
	}

	result, _, err := evaluateExpression(req.Expression, vars)
	elapsed := msSince(start)
	if err != nil {
		return EvalResponse{
			Success:         false,
			Error:           err.Error(),
			ExecutionTimeMS: elapsed,
			RequestID:       requestID,
		}
	}

	payload, err := skillet.ValueToJSON(result)
	if err != nil {
		return EvalResponse{
			Success:         false,
			Error:           err.Error(),
			ExecutionTimeMS: elapsed,
			RequestID:       requestID,
		}
	}
	if req.OutputJSON {
		payload = map[string]interface{}{
			"result":         payload,
			"type":           result.Kind().String(),
			"execution_time": formatMS(elapsed),
		}
	}

	return EvalResponse{
		Success:         true,
		Result:          payload,
		ExecutionTimeMS: elapsed,
		RequestID:       requestID,
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
