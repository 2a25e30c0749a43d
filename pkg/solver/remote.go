package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dwave-examples/employee-scheduling/pkg/model"
)

// Remote submits models to an external hybrid-solver service over HTTP.
// The wire contract is a JSON POST of the model and a JSON Result back;
// retry policy, if any, belongs to the caller.
type Remote struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Log     *zap.SugaredLogger
}

// NewRemote builds a client for the given endpoint. A nil logger is
// replaced with a no-op one.
func NewRemote(baseURL, apiKey string, log *zap.SugaredLogger) *Remote {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Remote{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Log:     log,
	}
}

// SolveQuadratic submits the labeled encoding. The response carries the
// per-constraint satisfaction vector.
func (r *Remote) SolveQuadratic(ctx context.Context, m *model.QuadraticModel) (*Result, error) {
	return r.post(ctx, "/solve/quadratic", m)
}

// SolveMatrix submits the vectorized encoding. The response carries no
// satisfaction vector.
func (r *Remote) SolveMatrix(ctx context.Context, m *model.MatrixModel) (*Result, error) {
	res, err := r.post(ctx, "/solve/matrix", m)
	if err != nil {
		return nil, err
	}
	// Matrix responses never carry per-constraint signals; drop any the
	// service invents so callers always take the re-validation path.
	res.Satisfied = nil
	return res, nil
}

func (r *Remote) post(ctx context.Context, path string, payload any) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	start := time.Now()
	resp, err := r.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Op: "call", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{
			Op:  "call",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Op: "decode", Err: err}
	}
	r.Log.Debugw("solver responded", "path", path, "elapsed", time.Since(start))
	return &result, nil
}
