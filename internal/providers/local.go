package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// LocalHTTPClient talks to a local model endpoint shaped like Ollama's
// /api/generate: POST {model, prompt, stream:false, ...options} and a
// cheap /api/tags probe for availability.
//
// Bit-exact compatibility with Ollama is not required (§4.2) — a different
// endpoint can be plugged in by pointing BaseURL elsewhere or by supplying a
// different ModelClient implementation entirely.
type LocalHTTPClient struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewLocalHTTPClient builds a client against baseURL (e.g.
// "http://localhost:11434") for the given model. requestsPerSecond<=0
// disables throttling.
func NewLocalHTTPClient(baseURL, modelName string, timeout time.Duration, requestsPerSecond float64) *LocalHTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &LocalHTTPClient{
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

func (c *LocalHTTPClient) Generate(ctx context.Context, prompt string, options map[string]any) (ModelResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ModelResponse{Metadata: map[string]any{"error": err.Error()}}, nil
		}
	}

	body := map[string]any{
		"model":  c.Model,
		"prompt": prompt,
		"stream": false,
	}
	for k, v := range options {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return ModelResponse{Metadata: map[string]any{"error": err.Error()}}, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return ModelResponse{Metadata: map[string]any{"error": err.Error()}}, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("model client: transport failure", "error", err)
		return ModelResponse{Metadata: map[string]any{"error": err.Error()}}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ModelResponse{Metadata: map[string]any{"error": err.Error()}}, nil
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("model endpoint returned status %d: %s", resp.StatusCode, string(raw))
		slog.Warn("model client: non-200 response", "status", resp.StatusCode)
		return ModelResponse{Metadata: map[string]any{"error": msg}}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ModelResponse{Metadata: map[string]any{"error": fmt.Sprintf("decode response: %v", err)}}, nil
	}

	content, _ := decoded["response"].(string)
	return ModelResponse{Content: content, Metadata: decoded}, nil
}

func (c *LocalHTTPClient) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
