// Package llm implements the smart path: the local model client, the
// category prompts, and the gate that validates model output before it is
// trusted.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

const (
	defaultModel     = "llama3.2:1b"
	defaultURL       = "http://localhost:11434"
	healthTimeout    = 5 * time.Second
	contextWindow    = 40960
	minPredictTokens = 1024
	maxPredictTokens = 4096
)

// OllamaClient talks to a local Ollama instance: /api/chat for compaction,
// /api/tags as the health probe.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewOllama builds a client from the smart-path settings.
func NewOllama(cfg domain.SmartPathSettings) *OllamaClient {
	url := cfg.OllamaURL
	if url == "" {
		url = defaultURL
	}
	// localhost resolution can stall on IPv6-first hosts; Ollama binds v4.
	url = strings.Replace(url, "://localhost", "://127.0.0.1", 1)
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.MaxLatencyMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaClient{
		baseURL:     strings.TrimRight(url, "/"),
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Healthy probes /api/tags with its own short timeout so a cold or absent
// server never stalls routing.
func (c *OllamaClient) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

// Model returns the configured model name.
func (c *OllamaClient) Model() string {
	return c.model
}

// Models lists the names of models present on the server.
func (c *OllamaClient) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ollama: %s", resp.Status)
	}
	var decoded struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Chat sends one system+user exchange and returns the reply text.
func (c *OllamaClient) Chat(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Options: chatOptions{
			Temperature: c.temperature,
			NumPredict:  predictBudget(len(user)),
			NumCtx:      contextWindow,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama: %s", resp.Status)
	}
	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.Message.Content, nil
}

// predictBudget sizes the reply allowance to half the input's token
// estimate, clamped to a sane range. The point is compaction: the model
// never needs room to say more than it was given.
func predictBudget(inputLen int) int {
	budget := inputLen / 4 / 2
	if budget < minPredictTokens {
		return minPredictTokens
	}
	if budget > maxPredictTokens {
		return maxPredictTokens
	}
	return budget
}

var _ ports.ChatClient = (*OllamaClient)(nil)
