package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// GeminiClient implements ports.Generator against the Gemini REST API.
type GeminiClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Generator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.AIConfig) *GeminiClient {
	return &GeminiClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate posts the prompt to the model's generateContent endpoint and
// returns the first candidate's text. Auth failures are permanent; rate
// limiting and service errors are transient.
func (c *GeminiClient) Generate(ctx context.Context, prompt, model string, params domain.GenerationParams) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || model == "" {
		return "", &domain.GenerationError{Err: fmt.Errorf("gemini client misconfigured")}
	}

	body, err := json.Marshal(generateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxTokens,
		},
	})
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.GenerationError{Transient: true, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		detail := strings.TrimSpace(string(payload))
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", &domain.GenerationError{Err: fmt.Errorf("invalid api key: %s: %s", resp.Status, detail)}
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", &domain.GenerationError{Transient: true, Err: fmt.Errorf("rate limited: %s: %s", resp.Status, detail)}
		case resp.StatusCode >= http.StatusInternalServerError:
			return "", &domain.GenerationError{Transient: true, Err: fmt.Errorf("service error: %s: %s", resp.Status, detail)}
		default:
			return "", &domain.GenerationError{Err: fmt.Errorf("gemini error %s: %s", resp.Status, detail)}
		}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &domain.GenerationError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &domain.GenerationError{Err: fmt.Errorf("empty response from model %s", model)}
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", &domain.GenerationError{Err: fmt.Errorf("model %s returned no text", model)}
	}
	return text, nil
}
