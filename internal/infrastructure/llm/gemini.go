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

	"DealScanner/internal/config"
)

// GeminiClient calls the Gemini generateContent API over plain HTTP.
type GeminiClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	httpClient   *http.Client
}

var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate posts the user prompt together with the fixed system instruction
// and returns the model's plain-text reply with code-fence artifacts
// stripped.
func (c *GeminiClient) Generate(ctx context.Context, userPrompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	payload := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:      c.temperature,
			ResponseMIMEType: "text/plain",
		},
	}
	if c.systemPrompt != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: c.systemPrompt}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimSuffix(c.endpoint, "/"), c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return stripCodeFences(text.String()), nil
}

// stripCodeFences removes markdown fence artifacts the model sometimes wraps
// plain-text replies in.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```text", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
