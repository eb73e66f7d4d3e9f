package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIVersion = "2024-12-01-preview"

// AzureOpenAI implements Provider against an Azure OpenAI chat deployment.
type AzureOpenAI struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
}

// NewAzureOpenAI creates an Azure OpenAI provider.
func NewAzureOpenAI(endpoint, apiKey, deployment, apiVersion string, timeout time.Duration) *AzureOpenAI {
	if deployment == "" {
		deployment = "gpt-4"
	}
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &AzureOpenAI{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name returns the provider's name.
func (p *AzureOpenAI) Name() string {
	return "azure_openai"
}

// Generate sends a chat completion request and returns the first choice.
func (p *AzureOpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.endpoint, p.deployment, p.apiVersion)

	reqBody := map[string]any{
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are an expert AIOps engineer. Always respond with valid JSON only.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature":     0.3,
		"max_tokens":      2000,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure openai call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	return completion.Choices[0].Message.Content, nil
}
