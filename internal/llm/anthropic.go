package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-sonnet-4-20250514"
)

type anthropicProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewAnthropicProvider(apiKey string, baseLog *logger.Logger) Provider {
	return &anthropicProvider{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        baseLog.With("provider", "anthropic"),
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

func (p *anthropicProvider) Name() string { return "anthropic" }

// buildRequest splits the conversation into Anthropic's separate system
// field plus user/assistant turns.
func (p *anthropicProvider) buildRequest(messages []Message, opts Options) anthropicRequest {
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = anthropicDefaultModel
	}
	req := anthropicRequest{
		Model:       opts.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: *opts.Temperature,
	}
	for _, m := range messages {
		if m.Role == "system" {
			if req.System != "" {
				req.System += "\n\n"
			}
			req.System += m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	return req
}

func (p *anthropicProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	httpResp, err := p.send(ctx, p.buildRequest(messages, opts))
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", apierr.NewProviderNetwork("anthropic", err.Error())
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", p.statusError(httpResp.StatusCode, body)
	}
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apierr.NewProviderNetwork("anthropic", fmt.Sprintf("unmarshal response: %v", err))
	}
	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", apierr.NewProviderNetwork("anthropic", "empty completion response")
	}
	return out.String(), nil
}

func (p *anthropicProvider) Stream(ctx context.Context, messages []Message, opts Options, onDelta func(delta string)) error {
	req := p.buildRequest(messages, opts)
	req.Stream = true
	httpResp, err := p.send(ctx, req)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return p.statusError(httpResp.StatusCode, body)
	}

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				onDelta(event.Delta.Text)
			}
		case "message_stop":
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return apierr.NewProviderNetwork("anthropic", err.Error())
	}
	return nil
}

func (p *anthropicProvider) CountTokens(ctx context.Context, text string) (int, error) {
	return ApproxTokens(text), nil
}

func (p *anthropicProvider) TestConnection(ctx context.Context) bool {
	_, err := p.Complete(ctx, []Message{{Role: "user", Content: "Hi"}}, Options{MaxTokens: 8})
	return err == nil
}

func (p *anthropicProvider) send(ctx context.Context, apiReq anthropicRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, apierr.NewInternal(fmt.Errorf("marshal request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, apierr.NewInternal(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.NewProviderNetwork("anthropic", err.Error())
	}
	return httpResp, nil
}

func (p *anthropicProvider) statusError(status int, body []byte) error {
	var parsed anthropicErrorBody
	detail := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		detail = parsed.Error.Message
	}
	switch {
	case status == 401 || status == 403:
		return apierr.NewProviderAuth("anthropic", detail)
	case status == 429:
		return apierr.NewProviderRateLimit("anthropic", detail)
	case status == 400 && strings.Contains(detail, "credit"):
		return apierr.NewProviderQuota("anthropic", detail)
	case status >= 500 || status == 529:
		return apierr.NewProviderNetwork("anthropic", detail)
	default:
		return apierr.NewProviderNetwork("anthropic", fmt.Sprintf("status %d: %s", status, detail))
	}
}
