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
	googleBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	googleDefaultModel = "gemini-2.0-flash"
)

type googleProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewGoogleProvider(apiKey string, baseLog *logger.Logger) Provider {
	return &googleProvider{
		apiKey:     apiKey,
		baseURL:    googleBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        baseLog.With("provider", "google"),
	}
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleRequest struct {
	Contents          []googleContent `json:"contents"`
	SystemInstruction *googleContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float32 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

type googleErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) buildRequest(messages []Message, opts Options) (googleRequest, Options) {
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = googleDefaultModel
	}
	var req googleRequest
	for _, m := range messages {
		switch m.Role {
		case "system":
			if req.SystemInstruction == nil {
				req.SystemInstruction = &googleContent{}
			}
			req.SystemInstruction.Parts = append(req.SystemInstruction.Parts, googlePart{Text: m.Content})
		case "assistant":
			req.Contents = append(req.Contents, googleContent{Role: "model", Parts: []googlePart{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, googleContent{Role: "user", Parts: []googlePart{{Text: m.Content}}})
		}
	}
	req.GenerationConfig.Temperature = *opts.Temperature
	req.GenerationConfig.MaxOutputTokens = opts.MaxTokens
	return req, opts
}

func (p *googleProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	req, opts := p.buildRequest(messages, opts)
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, opts.Model)
	httpResp, err := p.send(ctx, url, req)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", apierr.NewProviderNetwork("google", err.Error())
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", p.statusError(httpResp.StatusCode, body)
	}
	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apierr.NewProviderNetwork("google", fmt.Sprintf("unmarshal response: %v", err))
	}
	text := flattenGoogleResponse(resp)
	if text == "" {
		return "", apierr.NewProviderNetwork("google", "empty completion response")
	}
	return text, nil
}

func (p *googleProvider) Stream(ctx context.Context, messages []Message, opts Options, onDelta func(delta string)) error {
	req, opts := p.buildRequest(messages, opts)
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, opts.Model)
	httpResp, err := p.send(ctx, url, req)
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
		var chunk googleResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			continue
		}
		if text := flattenGoogleResponse(chunk); text != "" {
			onDelta(text)
		}
	}
	if err := scanner.Err(); err != nil {
		return apierr.NewProviderNetwork("google", err.Error())
	}
	return nil
}

func (p *googleProvider) CountTokens(ctx context.Context, text string) (int, error) {
	return ApproxTokens(text), nil
}

func (p *googleProvider) TestConnection(ctx context.Context) bool {
	_, err := p.Complete(ctx, []Message{{Role: "user", Content: "Hi"}}, Options{MaxTokens: 8})
	return err == nil
}

func (p *googleProvider) send(ctx context.Context, url string, apiReq googleRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, apierr.NewInternal(fmt.Errorf("marshal request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apierr.NewInternal(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierr.NewProviderNetwork("google", err.Error())
	}
	return httpResp, nil
}

func (p *googleProvider) statusError(status int, body []byte) error {
	var parsed googleErrorBody
	detail := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		detail = parsed.Error.Message
	}
	switch {
	case status == 401 || status == 403:
		return apierr.NewProviderAuth("google", detail)
	case status == 429:
		if strings.Contains(parsed.Error.Status, "RESOURCE_EXHAUSTED") && strings.Contains(detail, "quota") {
			return apierr.NewProviderQuota("google", detail)
		}
		return apierr.NewProviderRateLimit("google", detail)
	case status >= 500:
		return apierr.NewProviderNetwork("google", detail)
	default:
		return apierr.NewProviderNetwork("google", fmt.Sprintf("status %d: %s", status, detail))
	}
}

func flattenGoogleResponse(resp googleResponse) string {
	var out strings.Builder
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			out.WriteString(part.Text)
		}
	}
	return out.String()
}
