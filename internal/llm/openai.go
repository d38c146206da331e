package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
)

const openAIDefaultModel = "gpt-4o"

type openAIProvider struct {
	client *openai.Client
	log    *logger.Logger
}

func NewOpenAIProvider(apiKey string, baseLog *logger.Logger) Provider {
	return &openAIProvider{
		client: openai.NewClient(apiKey),
		log:    baseLog.With("provider", "openai"),
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) request(messages []Message, opts Options) openai.ChatCompletionRequest {
	opts = opts.withDefaults()
	if opts.Model == "" {
		opts.Model = openAIDefaultModel
	}
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    converted,
		Temperature: *opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
}

func (p *openAIProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.request(messages, opts))
	if err != nil {
		return "", p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apierr.NewProviderNetwork("openai", "empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) Stream(ctx context.Context, messages []Message, opts Options, onDelta func(delta string)) error {
	req := p.request(messages, opts)
	req.Stream = true
	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return p.mapError(err)
	}
	defer stream.Close()
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return p.mapError(err)
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			onDelta(chunk.Choices[0].Delta.Content)
		}
	}
}

func (p *openAIProvider) CountTokens(ctx context.Context, text string) (int, error) {
	return ApproxTokens(text), nil
}

func (p *openAIProvider) TestConnection(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

func (p *openAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return apierr.NewProviderAuth("openai", msg)
		case apiErr.HTTPStatusCode == 429:
			if code, ok := apiErr.Code.(string); ok && strings.Contains(code, "insufficient_quota") {
				return apierr.NewProviderQuota("openai", msg)
			}
			if strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "quota") {
				return apierr.NewProviderQuota("openai", msg)
			}
			return apierr.NewProviderRateLimit("openai", msg)
		case apiErr.HTTPStatusCode >= 500:
			return apierr.NewProviderNetwork("openai", msg)
		default:
			return apierr.NewProviderNetwork("openai", fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, msg))
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403 {
			return apierr.NewProviderAuth("openai", reqErr.Error())
		}
		return apierr.NewProviderNetwork("openai", reqErr.Error())
	}
	return apierr.NewProviderNetwork("openai", err.Error())
}
