// Package llm calls OpenAI-compatible chat-completion endpoints with bounded
// concurrency and a fixed-delay retry policy.
package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/errors"
	httpclient "github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/http"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/metrics"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
)

type Client struct {
	config  *Config
	limiter Limiter
	logger  logger.Logger
	obs     *observability.Observability
}

func NewClient(config *Config, limiter Limiter, log logger.Logger, obs *observability.Observability) *Client {
	c := &Client{
		config:  config,
		limiter: limiter,
		logger:  log.WithFields(map[string]interface{}{"component": "llm", "provider": config.Provider.Name}),
		obs:     obs,
	}

	if requested := strings.ToLower(strings.TrimSpace(config.RequestedProvider)); requested != "" && requested != config.Provider.Name {
		c.logger.Warn("unknown LLM provider, falling back", map[string]interface{}{
			"requested": config.RequestedProvider,
		})
	}
	if !c.Configured() {
		c.logger.Warn("LLM API key not set, recommendations will be empty", map[string]interface{}{
			"keyEnv": config.Provider.KeyEnv,
		})
	}
	if config.InsecureSkipVerify {
		c.logger.Warn("TLS certificate verification disabled for LLM calls", nil)
	}

	return c
}

// Configured reports whether an API key is currently available.
func (c *Client) Configured() bool {
	return c.apiKey() != ""
}

// Provider returns the resolved provider.
func (c *Client) Provider() Provider {
	return c.config.Provider
}

func (c *Client) apiKey() string {
	return strings.TrimSpace(os.Getenv(c.config.Provider.KeyEnv))
}

// Complete sends one chat completion and returns the trimmed reply text.
// The admission slot is held across all attempts.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	provider := c.config.Provider.Name

	key := c.apiKey()
	if key == "" {
		c.logger.Warn("LLM API key not available, skipping call", map[string]interface{}{
			"keyEnv": c.config.Provider.KeyEnv,
		})
		metrics.LLMRequests.WithLabelValues(provider, "no_credentials").Inc()
		return "", errors.NewLLMCredentialsMissingError(provider, c.config.Provider.KeyEnv)
	}

	ctx, span := c.obs.StartSpan(ctx, "llm.complete",
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", c.config.Model),
	)
	defer span.End()

	waitStart := time.Now()
	release, err := c.limiter.Acquire(ctx)
	metrics.LLMAdmissionWait.WithLabelValues(c.limiter.Backend()).Observe(time.Since(waitStart).Seconds())
	if err != nil {
		metrics.LLMRequests.WithLabelValues(provider, "admission_failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "admission failed")
		return "", errors.NewAdmissionFailedError(c.limiter.Backend(), err)
	}
	defer release()

	inflight := metrics.LLMInflight.WithLabelValues(provider)
	inflight.Inc()
	defer inflight.Dec()

	start := time.Now()
	defer func() {
		metrics.LLMRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	reply, attempts, err := c.completeWithRetry(ctx, key, systemPrompt, userPrompt)
	span.SetAttributes(attribute.Int("llm.attempts", attempts))
	if err != nil {
		metrics.LLMRequests.WithLabelValues(provider, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm call failed")
		return "", err
	}

	metrics.LLMRequests.WithLabelValues(provider, "success").Inc()
	return reply, nil
}

func (c *Client) completeWithRetry(ctx context.Context, key, systemPrompt, userPrompt string) (string, int, error) {
	maxAttempts := c.config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := c.attempt(ctx, key, systemPrompt, userPrompt)
		if err == nil {
			metrics.LLMAttempts.WithLabelValues(c.config.Provider.Name, "success").Inc()
			return reply, attempt, nil
		}

		lastErr = err
		metrics.LLMAttempts.WithLabelValues(c.config.Provider.Name, string(errors.CodeOf(err))).Inc()
		c.logger.Warn("LLM attempt failed", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": maxAttempts,
			"errorCode":   string(errors.CodeOf(err)),
			"error":       err.Error(),
		})

		if ctx.Err() != nil || !errors.IsRetryable(err) || attempt == maxAttempts {
			return "", attempt, lastErr
		}

		timer := time.NewTimer(c.config.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", attempt, errors.NewLLMRequestFailedError(ctx.Err())
		case <-timer.C:
		}
	}

	return "", maxAttempts, lastErr
}

// attempt performs one HTTP exchange on a fresh session.
func (c *Client) attempt(ctx context.Context, key, systemPrompt, userPrompt string) (string, error) {
	httpClient, err := httpclient.NewClient(httpclient.Options{
		Timeout:            c.config.Timeout,
		ProxyURL:           c.config.ProxyURL,
		InsecureSkipVerify: c.config.InsecureSkipVerify,
	})
	if err != nil {
		return "", errors.NewLLMRequestFailedError(err)
	}
	defer httpClient.CloseIdleConnections()

	client := openai.NewClient(
		option.WithBaseURL(c.config.Provider.BaseURL),
		option.WithAPIKey(key),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       shared.ChatModel(c.config.Model),
		MaxTokens:   openai.Int(int64(c.config.MaxTokens)),
		Temperature: openai.Float(c.config.Temperature),
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.NewLLMEmptyReplyError()
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (c *Client) classify(err error) error {
	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		return errors.NewLLMBadStatusError(apiErr.StatusCode, err)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewLLMTimeoutError(c.config.Timeout, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewLLMTimeoutError(c.config.Timeout, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.NewLLMDecodeFailedError(err)
	}

	return errors.NewLLMRequestFailedError(err)
}
