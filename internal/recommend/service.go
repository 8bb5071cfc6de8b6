// Package recommend turns a shopping query into catalog records chosen by a
// chat-completion model.
package recommend

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/errors"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/llm"
)

// CatalogLoader supplies the product set. Failures surface as an empty set.
type CatalogLoader interface {
	LoadProducts(ctx context.Context, limit int) []map[string]interface{}
}

// Completer is the chat-completion client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
	Provider() llm.Provider
}

type Config struct {
	CatalogLimit int
}

func LoadConfig(appConfig *config.Config) *Config {
	return &Config{CatalogLimit: appConfig.Catalog.Limit}
}

type Service struct {
	config  *Config
	catalog CatalogLoader
	llm     Completer
	logger  logger.Logger
	obs     *observability.Observability
}

func NewService(config *Config, catalog CatalogLoader, completer Completer, log logger.Logger, obs *observability.Observability) *Service {
	return &Service{
		config:  config,
		catalog: catalog,
		llm:     completer,
		logger:  log.WithFields(map[string]interface{}{"component": "recommend"}),
		obs:     obs,
	}
}

// Recommend returns up to limit products for query. Every failure is logged
// and yields an empty, non-nil result.
func (s *Service) Recommend(ctx context.Context, query string, limit int) []Product {
	products, err := s.Execute(ctx, query, limit)
	if err != nil {
		log := s.logger.WithError(err)
		fields := map[string]interface{}{"errorCode": string(errors.CodeOf(err))}
		if errors.CodeOf(err) == errors.ErrCodeLLMCredentialsMissing {
			log.Warn("skipping recommendation", fields)
		} else {
			log.Error("recommendation failed", fields)
		}
		return []Product{}
	}
	return products
}

// Execute runs load, prompt, call, parse and resolve in sequence.
func (s *Service) Execute(ctx context.Context, query string, limit int) ([]Product, error) {
	ctx, span := s.obs.StartSpan(ctx, "recommend.execute", attribute.Int("recommend.limit", limit))
	defer span.End()

	start := time.Now()

	products := s.catalog.LoadProducts(ctx, s.config.CatalogLimit)
	span.SetAttributes(attribute.Int("catalog.rows", len(products)))

	if !s.llm.Configured() {
		p := s.llm.Provider()
		return []Product{}, errors.NewLLMCredentialsMissingError(p.Name, p.KeyEnv)
	}

	req := Request{Query: query, Limit: limit, Products: products}
	reply, err := s.llm.Complete(ctx, BuildSystemPrompt(), BuildUserPrompt(req.Query, SerializeProducts(req.Products), req.Limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm call failed")
		return []Product{}, err
	}

	ids := ParseCandidates(reply)

	s.logger.Info("model recommended products", map[string]interface{}{
		"productIds": ids,
		"durationMs": time.Since(start).Milliseconds(),
	})

	result := ResolveKeys(ids, req.Products, req.Limit)
	span.SetAttributes(attribute.Int("recommend.results", len(result)))
	return result, nil
}
