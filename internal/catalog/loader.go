// Package catalog reads the bounded product set offered to the model.
package catalog

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/errors"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/logger"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/metrics"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/observability"
)

const (
	tablePlaceholder = "{table}"
	limitPlaceholder = "{limit}"
)

type Loader struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	obs    *observability.Observability
}

func NewLoader(config *Config, db *sql.DB, log logger.Logger, obs *observability.Observability) *Loader {
	return &Loader{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog", "table": config.Table}),
		obs:    obs,
	}
}

// Query renders the configured template for limit. The table name is always
// quoted. A {limit} placeholder is substituted inline; otherwise the limit is
// returned as the single bind argument for $1.
func (l *Loader) Query(limit int) (string, []interface{}) {
	query := strings.ReplaceAll(l.config.SQLTemplate, tablePlaceholder, pq.QuoteIdentifier(l.config.Table))

	if strings.Contains(query, limitPlaceholder) {
		return strings.ReplaceAll(query, limitPlaceholder, strconv.Itoa(limit)), nil
	}
	if strings.Contains(query, "$1") {
		return query, []interface{}{limit}
	}
	return query, nil
}

// LoadProducts returns up to limit products. Failures are logged and yield an
// empty set so the caller can still proceed.
func (l *Loader) LoadProducts(ctx context.Context, limit int) []map[string]interface{} {
	products, err := l.Load(ctx, limit)
	if err != nil {
		l.logger.Error("failed to load product catalog", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(errors.CodeOf(err)),
		})
		return []map[string]interface{}{}
	}
	return products
}

// Load is the error-returning form of LoadProducts.
func (l *Loader) Load(ctx context.Context, limit int) ([]map[string]interface{}, error) {
	ctx, span := l.obs.StartSpan(ctx, "catalog.load",
		attribute.String("catalog.table", l.config.Table),
		attribute.Int("catalog.limit", limit),
	)
	defer span.End()

	if l.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	query, args := l.Query(limit)

	products, err := l.query(ctx, query, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		return nil, errors.NewCatalogLoadFailedError(l.config.Table, err)
	}

	metrics.CatalogProductsLoaded.Set(float64(len(products)))
	span.SetAttributes(attribute.Int("catalog.rows", len(products)))

	l.logger.Debug("catalog loaded", map[string]interface{}{
		"rows":       len(products),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return products, nil
}

func (l *Loader) query(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	products := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		product := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			product[col] = normalizeValue(values[i])
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// normalizeValue converts driver values into JSON friendly ones.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}
