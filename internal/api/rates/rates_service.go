package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	cacheKey       = "rates:usd"
	cacheTTL       = 1 * time.Hour
	requestTimeout = 5 * time.Second
)

// fallbackRates covers common currencies so trip processing never blocks on
// the live source. Values are approximate USD rates.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.0,
	"CHF": 0.88,
	"CAD": 1.36,
	"AUD": 1.52,
	"CNY": 7.24,
	"INR": 83.2,
	"BRL": 5.1,
	"MXN": 17.1,
	"AED": 3.67,
	"THB": 35.6,
	"SGD": 1.34,
	"KRW": 1330.0,
	"TRY": 32.4,
}

var _ Service = (*ServiceImpl)(nil)

// Service exposes USD-based exchange rates with an hourly in-process cache.
type Service interface {
	GetRates(ctx context.Context) *types.ExchangeRates
	Convert(ctx context.Context, amount float64, from, to string) float64
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	cache   *cache.Cache
}

func NewServiceImpl(baseURL string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		cache:   cache.New(cacheTTL, 10*time.Minute),
	}
}

// GetRates returns live rates when available and degrades to the static
// fallback table on any fetch failure or timeout. It never returns an error:
// a degraded rate table is preferred to stalling the processing pipeline.
func (s *ServiceImpl) GetRates(ctx context.Context) *types.ExchangeRates {
	ctx, span := otel.Tracer("RatesService").Start(ctx, "GetRates")
	defer span.End()

	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.(*types.ExchangeRates)
	}

	rates, err := s.fetch(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Exchange rate fetch failed, using fallback table", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate fetch failed")
		return &types.ExchangeRates{
			Base:      "USD",
			Rates:     fallbackRates,
			FetchedAt: time.Now(),
			Source:    types.SourceEstimate,
		}
	}

	s.cache.Set(cacheKey, rates, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "rates fetched")
	return rates
}

func (s *ServiceImpl) fetch(ctx context.Context) (*types.ExchangeRates, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/latest?base=USD", strings.TrimSuffix(s.baseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates payload: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates provider returned empty rate table")
	}

	return &types.ExchangeRates{
		Base:      "USD",
		Rates:     payload.Rates,
		FetchedAt: time.Now(),
		Source:    types.SourceAPI,
	}, nil
}

// Convert translates an amount between currencies via the USD base. Unknown
// currency codes fall back to a 1:1 rate rather than failing the caller.
func (s *ServiceImpl) Convert(ctx context.Context, amount float64, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to || amount == 0 {
		return amount
	}

	rates := s.GetRates(ctx)
	fromRate, okFrom := rates.Rates[from]
	toRate, okTo := rates.Rates[to]
	if from == "USD" {
		fromRate, okFrom = 1.0, true
	}
	if to == "USD" {
		toRate, okTo = 1.0, true
	}
	if !okFrom || !okTo || fromRate == 0 {
		s.logger.WarnContext(ctx, "Unknown currency code in conversion, passing amount through",
			slog.String("from", from), slog.String("to", to))
		return amount
	}

	return amount / fromRate * toRate
}
