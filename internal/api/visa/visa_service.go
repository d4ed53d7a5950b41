package visa

import (
	"context"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

//go:embed data/passport_index.csv
//go:embed data/corridors/*.json
var dataFS embed.FS

const (
	apiCacheTTL    = 30 * 24 * time.Hour
	requestTimeout = 8 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

// Service resolves visa requirements for a corridor. Resolution order:
// curated corridor files, then the bulk passport-index dataset, then the paid
// verification API (cached 30 days). Curated data wins because it is assumed
// most accurate.
type Service interface {
	Lookup(ctx context.Context, passport, destination string) *types.VisaRequirement
}

type indexEntry struct {
	requirement types.VisaRequirementKind
	allowedDays int
}

type ServiceImpl struct {
	logger   *slog.Logger
	client   *http.Client
	apiURL   string
	apiKey   string
	index    map[string]map[string]indexEntry // passport -> destination -> entry
	curated  map[string]*types.VisaRequirement
	apiCache *cache.Cache
}

func NewServiceImpl(apiURL, apiKey string, logger *slog.Logger) (*ServiceImpl, error) {
	s := &ServiceImpl{
		logger:   logger,
		client:   &http.Client{Timeout: requestTimeout},
		apiURL:   apiURL,
		apiKey:   apiKey,
		index:    make(map[string]map[string]indexEntry),
		curated:  make(map[string]*types.VisaRequirement),
		apiCache: cache.New(apiCacheTTL, 12*time.Hour),
	}
	if err := s.loadPassportIndex(); err != nil {
		return nil, fmt.Errorf("failed to load passport index: %w", err)
	}
	if err := s.loadCuratedCorridors(); err != nil {
		return nil, fmt.Errorf("failed to load curated corridors: %w", err)
	}
	logger.Info("Visa dataset loaded",
		slog.Int("passports", len(s.index)),
		slog.Int("curated_corridors", len(s.curated)))
	return s, nil
}

// loadPassportIndex bulk-loads the free passport-index dataset once at startup.
func (s *ServiceImpl) loadPassportIndex() error {
	f, err := dataFS.Open("data/passport_index.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("malformed passport index row: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < 4 {
			continue
		}

		passport := NormalizeCountry(record[0])
		destination := NormalizeCountry(record[1])
		days, _ := strconv.Atoi(strings.TrimSpace(record[3]))

		if s.index[passport] == nil {
			s.index[passport] = make(map[string]indexEntry)
		}
		s.index[passport][destination] = indexEntry{
			requirement: types.VisaRequirementKind(strings.TrimSpace(record[2])),
			allowedDays: days,
		}
	}
	return nil
}

func (s *ServiceImpl) loadCuratedCorridors() error {
	return fs.WalkDir(dataFS, "data/corridors", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		raw, err := dataFS.ReadFile(path)
		if err != nil {
			return err
		}
		var req types.VisaRequirement
		if err := json.Unmarshal(raw, &req); err != nil {
			return fmt.Errorf("malformed corridor file %s: %w", path, err)
		}
		req.Passport = NormalizeCountry(req.Passport)
		req.Destination = NormalizeCountry(req.Destination)
		req.Source = types.VisaSourceCurated
		s.curated[corridorKey(req.Passport, req.Destination)] = &req
		return nil
	})
}

func corridorKey(passport, destination string) string {
	return passport + ":" + destination
}

// NormalizeCountry collapses case/alias variants and folds "City, Country"
// strings down to the country segment, since visa rules are per-country.
func NormalizeCountry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if idx := strings.LastIndex(s, ","); idx >= 0 {
		s = strings.TrimSpace(s[idx+1:])
	}
	aliases := map[string]string{
		"usa":           "united states",
		"us":            "united states",
		"america":       "united states",
		"uk":            "united kingdom",
		"great britain": "united kingdom",
		"uae":           "united arab emirates",
	}
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// Lookup never fails: unknown corridors resolve to a conservative
// visa_required verdict so the feasibility check errs on the side of caution.
func (s *ServiceImpl) Lookup(ctx context.Context, passport, destination string) *types.VisaRequirement {
	ctx, span := otel.Tracer("VisaService").Start(ctx, "Lookup")
	defer span.End()

	passport = NormalizeCountry(passport)
	destination = NormalizeCountry(destination)
	span.SetAttributes(
		attribute.String("visa.passport", passport),
		attribute.String("visa.destination", destination),
	)

	if curated, ok := s.curated[corridorKey(passport, destination)]; ok {
		span.SetAttributes(attribute.String("visa.source", string(types.VisaSourceCurated)))
		return curated
	}

	if entry, ok := s.index[passport][destination]; ok {
		span.SetAttributes(attribute.String("visa.source", string(types.VisaSourcePassportIndex)))
		return &types.VisaRequirement{
			Passport:    passport,
			Destination: destination,
			Requirement: entry.requirement,
			AllowedDays: entry.allowedDays,
			Source:      types.VisaSourcePassportIndex,
		}
	}

	if s.apiKey != "" {
		if req, err := s.lookupAPI(ctx, passport, destination); err == nil {
			span.SetAttributes(attribute.String("visa.source", string(types.VisaSourceAPI)))
			return req
		} else {
			s.logger.WarnContext(ctx, "Visa API lookup failed",
				slog.String("passport", passport),
				slog.String("destination", destination),
				slog.Any("error", err))
			span.RecordError(err)
		}
	}

	span.SetStatus(codes.Ok, "corridor not found, conservative default")
	return &types.VisaRequirement{
		Passport:    passport,
		Destination: destination,
		Requirement: types.VisaRequired,
		Notes:       "No corridor data available; assume a visa is required and verify with the embassy.",
		Source:      types.VisaSourcePassportIndex,
	}
}

// lookupAPI enriches a corridor through the paid API, with results cached as a
// 30-day knowledge entry.
func (s *ServiceImpl) lookupAPI(ctx context.Context, passport, destination string) (*types.VisaRequirement, error) {
	key := corridorKey(passport, destination)
	if cached, found := s.apiCache.Get(key); found {
		return cached.(*types.VisaRequirement), nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/visa?passport=%s&destination=%s",
		strings.TrimSuffix(s.apiURL, "/"), url.QueryEscape(passport), url.QueryEscape(destination))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build visa API request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("visa API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visa API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Requirement string `json:"requirement"`
		AllowedDays int    `json:"allowed_days"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode visa API payload: %w", err)
	}

	result := &types.VisaRequirement{
		Passport:    passport,
		Destination: destination,
		Requirement: types.VisaRequirementKind(payload.Requirement),
		AllowedDays: payload.AllowedDays,
		Notes:       payload.Notes,
		Source:      types.VisaSourceAPI,
	}
	s.apiCache.Set(key, result, cache.DefaultExpiration)
	return result, nil
}
