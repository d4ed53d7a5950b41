package templatecache

import (
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Itineraries shorter than this are too trip-specific to be worth templating.
const minCacheableDays = 5

// Cache stores AI-generated day templates keyed by normalized destination,
// reusable across trips with different dates and party sizes. Process-local,
// rebuilt on restart (with a startup seeding step).
type Cache struct {
	logger *slog.Logger
	store  *cache.Cache
}

func New(logger *slog.Logger) *Cache {
	return &Cache{
		logger: logger,
		store:  cache.New(24*time.Hour, 1*time.Hour),
	}
}

func normalizeDestination(destination string) string {
	return strings.ToLower(strings.TrimSpace(destination))
}

// Get returns the cached day templates for a destination, or false on miss.
func (c *Cache) Get(destination string) ([]types.DayTemplate, bool) {
	cached, found := c.store.Get(normalizeDestination(destination))
	if !found {
		return nil, false
	}
	return cached.([]types.DayTemplate), true
}

// Put strips live dates and costs from a generated itinerary and caches the
// skeleton. Itineraries below the day floor are not cached.
func (c *Cache) Put(destination string, days []types.ItineraryDay) {
	if len(days) < minCacheableDays {
		return
	}
	templates := make([]types.DayTemplate, 0, len(days))
	for _, day := range days {
		t := types.DayTemplate{Title: day.Title}
		for _, act := range day.Activities {
			t.Activities = append(t.Activities, types.ActivityTemplate{
				Time:        act.Time,
				Description: act.Description,
				Type:        act.Type,
				Location:    act.Location,
				Coordinates: act.Coordinates,
			})
		}
		templates = append(templates, t)
	}
	c.store.Set(normalizeDestination(destination), templates, cache.DefaultExpiration)
	c.logger.Debug("Cached itinerary template",
		slog.String("destination", normalizeDestination(destination)),
		slog.Int("days", len(templates)))
}

// Seed preloads templates at startup so popular destinations skip the first
// AI call after a restart.
func (c *Cache) Seed(templates map[string][]types.DayTemplate) {
	for destination, days := range templates {
		if len(days) == 0 {
			continue
		}
		c.store.Set(normalizeDestination(destination), days, cache.DefaultExpiration)
	}
	c.logger.Info("Seeded itinerary template cache", slog.Int("destinations", len(templates)))
}

// Rehydrate turns templates back into dated days for a specific trip,
// trimming or cycling to the requested length. Costs are left at zero; the
// cost synthesis pass assigns them per party and destination tier.
func Rehydrate(templates []types.DayTemplate, startDate time.Time, tripDays int) []types.ItineraryDay {
	if tripDays < 1 || len(templates) == 0 {
		return nil
	}
	days := make([]types.ItineraryDay, 0, tripDays)
	for i := 0; i < tripDays; i++ {
		t := templates[i%len(templates)]
		day := types.ItineraryDay{
			DayNumber: i + 1,
			Date:      startDate.AddDate(0, 0, i).Format("2006-01-02"),
			Title:     t.Title,
		}
		for _, act := range t.Activities {
			day.Activities = append(day.Activities, types.Activity{
				Time:        act.Time,
				Description: act.Description,
				Type:        act.Type,
				Location:    act.Location,
				Coordinates: act.Coordinates,
			})
		}
		days = append(days, day)
	}
	return days
}
