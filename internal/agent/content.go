package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/metrics"
	"github.com/minu803/redis-chatbot/internal/store"
)

// WeatherCities is the fixed city catalog. Lookups must use these exact keys.
var WeatherCities = []string{
	"NYC", "LA", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio",
	"San Diego", "Dallas", "San Jose", "Austin", "Jacksonville", "Fort Worth",
	"Columbus", "San Francisco", "Charlotte", "Indianapolis",
}

// WeatherConditions are the conditions a seeded city can report.
var WeatherConditions = []string{"Sunny", "Rainy", "Cloudy", "Windy", "Snowy", "Hazy", "Clear", "Humid"}

// Seeded temperatures are uniform in [minTemperature, maxTemperature] °F.
const (
	minTemperature = 30
	maxTemperature = 95
)

// DefaultFacts is the built-in fact rotation.
var DefaultFacts = []string{
	"Did you know? Cats have five toes on their front paws, but only four on the back!",
	"Honeybees can recognize human faces.",
	"Did you know? Octopuses have three hearts and blue blood!",
	"The shortest war in history was between Britain and Zanzibar on August 27, 1896. Zanzibar surrendered after 38 minutes.",
	"A day on Venus is longer than a year on Venus. It takes about 243 Earth days for Venus to complete one rotation on its axis, but only about 225 Earth days to complete one orbit around the Sun.",
	"Bananas are berries, but strawberries aren't! In botanical terms, a berry is a fruit produced from the ovary of a single flower with seeds embedded in the flesh. Under this definition, bananas qualify as berries, but strawberries do not because they arise from a flower with multiple ovaries.",
	"The Eiffel Tower can be 15 cm taller during the summer. Due to the iron expanding, the tower can grow by 6 inches.",
}

// Content manages the weather table and the fact rotation.
type Content struct {
	store  store.Store
	logger zerolog.Logger
	intN   func(n int) int
}

// NewContent creates a content store.
func NewContent(s store.Store, logger zerolog.Logger) *Content {
	return &Content{store: s, logger: logger, intN: rand.Intn}
}

// SeedWeather regenerates one entry per catalog city, overwriting previous
// values, and returns what it wrote.
func (c *Content) SeedWeather(ctx context.Context) (map[string]string, error) {
	table := make(map[string]string, len(WeatherCities))
	for _, city := range WeatherCities {
		condition := WeatherConditions[c.intN(len(WeatherConditions))]
		temperature := minTemperature + c.intN(maxTemperature-minTemperature+1)
		table[city] = fmt.Sprintf("%s and %dF", condition, temperature)
	}

	for _, city := range WeatherCities {
		if err := c.store.Set(ctx, store.WeatherKey(city), table[city]); err != nil {
			return nil, fmt.Errorf("seed weather %s: %w", city, err)
		}
	}

	metrics.WeatherSeeds.Inc()
	c.logger.Info().Int("cities", len(table)).Msg("weather seeded")
	return table, nil
}

// LookupWeather returns the condition stored for city. The boolean is false
// when the city has no data.
func (c *Content) LookupWeather(ctx context.Context, city string) (string, bool, error) {
	weather, ok, err := c.store.Get(ctx, store.WeatherKey(city))
	if err != nil {
		return "", false, fmt.Errorf("lookup weather %s: %w", city, err)
	}
	return weather, ok, nil
}

// SeedFacts replaces the whole rotation with facts, keeping their order.
func (c *Content) SeedFacts(ctx context.Context, facts []string) error {
	if err := c.store.ListReplace(ctx, store.FactsKey, facts...); err != nil {
		return fmt.Errorf("seed facts: %w", err)
	}
	c.logger.Info().Int("facts", len(facts)).Msg("facts seeded")
	return nil
}

// NextFact moves the head of the rotation to its tail and returns it.
func (c *Content) NextFact(ctx context.Context) (string, error) {
	fact, ok, err := c.store.ListRotate(ctx, store.FactsKey)
	if err != nil {
		return "", fmt.Errorf("next fact: %w", err)
	}
	if !ok {
		return "", ErrEmptyRotation
	}

	metrics.FactsServed.Inc()
	return fact, nil
}

// SeedDefaults seeds the weather table and the built-in facts.
func (c *Content) SeedDefaults(ctx context.Context) error {
	_, werr := c.SeedWeather(ctx)
	ferr := c.SeedFacts(ctx, DefaultFacts)
	return errors.Join(werr, ferr)
}
