package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSeedWeather(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()

	table, err := a.Content.SeedWeather(ctx)
	require.NoError(t, err)
	assert.Len(t, table, len(WeatherCities))

	for _, city := range WeatherCities {
		stored, err := mr.Get("weather:" + city)
		require.NoError(t, err)
		assert.Equal(t, table[city], stored)

		var condition string
		var temperature int
		_, err = fmt.Sscanf(stored, "%s and %dF", &condition, &temperature)
		require.NoError(t, err, stored)
		assert.Contains(t, WeatherConditions, condition)
		assert.GreaterOrEqual(t, temperature, minTemperature)
		assert.LessOrEqual(t, temperature, maxTemperature)
	}
}

func TestSeedWeatherBounds(t *testing.T) {
	_, a := newTestAgent(t)
	ctx := context.Background()

	a.Content.intN = func(int) int { return 0 }
	table, err := a.Content.SeedWeather(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sunny and 30F", table["NYC"])

	a.Content.intN = func(n int) int { return n - 1 }
	table, err = a.Content.SeedWeather(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Humid and 95F", table["NYC"])

	weather, ok, err := a.Content.LookupWeather(ctx, "NYC")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Humid and 95F", weather)
}

func TestLookupWeatherExactMatch(t *testing.T) {
	_, a := newTestAgent(t)
	ctx := context.Background()
	_, err := a.Content.SeedWeather(ctx)
	require.NoError(t, err)

	_, ok, err := a.Content.LookupWeather(ctx, "San Jose")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, city := range []string{"nyc", "Atlantis", ""} {
		_, ok, err := a.Content.LookupWeather(ctx, city)
		require.NoError(t, err)
		assert.False(t, ok, city)
	}
}

func TestFactRotation(t *testing.T) {
	_, a := newTestAgent(t)
	ctx := context.Background()

	_, err := a.Content.NextFact(ctx)
	assert.ErrorIs(t, err, ErrEmptyRotation)

	require.NoError(t, a.Content.SeedFacts(ctx, []string{"one", "two", "three"}))

	var got []string
	for i := 0; i < 7; i++ {
		fact, err := a.Content.NextFact(ctx)
		require.NoError(t, err)
		got = append(got, fact)
	}
	assert.Equal(t, []string{"one", "two", "three", "one", "two", "three", "one"}, got)
}

func TestSeedFactsReplaces(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()

	require.NoError(t, a.Content.SeedFacts(ctx, []string{"old"}))
	require.NoError(t, a.Content.SeedFacts(ctx, []string{"new-1", "new-2"}))

	list, err := mr.List("funfacts")
	require.NoError(t, err)
	assert.Equal(t, []string{"new-1", "new-2"}, list)
}

func TestSeedDefaults(t *testing.T) {
	mr, a := newTestAgent(t)
	ctx := context.Background()

	require.NoError(t, a.Content.SeedDefaults(ctx))

	list, err := mr.List("funfacts")
	require.NoError(t, err)
	assert.Equal(t, DefaultFacts, list)
	assert.True(t, mr.Exists("weather:Indianapolis"))

	fact, err := a.Content.NextFact(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFacts[0], fact)
}

// Agents sharing the store each see a distinct fact per request and the
// rotation stays evenly consumed.
func TestFactRotationAcrossAgents(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	const agents, requests = 6, 100
	contents := make([]*Content, agents)
	for i := range contents {
		contents[i] = NewContent(newStore(t, mr), zerolog.Nop())
	}
	require.NoError(t, contents[0].SeedFacts(ctx, DefaultFacts))

	var (
		mu     sync.Mutex
		counts = make(map[string]int)
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < requests; i++ {
		c := contents[i%agents]
		g.Go(func() error {
			fact, err := c.NextFact(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[fact]++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	n := len(DefaultFacts)
	floor, ceil := requests/n, (requests+n-1)/n
	total := 0
	for _, fact := range DefaultFacts {
		assert.GreaterOrEqual(t, counts[fact], floor)
		assert.LessOrEqual(t, counts[fact], ceil)
		total += counts[fact]
	}
	assert.Equal(t, requests, total)

	list, err := mr.List("funfacts")
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultFacts, list)
}
