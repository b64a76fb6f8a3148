package cards

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grpNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func sample(day, hour int, tmin, tmax, rain float64, cond string) ForecastSample {
	return ForecastSample{
		Timestamp: time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC),
		TempMin:   tmin,
		TempMax:   tmax,
		RainMM:    rain,
		Condition: cond,
	}
}

func TestGroupDaysExcludesToday(t *testing.T) {
	samples := []ForecastSample{
		sample(10, 15, 5, 8, 0, "Clouds"), // today, dropped
		sample(11, 9, 3, 7, 1, "Rain"),
	}

	days := GroupDays(samples, grpNow)
	require.Len(t, days, 1)
	assert.Equal(t, "2024-03-11", days[0].Date)
}

func TestGroupDaysReducesMinMaxAndRain(t *testing.T) {
	samples := []ForecastSample{
		sample(11, 6, 2, 6, 0.5, "Clouds"),
		sample(11, 12, 5, 11, 1.5, "Rain"),
		sample(11, 18, 1, 9, 0, "Clear"),
	}

	days := GroupDays(samples, grpNow)
	require.Len(t, days, 1)

	assert.InDelta(t, 1, days[0].TempMin, 1e-9)
	assert.InDelta(t, 11, days[0].TempMax, 1e-9)
	assert.InDelta(t, 2.0, days[0].RainMM, 1e-9)
	assert.Equal(t, "Clouds", days[0].Condition, "earliest sample of the day is representative")
}

func TestGroupDaysCapsAtFiveAscending(t *testing.T) {
	var samples []ForecastSample
	for day := 11; day <= 18; day++ {
		samples = append(samples, sample(day, 12, 1, 2, 0, "Clear"))
	}

	days := GroupDays(samples, grpNow)
	require.Len(t, days, 5)

	want := []string{"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15"}
	for i, d := range days {
		assert.Equal(t, want[i], d.Date)
	}
}

func TestGroupDaysDeterministicUnderPermutation(t *testing.T) {
	samples := []ForecastSample{
		sample(10, 21, 4, 6, 0, "Clouds"),
		sample(11, 3, 1, 5, 0.2, "Rain"),
		sample(11, 9, 2, 8, 0.4, "Clouds"),
		sample(12, 3, -1, 4, 0, "Snow"),
		sample(12, 15, 0, 6, 0.1, "Clouds"),
		sample(13, 9, 3, 7, 0, "Clear"),
	}

	want := GroupDays(samples, grpNow)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]ForecastSample, len(samples))
		copy(shuffled, samples)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assert.Equal(t, want, GroupDays(shuffled, grpNow))
	}
}

func TestGroupDaysEmptyInput(t *testing.T) {
	assert.Empty(t, GroupDays(nil, grpNow))
}
