package cards

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// maxForecastDays caps the reduced forecast.
const maxForecastDays = 5

// GroupDays reduces a forecast series into per-day summaries: samples are
// partitioned by the UTC calendar date of their timestamp, the partition for
// now's date is dropped (partial boundary data), and each remaining date
// carries min/max temperature across its samples, summed precipitation and
// the condition of its earliest sample. Output is ascending by date, at most
// five days, and deterministic for any input permutation.
func GroupDays(samples []ForecastSample, now time.Time) []ForecastDay {
	today := now.UTC().Format(dateLayout)

	type bucket struct {
		day      ForecastDay
		earliest time.Time
	}
	buckets := make(map[string]*bucket)

	for _, s := range samples {
		ts := s.Timestamp.UTC()
		key := ts.Format(dateLayout)
		if key == today {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{
				day: ForecastDay{
					Date:      key,
					TempMin:   s.TempMin,
					TempMax:   s.TempMax,
					RainMM:    s.RainMM,
					Condition: s.Condition,
					IconCode:  s.IconCode,
				},
				earliest: ts,
			}
			continue
		}

		if s.TempMin < b.day.TempMin {
			b.day.TempMin = s.TempMin
		}
		if s.TempMax > b.day.TempMax {
			b.day.TempMax = s.TempMax
		}
		b.day.RainMM += s.RainMM

		// Representative condition follows the earliest sample of the day so
		// the result does not depend on input order.
		if ts.Before(b.earliest) {
			b.earliest = ts
			b.day.Condition = s.Condition
			b.day.IconCode = s.IconCode
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > maxForecastDays {
		keys = keys[:maxForecastDays]
	}

	days := make([]ForecastDay, 0, len(keys))
	for _, k := range keys {
		days = append(days, buckets[k].day)
	}
	return days
}
