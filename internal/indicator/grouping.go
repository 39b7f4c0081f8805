package indicator

import (
	"fmt"
	"sort"
	"time"

	"github.com/cdrscan/cdrscan/internal/model"
)

// WeekOf returns the ISO week bucket key for a timestamp, e.g. "2024-W09".
// The ISO year is used, so records around New Year land in the week they
// actually belong to.
func WeekOf(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// GroupByWeek buckets records by ISO week.
func GroupByWeek(records []model.Record) map[string][]model.Record {
	weeks := make(map[string][]model.Record)
	for _, r := range records {
		key := WeekOf(r.Datetime)
		weeks[key] = append(weeks[key], r)
	}
	return weeks
}

// WeeklyStats evaluates every registered scalar indicator week by week and
// summarizes each one's distribution across weeks. The result answers "how
// stable is this behavior": a large std against the mean flags weeks that
// deviate from the subject's routine.
func WeeklyStats(records []model.Record) map[string]model.Stats {
	weeks := GroupByWeek(records)
	if len(weeks) == 0 {
		return nil
	}

	keys := make([]string, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make(map[string][]float64, len(scalarIndicators))
	for _, key := range keys {
		for name, value := range Scalars(weeks[key]) {
			series[name] = append(series[name], value)
		}
	}

	weekly := make(map[string]model.Stats, len(series))
	for name, values := range series {
		weekly[name] = Summarize(values)
	}
	return weekly
}
