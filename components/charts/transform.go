package charts

import (
	"fmt"
	"math"
	"time"
)

// Bar colors for change-like modes.
const (
	colorPositive = "#2563eb"
	colorNegative = "#dc2626"
	colorMissing  = "#9ca3af"
)

// TransformContext supplies the auxiliary series a mode may need. A nil
// auxiliary (total, excluded, category total) makes every computed point
// null; it is never an error.
type TransformContext struct {
	Frequency     Frequency
	Unit          string
	Total         *Series
	Excluded      *Series
	CategoryTotal *Series
}

// Transform converts a series into a plotted (date, value) sequence under the
// given mode, then trims to the trailing horizon months. It is pure: identical
// inputs always yield identical output. Absent values stay explicit gaps.
func Transform(s Series, mode Mode, horizon int, tc TransformContext) Plot {
	var (
		dates  []string
		values []*float64
	)

	switch mode {
	case ModeYoY:
		dates, values = yearOverYear(s.Data, tc.Frequency.Lookback())
	case ModePct:
		dates, values = shareOf(s.Data, tc.Total, nil)
	case ModePctEx:
		if tc.Excluded == nil {
			dates, values = allNull(s.Data)
		} else {
			dates, values = shareOf(s.Data, tc.Total, tc.Excluded)
		}
	case ModeSpread:
		dates, values = spreadVs(s.Data, tc.Total)
	case ModePoP:
		dates, values = periodChange(s.Data)
	case ModePoP3:
		dates, values = trailingChange(s.Data)
	case ModeShare:
		dates, values = shareOf(s.Data, tc.CategoryTotal, nil)
	default:
		dates, values = rawLevels(s.Data)
	}

	dates, values = trimHorizon(dates, values, horizon)

	plot := Plot{
		Dates:  dates,
		Values: values,
		YLabel: axisLabel(mode, tc),
		Kind:   mode.Kind(),
	}
	if plot.Kind == KindBar {
		plot.PointColors = barColors(values)
	}
	return plot
}

func rawLevels(data []Observation) ([]string, []*float64) {
	dates := make([]string, len(data))
	values := make([]*float64, len(data))
	for i, obs := range data {
		dates[i] = obs.Date
		values[i] = obs.Value
	}
	return dates, values
}

// yearOverYear computes (cur − prev)/|prev| × 100 against the observation one
// lookback earlier. The first lookback points are dropped.
func yearOverYear(data []Observation, lookback int) ([]string, []*float64) {
	if len(data) <= lookback {
		return nil, nil
	}
	dates := make([]string, 0, len(data)-lookback)
	values := make([]*float64, 0, len(data)-lookback)
	for i := lookback; i < len(data); i++ {
		dates = append(dates, data[i].Date)
		prev := data[i-lookback].Value
		cur := data[i].Value
		if prev == nil || cur == nil || *prev == 0 {
			values = append(values, nil)
			continue
		}
		pct := (*cur - *prev) / math.Abs(*prev) * 100
		values = append(values, &pct)
	}
	return dates, values
}

// shareOf computes value ÷ denominator × 100, where the denominator is the
// total's value at the same date, minus the excluded series when given.
func shareOf(data []Observation, total, excluded *Series) ([]string, []*float64) {
	totals := valuesByDate(total)
	excludes := valuesByDate(excluded)
	dates := make([]string, len(data))
	values := make([]*float64, len(data))
	for i, obs := range data {
		dates[i] = obs.Date
		if obs.Value == nil {
			continue
		}
		tv, ok := totals[obs.Date]
		if !ok || tv == nil {
			continue
		}
		denom := *tv
		if excluded != nil {
			ev, ok := excludes[obs.Date]
			if !ok || ev == nil {
				continue
			}
			denom -= *ev
		}
		if denom == 0 {
			continue
		}
		pct := *obs.Value / denom * 100
		values[i] = &pct
	}
	return dates, values
}

// spreadVs computes value − total as a percentage-point difference.
func spreadVs(data []Observation, total *Series) ([]string, []*float64) {
	totals := valuesByDate(total)
	dates := make([]string, len(data))
	values := make([]*float64, len(data))
	for i, obs := range data {
		dates[i] = obs.Date
		if obs.Value == nil {
			continue
		}
		tv, ok := totals[obs.Date]
		if !ok || tv == nil {
			continue
		}
		diff := *obs.Value - *tv
		values[i] = &diff
	}
	return dates, values
}

// periodChange computes value[i] − value[i−1], dropping the first point.
func periodChange(data []Observation) ([]string, []*float64) {
	if len(data) < 2 {
		return nil, nil
	}
	dates := make([]string, 0, len(data)-1)
	values := make([]*float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		dates = append(dates, data[i].Date)
		prev := data[i-1].Value
		cur := data[i].Value
		if prev == nil || cur == nil {
			values = append(values, nil)
			continue
		}
		diff := *cur - *prev
		values = append(values, &diff)
	}
	return dates, values
}

// trailingChange sums three consecutive period changes. Null whenever any of
// the three constituent changes is null; two more leading points are dropped.
func trailingChange(data []Observation) ([]string, []*float64) {
	popDates, pops := periodChange(data)
	if len(pops) < 3 {
		return nil, nil
	}
	dates := make([]string, 0, len(pops)-2)
	values := make([]*float64, 0, len(pops)-2)
	for i := 2; i < len(pops); i++ {
		dates = append(dates, popDates[i])
		if pops[i] == nil || pops[i-1] == nil || pops[i-2] == nil {
			values = append(values, nil)
			continue
		}
		sum := *pops[i] + *pops[i-1] + *pops[i-2]
		values = append(values, &sum)
	}
	return dates, values
}

// trimHorizon keeps only points on or after the last available date minus the
// horizon, in months. Zero means the full history. Dates that fail to parse
// leave the sequence untrimmed.
func trimHorizon(dates []string, values []*float64, horizon int) ([]string, []*float64) {
	if horizon <= 0 || len(dates) == 0 {
		return dates, values
	}
	last, err := time.Parse(time.DateOnly, dates[len(dates)-1])
	if err != nil {
		return dates, values
	}
	cutoff := last.AddDate(0, -horizon, 0)
	start := len(dates)
	for i, d := range dates {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return dates, values
		}
		if !t.Before(cutoff) {
			start = i
			break
		}
	}
	return dates[start:], values[start:]
}

// allNull keeps the date axis but blanks every value, the behavior for a
// mode whose required auxiliary series is absent from the dataset.
func allNull(data []Observation) ([]string, []*float64) {
	dates := make([]string, len(data))
	for i, obs := range data {
		dates[i] = obs.Date
	}
	return dates, make([]*float64, len(data))
}

func valuesByDate(s *Series) map[string]*float64 {
	if s == nil {
		return nil
	}
	out := make(map[string]*float64, len(s.Data))
	for _, obs := range s.Data {
		out[obs.Date] = obs.Value
	}
	return out
}

func barColors(values []*float64) []string {
	colors := make([]string, len(values))
	for i, v := range values {
		switch {
		case v == nil:
			colors[i] = colorMissing
		case *v < 0:
			colors[i] = colorNegative
		default:
			colors[i] = colorPositive
		}
	}
	return colors
}

func axisLabel(mode Mode, tc TransformContext) string {
	switch mode {
	case ModeYoY:
		return "% change vs. year ago"
	case ModePct:
		return "% of total"
	case ModePctEx:
		if tc.Excluded != nil && tc.Excluded.Name != "" {
			return fmt.Sprintf("%% of total ex. %s", tc.Excluded.Name)
		}
		return "% of adjusted total"
	case ModeSpread:
		return "pp vs. total"
	case ModePoP:
		if tc.Unit != "" {
			return fmt.Sprintf("Change (%s)", tc.Unit)
		}
		return "Change vs. prior period"
	case ModePoP3:
		if tc.Unit != "" {
			return fmt.Sprintf("3-period change (%s)", tc.Unit)
		}
		return "3-period change"
	case ModeShare:
		if tc.CategoryTotal != nil && tc.CategoryTotal.Name != "" {
			return fmt.Sprintf("%% of %s", tc.CategoryTotal.Name)
		}
		return "% of category total"
	default:
		return tc.Unit
	}
}
