// Package analytics derives spending figures from a user's inventory.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// Period selects the trend granularity.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// ParsePeriod accepts "monthly" or "weekly"; empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	}
	return "", domain.ErrInvalidPeriod
}

type CategoryCost struct {
	Category string  `json:"category"`
	Cost     float64 `json:"cost"`
	Percent  float64 `json:"percent"`
}

type TrendPoint struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

type Report struct {
	Period       Period         `json:"period"`
	Total        float64        `json:"total"`
	Budget       float64        `json:"budget"`
	OverBudget   bool           `json:"over_budget"`
	ExpiringSoon int            `json:"expiring_soon"`
	Categories   []CategoryCost `json:"categories"`
	Trend        []TrendPoint   `json:"trend"`
}

var (
	monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	dayLabels   = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// Compute builds the report for items as seen at now in loc.
// Items already past their expiry date are left out of every figure.
func Compute(items []*domain.Item, period Period, budget float64, now time.Time, loc *time.Location) *Report {
	today := domain.DateOf(now, loc)
	r := &Report{Period: period, Budget: budget}

	byCategory := make(map[string]float64)
	var live []*domain.Item
	for _, it := range items {
		days := today.DaysUntil(it.ExpiryDate)
		if days < 0 {
			continue
		}
		live = append(live, it)
		cost := it.Cost()
		r.Total += cost
		byCategory[it.Category] += cost
		if days <= domain.ExpiringSoonDays {
			r.ExpiringSoon++
		}
	}

	r.OverBudget = budget > 0 && r.Total > budget
	r.Categories = categories(byCategory, r.Total)

	if period == PeriodWeekly {
		r.Trend = weekly(live, today, loc)
	} else {
		r.Trend = monthly(live, now.In(loc).Year(), loc)
	}
	return r
}

func categories(costs map[string]float64, total float64) []CategoryCost {
	out := make([]CategoryCost, 0, len(costs))
	for cat, cost := range costs {
		var pct float64
		if total > 0 {
			pct = math.Round(cost/total*1000) / 10
		}
		out = append(out, CategoryCost{Category: cat, Cost: cost, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// monthly buckets cost by created month within the given year.
func monthly(items []*domain.Item, year int, loc *time.Location) []TrendPoint {
	points := make([]TrendPoint, 12)
	for i := range points {
		points[i].Label = monthLabels[i]
	}
	for _, it := range items {
		created := it.CreatedAt.In(loc)
		if created.Year() != year {
			continue
		}
		points[created.Month()-1].Cost += it.Cost()
	}
	return points
}

// weekly buckets cost by created day over the seven days ending today.
func weekly(items []*domain.Item, today domain.Date, loc *time.Location) []TrendPoint {
	points := make([]TrendPoint, 7)
	first := today.AddDays(-6)
	for i := range points {
		points[i].Label = dayLabels[first.AddDays(i).Weekday()]
	}
	for _, it := range items {
		idx := first.DaysUntil(domain.DateOf(it.CreatedAt, loc))
		if idx < 0 || idx > 6 {
			continue
		}
		points[idx].Cost += it.Cost()
	}
	return points
}
