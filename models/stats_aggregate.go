package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// StatsAggregate is the rollup of a set of daily rows. Sums are plain sums;
// averageOrderValue is recomputed from the summed revenue and completed
// orders, and averageRating is weighted by each day's review count, never a
// naive average of daily averages.
type StatsAggregate struct {
	TotalOrders          int     `json:"totalOrders"`
	CompletedOrders      int     `json:"completedOrders"`
	CancelledOrders      int     `json:"cancelledOrders"`
	TotalRevenue         float64 `json:"totalRevenue"`
	AverageOrderValue    float64 `json:"averageOrderValue"`
	AverageRating        float64 `json:"averageRating"`
	CompletionRate       float64 `json:"completionRate"`
	CancellationRate     float64 `json:"cancellationRate"`
	ItemsSold            int     `json:"itemsSold"`
	TotalCustomers       int     `json:"totalCustomers"`
	AverageItemsPerOrder float64 `json:"averageItemsPerOrder"`
}

// CalculateAggregates rolls up daily rows. An empty input yields the zero
// aggregate; no division happens on zero denominators.
func CalculateAggregates(stats []RestaurantStat) StatsAggregate {
	var agg StatsAggregate
	if len(stats) == 0 {
		return agg
	}

	var ratingSum float64
	var totalReviews int

	for _, s := range stats {
		agg.TotalOrders += s.TotalOrders
		agg.CompletedOrders += s.CompletedOrders
		agg.CancelledOrders += s.CancelledOrders
		agg.TotalRevenue += s.TotalRevenue
		agg.ItemsSold += s.ItemsSold
		agg.TotalCustomers += s.TotalCustomers
		ratingSum += s.AverageRating * float64(s.TotalReviews)
		totalReviews += s.TotalReviews
	}

	agg.TotalRevenue = round2(agg.TotalRevenue)
	if agg.CompletedOrders > 0 {
		agg.AverageOrderValue = round2(agg.TotalRevenue / float64(agg.CompletedOrders))
	}
	if totalReviews > 0 {
		agg.AverageRating = round2(ratingSum / float64(totalReviews))
	}
	if agg.TotalOrders > 0 {
		agg.CompletionRate = round2(float64(agg.CompletedOrders) / float64(agg.TotalOrders) * 100)
		agg.CancellationRate = round2(float64(agg.CancelledOrders) / float64(agg.TotalOrders) * 100)
		agg.AverageItemsPerOrder = round2(float64(agg.ItemsSold) / float64(agg.TotalOrders))
	}

	return agg
}

// CalculateGrowthRates compares two aggregates metric by metric. A zero
// previous value yields 100 when the current value is positive and 0
// otherwise, so a change is still signalled without dividing by zero.
func CalculateGrowthRates(current, previous StatsAggregate) map[string]float64 {
	return map[string]float64{
		"totalOrders":          growthRate(float64(current.TotalOrders), float64(previous.TotalOrders)),
		"completedOrders":      growthRate(float64(current.CompletedOrders), float64(previous.CompletedOrders)),
		"cancelledOrders":      growthRate(float64(current.CancelledOrders), float64(previous.CancelledOrders)),
		"totalRevenue":         growthRate(current.TotalRevenue, previous.TotalRevenue),
		"averageOrderValue":    growthRate(current.AverageOrderValue, previous.AverageOrderValue),
		"averageRating":        growthRate(current.AverageRating, previous.AverageRating),
		"completionRate":       growthRate(current.CompletionRate, previous.CompletionRate),
		"cancellationRate":     growthRate(current.CancellationRate, previous.CancellationRate),
		"itemsSold":            growthRate(float64(current.ItemsSold), float64(previous.ItemsSold)),
		"totalCustomers":       growthRate(float64(current.TotalCustomers), float64(previous.TotalCustomers)),
		"averageItemsPerOrder": growthRate(current.AverageItemsPerOrder, previous.AverageItemsPerOrder),
	}
}

func growthRate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// PeriodAggregate tags an aggregate with the bucket it covers.
type PeriodAggregate struct {
	Period string `json:"period"`
	Type   string `json:"type"`
	StatsAggregate
}

// GroupStatsByWeek buckets rows by the Sunday starting their calendar week.
func GroupStatsByWeek(stats []RestaurantStat) []PeriodAggregate {
	weeks := make(map[string][]RestaurantStat)

	for _, s := range stats {
		date, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			continue
		}
		weekStart := date.AddDate(0, 0, -int(date.Weekday())).Format("2006-01-02")
		weeks[weekStart] = append(weeks[weekStart], s)
	}

	return buildPeriodAggregates(weeks, "week")
}

// GroupStatsByMonth buckets rows by the YYYY-MM prefix of their date.
func GroupStatsByMonth(stats []RestaurantStat) []PeriodAggregate {
	months := make(map[string][]RestaurantStat)

	for _, s := range stats {
		if len(s.Date) < 7 {
			continue
		}
		months[s.Date[:7]] = append(months[s.Date[:7]], s)
	}

	return buildPeriodAggregates(months, "month")
}

func buildPeriodAggregates(buckets map[string][]RestaurantStat, periodType string) []PeriodAggregate {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PeriodAggregate, 0, len(keys))
	for _, k := range keys {
		out = append(out, PeriodAggregate{
			Period:         k,
			Type:           periodType,
			StatsAggregate: CalculateAggregates(buckets[k]),
		})
	}
	return out
}

// CalculateTrends compares the most recent three rows against the three
// before them. Rows must be sorted by date descending. Fewer than two rows
// yield no trend.
func CalculateTrends(stats []RestaurantStat) map[string]float64 {
	if len(stats) < 2 {
		return map[string]float64{}
	}

	recent := stats[:min(3, len(stats))]
	var older []RestaurantStat
	if len(stats) > 3 {
		older = stats[3:min(6, len(stats))]
	}

	return CalculateGrowthRates(CalculateAggregates(recent), CalculateAggregates(older))
}

// Insight is an advisory message derived from aggregates. It never drives
// control flow.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Impact  string `json:"impact"`
}

const (
	ratingExcellentThreshold = 4.5
	ratingPoorThreshold      = 3.0
	completionRateThreshold  = 85.0
)

func GenerateInsights(stats []RestaurantStat) []Insight {
	insights := []Insight{}
	agg := CalculateAggregates(stats)

	if agg.TotalRevenue > 0 {
		insights = append(insights, Insight{
			Type:    "revenue",
			Message: fmt.Sprintf("Total revenue of €%.2f with an average order value of €%.2f", agg.TotalRevenue, agg.AverageOrderValue),
			Impact:  "positive",
		})
	}

	if agg.AverageRating >= ratingExcellentThreshold {
		insights = append(insights, Insight{
			Type:    "rating",
			Message: fmt.Sprintf("Excellent customer satisfaction with %.2f/5 average rating", agg.AverageRating),
			Impact:  "positive",
		})
	} else if agg.AverageRating > 0 && agg.AverageRating < ratingPoorThreshold {
		insights = append(insights, Insight{
			Type:    "rating",
			Message: fmt.Sprintf("Customer satisfaction needs attention with %.2f/5 average rating", agg.AverageRating),
			Impact:  "negative",
		})
	}

	if agg.TotalOrders > 0 && agg.CompletionRate < completionRateThreshold {
		insights = append(insights, Insight{
			Type:    "operations",
			Message: fmt.Sprintf("Order completion rate of %.2f%% could be improved", agg.CompletionRate),
			Impact:  "warning",
		})
	}

	return insights
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
