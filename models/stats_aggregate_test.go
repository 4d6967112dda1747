package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAggregatesEmpty(t *testing.T) {
	agg := CalculateAggregates(nil)
	assert.Equal(t, StatsAggregate{}, agg)

	agg = CalculateAggregates([]RestaurantStat{})
	assert.Equal(t, 0.0, agg.AverageOrderValue)
	assert.Equal(t, 0.0, agg.AverageRating)
	assert.Equal(t, 0.0, agg.CompletionRate)
}

func TestCalculateAggregatesWeightedRating(t *testing.T) {
	stats := []RestaurantStat{
		{AverageRating: 4.0, TotalReviews: 2},
		{AverageRating: 5.0, TotalReviews: 1},
	}

	agg := CalculateAggregates(stats)
	// (4.0*2 + 5.0*1) / 3 = 4.33, not the naive 4.5.
	assert.Equal(t, 4.33, agg.AverageRating)
}

func TestCalculateAggregatesRecomputesAOV(t *testing.T) {
	stats := []RestaurantStat{
		{TotalRevenue: 100, CompletedOrders: 4, AverageOrderValue: 999},
		{TotalRevenue: 50, CompletedOrders: 2, AverageOrderValue: 999},
	}

	agg := CalculateAggregates(stats)
	assert.Equal(t, 150.0, agg.TotalRevenue)
	assert.Equal(t, 25.0, agg.AverageOrderValue, "recomputed from sums, never averaged from rows")
}

func TestCalculateAggregatesRates(t *testing.T) {
	stats := []RestaurantStat{
		{TotalOrders: 10, CompletedOrders: 8, CancelledOrders: 2, ItemsSold: 30},
	}

	agg := CalculateAggregates(stats)
	assert.Equal(t, 80.0, agg.CompletionRate)
	assert.Equal(t, 20.0, agg.CancellationRate)
	assert.Equal(t, 3.0, agg.AverageItemsPerOrder)
}

func TestGrowthRateZeroPrevious(t *testing.T) {
	current := StatsAggregate{TotalOrders: 5}
	previous := StatsAggregate{}

	growth := CalculateGrowthRates(current, previous)
	assert.Equal(t, 100.0, growth["totalOrders"])
	assert.Equal(t, 0.0, growth["totalRevenue"], "zero to zero is no change")
}

func TestGrowthRateComputed(t *testing.T) {
	current := StatsAggregate{TotalRevenue: 150, TotalOrders: 12}
	previous := StatsAggregate{TotalRevenue: 100, TotalOrders: 10}

	growth := CalculateGrowthRates(current, previous)
	assert.Equal(t, 50.0, growth["totalRevenue"])
	assert.Equal(t, 20.0, growth["totalOrders"])
}

func TestGroupStatsByWeek(t *testing.T) {
	stats := []RestaurantStat{
		{Date: "2024-06-10", TotalOrders: 1}, // Monday, week of Sunday 2024-06-09
		{Date: "2024-06-12", TotalOrders: 2}, // same week
		{Date: "2024-06-16", TotalOrders: 4}, // Sunday, its own week start
	}

	weeks := GroupStatsByWeek(stats)
	assert.Len(t, weeks, 2)
	assert.Equal(t, "2024-06-09", weeks[0].Period)
	assert.Equal(t, "week", weeks[0].Type)
	assert.Equal(t, 3, weeks[0].TotalOrders)
	assert.Equal(t, "2024-06-16", weeks[1].Period)
	assert.Equal(t, 4, weeks[1].TotalOrders)
}

func TestGroupStatsByMonth(t *testing.T) {
	stats := []RestaurantStat{
		{Date: "2024-05-30", TotalOrders: 1},
		{Date: "2024-06-01", TotalOrders: 2},
		{Date: "2024-06-15", TotalOrders: 3},
	}

	months := GroupStatsByMonth(stats)
	assert.Len(t, months, 2)
	assert.Equal(t, "2024-05", months[0].Period)
	assert.Equal(t, "month", months[0].Type)
	assert.Equal(t, 1, months[0].TotalOrders)
	assert.Equal(t, "2024-06", months[1].Period)
	assert.Equal(t, 5, months[1].TotalOrders)
}

func TestCalculateTrends(t *testing.T) {
	assert.Empty(t, CalculateTrends([]RestaurantStat{{Date: "2024-06-15"}}), "one row has no trend")

	// Sorted date DESC: three recent, three older.
	stats := []RestaurantStat{
		{Date: "2024-06-15", TotalOrders: 10},
		{Date: "2024-06-14", TotalOrders: 10},
		{Date: "2024-06-13", TotalOrders: 10},
		{Date: "2024-06-12", TotalOrders: 5},
		{Date: "2024-06-11", TotalOrders: 5},
		{Date: "2024-06-10", TotalOrders: 5},
	}

	trends := CalculateTrends(stats)
	assert.Equal(t, 100.0, trends["totalOrders"], "30 orders vs 15 orders")
}

func TestGenerateInsights(t *testing.T) {
	assert.Empty(t, GenerateInsights(nil))

	excellent := []RestaurantStat{
		{TotalOrders: 10, CompletedOrders: 10, TotalRevenue: 500, AverageRating: 4.8, TotalReviews: 5},
	}
	insights := GenerateInsights(excellent)
	types := make(map[string]string)
	for _, in := range insights {
		types[in.Type] = in.Impact
	}
	assert.Equal(t, "positive", types["revenue"])
	assert.Equal(t, "positive", types["rating"])
	assert.NotContains(t, types, "operations", "100% completion needs no warning")

	struggling := []RestaurantStat{
		{TotalOrders: 10, CompletedOrders: 7, AverageRating: 2.5, TotalReviews: 4},
	}
	insights = GenerateInsights(struggling)
	types = make(map[string]string)
	for _, in := range insights {
		types[in.Type] = in.Impact
	}
	assert.Equal(t, "negative", types["rating"])
	assert.Equal(t, "warning", types["operations"])
}

func TestComputeDerived(t *testing.T) {
	stat := RestaurantStat{
		TotalOrders:        10,
		CompletedOrders:    8,
		CancelledOrders:    2,
		TotalRevenue:       200,
		TotalCustomers:     20,
		ReturningCustomers: 5,
		ViewCount:          100,
		ItemsSold:          30,
	}
	stat.ComputeDerived()

	assert.Equal(t, 20.0, stat.OrderCancellationRate)
	assert.Equal(t, 25.0, stat.AverageOrderValue)
	assert.Equal(t, 25.0, stat.CustomerRetentionRate)
	assert.Equal(t, 10.0, stat.ConversionRate)
	assert.Equal(t, 3.0, stat.AverageItemsPerOrder)
}

func TestComputeDerivedGuardsZeroDenominators(t *testing.T) {
	stat := RestaurantStat{AverageOrderValue: 42}
	stat.ComputeDerived()

	assert.Equal(t, 0.0, stat.OrderCancellationRate)
	assert.Equal(t, 42.0, stat.AverageOrderValue, "untouched when denominators are zero")
	assert.Equal(t, 0.0, stat.ConversionRate)
}
