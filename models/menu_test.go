package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(v time.Time) *time.Time {
	return &v
}

func TestMenuIsVisibleAt(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -7)
	future := now.AddDate(0, 0, 7)

	cases := []struct {
		name    string
		menu    Menu
		visible bool
	}{
		{"unavailable", Menu{IsAvailable: false}, false},
		{"no bounds", Menu{IsAvailable: true}, true},
		{"open start only", Menu{IsAvailable: true, ValidUntil: timePtr(future)}, true},
		{"open end only", Menu{IsAvailable: true, ValidFrom: timePtr(past)}, true},
		{"both bounded inside", Menu{IsAvailable: true, ValidFrom: timePtr(past), ValidUntil: timePtr(future)}, true},
		{"not started yet", Menu{IsAvailable: true, ValidFrom: timePtr(future)}, false},
		{"already expired", Menu{IsAvailable: true, ValidUntil: timePtr(past)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.visible, tc.menu.IsVisibleAt(now))
		})
	}
}

func TestMenuNutritionalSummary(t *testing.T) {
	menu := Menu{
		Items: []MenuItem{
			{
				Quantity: 2,
				Item: Item{
					Calories:        300,
					NutritionalInfo: NutritionalInfo{Protein: 12.5, Carbs: 40.2, Fat: 9.1},
				},
			},
			{
				Quantity: 1,
				Item: Item{
					Calories:        150,
					NutritionalInfo: NutritionalInfo{Protein: 5.0, Carbs: 20.0, Fat: 3.33},
				},
			},
		},
	}

	summary := menu.NutritionalSummary()
	assert.Equal(t, 750, summary.TotalCalories)
	assert.Equal(t, 30.0, summary.TotalProtein)
	assert.Equal(t, 100.4, summary.TotalCarbohydrates)
	assert.Equal(t, 21.5, summary.TotalFat)
}

func TestMenuNutritionalSummaryTreatsZeroQuantityAsOne(t *testing.T) {
	menu := Menu{
		Items: []MenuItem{
			{Item: Item{Calories: 100}},
		},
	}
	assert.Equal(t, 100, menu.NutritionalSummary().TotalCalories)
}

func TestMenuNutritionalSummaryEmpty(t *testing.T) {
	menu := Menu{}
	summary := menu.NutritionalSummary()
	assert.Equal(t, 0, summary.TotalCalories)
	assert.Equal(t, 0.0, summary.TotalProtein)
}
