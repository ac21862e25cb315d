package planning

import (
	"strconv"
	"strings"

	"facility_dashboard_backend/internal/models"
)

// Fallbacks used when the settings table has no usable value.
const (
	FallbackCapacity  = 180
	FallbackMealCount = 45
)

// FallbackOperatingDays is Monday to Friday.
var FallbackOperatingDays = []int{1, 2, 3, 4, 5}

// ParseGlobalSettings converts the raw settings table into GlobalSettings.
// Missing, blank, negative or non-numeric values take the fallback constants.
func ParseGlobalSettings(raw map[string]string) models.GlobalSettings {
	settings := models.GlobalSettings{
		DefaultCapacity:  parseSetting(raw[models.SettingDefaultCapacity], FallbackCapacity),
		DefaultMealCount: parseSetting(raw[models.SettingDefaultMealCount], FallbackMealCount),
		OperatingDays:    append([]int(nil), FallbackOperatingDays...),
	}
	if value, ok := raw[models.SettingOperatingDays]; ok {
		if set, err := ParseWeekdays(value); err == nil {
			settings.OperatingDays = set.Days()
		}
	}
	return settings
}

// FallbackSettings returns the settings used before anything was stored.
func FallbackSettings() models.GlobalSettings {
	return ParseGlobalSettings(nil)
}

func parseSetting(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// Resolve overlays the override for date on top of the global settings. An
// override for a different date is ignored.
func Resolve(date string, settings models.GlobalSettings, override *models.DailyConfig) models.Capacity {
	if override != nil && override.Date == date {
		return models.Capacity{
			Capacity:      override.Capacity,
			BaseMealCount: override.MealCount,
		}
	}
	return models.Capacity{
		Capacity:      settings.DefaultCapacity,
		BaseMealCount: settings.DefaultMealCount,
	}
}

// RemainingCapacity is capacity minus base and event meals. It may be negative.
func RemainingCapacity(c models.Capacity, eventMeals int) int {
	return c.Capacity - (c.BaseMealCount + eventMeals)
}

// Detail builds the derived planning row of one date.
func Detail(date string, visits, eventMeals int, c models.Capacity) models.DailyDetail {
	remaining := RemainingCapacity(c, eventMeals)
	return models.DailyDetail{
		Date:        date,
		Visits:      visits,
		EventMeals:  eventMeals,
		BaseMeals:   c.BaseMealCount,
		TotalMeals:  c.BaseMealCount + eventMeals,
		Capacity:    c.Capacity,
		Remaining:   remaining,
		IsAvailable: remaining > 0,
	}
}
