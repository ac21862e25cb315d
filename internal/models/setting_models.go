package models

// Keys of the settings table.
const (
	SettingDefaultCapacity  = "default_capacity"
	SettingDefaultMealCount = "default_meal_count"
	SettingOperatingDays    = "operating_days"
)

// ApplicationSetting represents a key-value pair of the settings table.
type ApplicationSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GlobalSettings is the parsed form of the settings table. It is the fallback
// layer for every capacity computation.
type GlobalSettings struct {
	DefaultCapacity  int   `json:"default_capacity"`
	DefaultMealCount int   `json:"default_meal_count"`
	OperatingDays    []int `json:"operating_days"` // weekdays, Sunday = 0
}

// DailyConfig overrides the global capacity and base meal count for one date.
type DailyConfig struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Capacity  int    `json:"capacity"`
	MealCount int    `json:"meal_count"`
}
