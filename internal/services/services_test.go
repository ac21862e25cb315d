package services

import (
	"testing"
	"time"

	"facility_dashboard_backend/internal/repositories"
	"facility_dashboard_backend/internal/store/memory"
)

// testEnv wires every repository to one in-memory store.
type testEnv struct {
	backend      *memory.Backend
	visits       repositories.VisitRepository
	meals        repositories.MealRepository
	events       repositories.EventRepository
	settingsRepo repositories.SettingRepository
	dailyConfigs repositories.DailyConfigRepository
	settings     SettingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := memory.NewBackend()
	env := &testEnv{
		backend:      backend,
		visits:       repositories.NewVisitRepository(backend),
		meals:        repositories.NewMealRepository(backend),
		events:       repositories.NewEventRepository(backend),
		settingsRepo: repositories.NewSettingRepository(backend),
		dailyConfigs: repositories.NewDailyConfigRepository(backend),
	}
	env.settings = NewSettingsService(env.settingsRepo, env.dailyConfigs)
	return env
}

// fixedClock pins now to noon UTC of date.
func fixedClock(date string) Clock {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func intPtr(n int) *int { return &n }
