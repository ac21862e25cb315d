package repositories

import (
	"context"

	"facility_dashboard_backend/internal/models"
	"facility_dashboard_backend/internal/store"
)

// SettingRepository defines the store operations on the key/value settings table.
type SettingRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, settings []models.ApplicationSetting) error
}

type settingRepository struct {
	table store.Table
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(backend store.Backend) SettingRepository {
	return &settingRepository{table: backend.Table(store.TableSettings)}
}

func (r *settingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.table.Select(ctx, store.Query{})
	if err != nil {
		return nil, dbError("loading settings", err)
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		key, err := rowString(row, "key")
		if err != nil {
			return nil, err
		}
		value, err := rowString(row, "value")
		if err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, nil
}

// Upsert writes all settings in one call, keyed on the setting key.
func (r *settingRepository) Upsert(ctx context.Context, settings []models.ApplicationSetting) error {
	rows := make([]store.Row, len(settings))
	for i, s := range settings {
		rows[i] = store.Row{"key": s.Key, "value": s.Value}
	}
	if err := r.table.Upsert(ctx, rows, "key"); err != nil {
		return dbError("saving settings", err)
	}
	return nil
}
