//go:build !protogen

package settings

import (
	"log/slog"

	"tutorplan/services/schedule-service/internal/storage"
)

func NewProvider(_ *slog.Logger, repo *storage.SettingsRepository, _ string) (Provider, error) {
	return NewStoreProvider(repo), nil
}
