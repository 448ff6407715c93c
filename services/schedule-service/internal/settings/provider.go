package settings

import (
	"context"

	"tutorplan/services/schedule-service/internal/model"
	"tutorplan/services/schedule-service/internal/storage"
)

// Provider resolves a tutor's working hours. The store-backed provider reads
// the local settings table; deployments that centralize business settings can
// swap in the gRPC provider instead.
type Provider interface {
	WorkingHours(ctx context.Context, tutorID string) (model.Settings, error)
}

type storeProvider struct {
	repo *storage.SettingsRepository
}

func NewStoreProvider(repo *storage.SettingsRepository) Provider {
	return &storeProvider{repo: repo}
}

func (p *storeProvider) WorkingHours(ctx context.Context, tutorID string) (model.Settings, error) {
	return p.repo.Get(ctx, tutorID)
}
