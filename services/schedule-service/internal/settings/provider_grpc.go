//go:build protogen

package settings

import (
	"context"
	"log/slog"
	"time"

	"tutorplan/libs/grpcx"
	settingsv1 "tutorplan/protos/gen/settings/v1"
	"tutorplan/services/schedule-service/internal/model"
	"tutorplan/services/schedule-service/internal/storage"
)

type grpcProvider struct {
	client   settingsv1.SettingsServiceClient
	fallback Provider
}

func NewProvider(logger *slog.Logger, repo *storage.SettingsRepository, addr string) (Provider, error) {
	fallback := NewStoreProvider(repo)
	if addr == "" {
		return fallback, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpcx.Dial(ctx, addr, grpcx.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("grpc settings provider unavailable, using local store", "err", err)
		return fallback, nil
	}

	logger.Info("grpc settings provider enabled", "addr", addr)
	return &grpcProvider{client: settingsv1.NewSettingsServiceClient(conn), fallback: fallback}, nil
}

func (p *grpcProvider) WorkingHours(ctx context.Context, tutorID string) (model.Settings, error) {
	resp, err := p.client.GetWorkingHours(ctx, &settingsv1.WorkingHoursRequest{TutorId: tutorID})
	if err != nil {
		return p.fallback.WorkingHours(ctx, tutorID)
	}
	return model.Settings{
		TutorID:   tutorID,
		WorkStart: resp.GetWorkStart(),
		WorkEnd:   resp.GetWorkEnd(),
	}, nil
}
