package parcels

import (
	"context"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

type Repository interface {
	Get(ctx context.Context, trackingNumber string) (*models.Parcel, error)
	ListAll(ctx context.Context) ([]*models.Parcel, error)
	Delete(ctx context.Context, trackingNumber string) (bool, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListParcels возвращает до limit посылок (новые первыми) и общее число записей.
// limit <= 0 значит "без ограничения".
func (s *Service) ListParcels(ctx context.Context, limit int) ([]*models.Parcel, int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if limit > 0 && total > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// GetParcel возвращает (nil, nil), когда посылки нет.
func (s *Service) GetParcel(ctx context.Context, trackingNumber string) (*models.Parcel, error) {
	if trackingNumber == "" {
		return nil, errors.New("trackingNumber is required")
	}
	return s.repo.Get(ctx, trackingNumber)
}

func (s *Service) DeleteParcel(ctx context.Context, trackingNumber string) (bool, error) {
	if trackingNumber == "" {
		return false, errors.New("trackingNumber is required")
	}
	return s.repo.Delete(ctx, trackingNumber)
}
