package pgparcel

import (
	"context"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const parcelColumns = "tracking_number, courier, company, status, eta, last_updated, email_subject, created_at"

// Upsert вставляет посылку или заменяет существующую запись с тем же номером.
// Снимок со старым last_updated не перетирает более свежий, created_at при
// конфликте не трогается.
func (s *Storage) Upsert(ctx context.Context, p *models.Parcel) error {
	if p == nil {
		return errors.New("parcel is nil")
	}
	if p.TrackingNumber == "" {
		return errors.New("tracking number is empty")
	}

	_, err := s.db.Exec(ctx, `
INSERT INTO parcels (`+parcelColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (tracking_number) DO UPDATE SET
  courier = excluded.courier,
  company = excluded.company,
  status = excluded.status,
  eta = excluded.eta,
  last_updated = excluded.last_updated,
  email_subject = excluded.email_subject
WHERE excluded.last_updated >= parcels.last_updated
`,
		p.TrackingNumber,
		p.Courier,
		p.Company,
		p.Status,
		p.ETA,
		p.LastUpdated.UTC(),
		p.EmailSubject,
		p.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "upsert parcel")
	}
	return nil
}

// Get возвращает (nil, nil), когда посылки нет.
func (s *Storage) Get(ctx context.Context, trackingNumber string) (*models.Parcel, error) {
	var p models.Parcel
	err := s.db.QueryRow(ctx,
		`SELECT `+parcelColumns+` FROM parcels WHERE tracking_number = $1`, trackingNumber,
	).Scan(
		&p.TrackingNumber, &p.Courier, &p.Company, &p.Status,
		&p.ETA, &p.LastUpdated, &p.EmailSubject, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get parcel")
	}
	return &p, nil
}

// ListAll возвращает все посылки, новые первыми.
func (s *Storage) ListAll(ctx context.Context) ([]*models.Parcel, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+parcelColumns+` FROM parcels ORDER BY created_at DESC, tracking_number`)
	if err != nil {
		return nil, errors.Wrap(err, "list parcels")
	}
	defer rows.Close()

	var out []*models.Parcel
	for rows.Next() {
		var p models.Parcel
		if err := rows.Scan(
			&p.TrackingNumber, &p.Courier, &p.Company, &p.Status,
			&p.ETA, &p.LastUpdated, &p.EmailSubject, &p.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan parcel")
		}
		out = append(out, &p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) Delete(ctx context.Context, trackingNumber string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM parcels WHERE tracking_number = $1`, trackingNumber)
	if err != nil {
		return false, errors.Wrap(err, "delete parcel")
	}
	return tag.RowsAffected() > 0, nil
}
