package sqliteparcel

import (
	"context"
	"database/sql"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

// Метки времени храним строками фиксированной ширины: тогда сравнение
// last_updated в SQL (строковое) совпадает с хронологическим.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const parcelColumns = "tracking_number, courier, company, status, eta, last_updated, email_subject, created_at"

// Upsert вставляет посылку или заменяет существующую запись с тем же номером.
// Замена защищена: снимок со старым last_updated не перетирает более свежий,
// а created_at при конфликте не трогается вовсе.
func (s *Storage) Upsert(ctx context.Context, p *models.Parcel) error {
	if p == nil {
		return errors.New("parcel is nil")
	}
	if p.TrackingNumber == "" {
		return errors.New("tracking number is empty")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO parcels (`+parcelColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(tracking_number) DO UPDATE SET
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
		nullableString(p.ETA),
		p.LastUpdated.UTC().Format(timeLayout),
		nullableString(p.EmailSubject),
		p.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return errors.Wrap(err, "upsert parcel")
	}
	return nil
}

// Get возвращает (nil, nil), когда посылки нет.
func (s *Storage) Get(ctx context.Context, trackingNumber string) (*models.Parcel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+parcelColumns+` FROM parcels WHERE tracking_number = ?`, trackingNumber)
	p, err := scanParcel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get parcel")
	}
	return p, nil
}

// ListAll возвращает все посылки, новые первыми.
func (s *Storage) ListAll(ctx context.Context) ([]*models.Parcel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+parcelColumns+` FROM parcels ORDER BY created_at DESC, tracking_number`)
	if err != nil {
		return nil, errors.Wrap(err, "list parcels")
	}
	defer rows.Close()

	var out []*models.Parcel
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan parcel")
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) Delete(ctx context.Context, trackingNumber string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM parcels WHERE tracking_number = ?`, trackingNumber)
	if err != nil {
		return false, errors.Wrap(err, "delete parcel")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected > 0, nil
}

func scanParcel(scanner interface{ Scan(dest ...any) error }) (*models.Parcel, error) {
	var (
		p           models.Parcel
		eta         sql.NullString
		lastUpdated string
		subject     sql.NullString
		createdAt   string
	)

	if err := scanner.Scan(
		&p.TrackingNumber,
		&p.Courier,
		&p.Company,
		&p.Status,
		&eta,
		&lastUpdated,
		&subject,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if eta.Valid {
		v := eta.String
		p.ETA = &v
	}
	if subject.Valid {
		v := subject.String
		p.EmailSubject = &v
	}

	var err error
	if p.LastUpdated, err = time.Parse(timeLayout, lastUpdated); err != nil {
		return nil, errors.Wrap(err, "parse last_updated")
	}
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, errors.Wrap(err, "parse created_at")
	}
	return &p, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
