package pgparcel

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPGParcel_RepoFlow(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "parcelbox_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/parcelbox_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	now := time.Now().UTC()
	subject := "Your package is on the way"
	p := &models.Parcel{
		TrackingNumber: "1Z999AA10123456784",
		Courier:        models.CourierUPS,
		Company:        "amazon",
		Status:         models.ParcelStatusPending,
		LastUpdated:    now,
		EmailSubject:   &subject,
		CreatedAt:      now,
	}
	require.NoError(t, st.Upsert(ctx, p))

	got, err := st.Get(ctx, p.TrackingNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, models.ParcelStatusPending, got.Status)
	require.Nil(t, got.ETA)
	require.NotNil(t, got.EmailSubject)
	require.Equal(t, subject, *got.EmailSubject)
	require.WithinDuration(t, now, got.CreatedAt, time.Second)

	// свежий снимок обновляет статус
	eta := "2026-09-01"
	p.Status = models.ParcelStatusInTransit
	p.ETA = &eta
	p.LastUpdated = now.Add(time.Minute)
	require.NoError(t, st.Upsert(ctx, p))

	got, err = st.Get(ctx, p.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.ParcelStatusInTransit, got.Status)
	require.NotNil(t, got.ETA)
	require.Equal(t, eta, *got.ETA)

	// снимок со старым last_updated игнорируется
	stale := &models.Parcel{
		TrackingNumber: p.TrackingNumber,
		Courier:        models.CourierUPS,
		Company:        "amazon",
		Status:         models.ParcelStatusPending,
		LastUpdated:    now.Add(-time.Hour),
		CreatedAt:      now.Add(-time.Hour),
	}
	require.NoError(t, st.Upsert(ctx, stale))

	got, err = st.Get(ctx, p.TrackingNumber)
	require.NoError(t, err)
	require.Equal(t, models.ParcelStatusInTransit, got.Status)
	require.WithinDuration(t, now, got.CreatedAt, time.Second)

	// второй трек для проверки порядка листинга
	second := &models.Parcel{
		TrackingNumber: "123456789012",
		Courier:        models.CourierFedEx,
		Company:        "fedex",
		Status:         models.ParcelStatusPending,
		LastUpdated:    now.Add(time.Hour),
		CreatedAt:      now.Add(time.Hour),
	}
	require.NoError(t, st.Upsert(ctx, second))

	parcels, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, parcels, 2)
	require.Equal(t, second.TrackingNumber, parcels[0].TrackingNumber)
	require.Equal(t, p.TrackingNumber, parcels[1].TrackingNumber)

	deleted, err := st.Delete(ctx, second.TrackingNumber)
	require.NoError(t, err)
	require.True(t, deleted)

	gone, err := st.Get(ctx, second.TrackingNumber)
	require.NoError(t, err)
	require.Nil(t, gone)
}
