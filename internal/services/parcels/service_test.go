package parcels

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	listOut []*models.Parcel
	listErr error

	getIn  string
	getOut *models.Parcel
	getErr error

	deleteIn  string
	deleteOut bool
	deleteErr error
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]*models.Parcel, error) {
	return f.listOut, f.listErr
}
func (f *fakeRepo) Get(ctx context.Context, trackingNumber string) (*models.Parcel, error) {
	f.getIn = trackingNumber
	return f.getOut, f.getErr
}
func (f *fakeRepo) Delete(ctx context.Context, trackingNumber string) (bool, error) {
	f.deleteIn = trackingNumber
	return f.deleteOut, f.deleteErr
}

func makeParcels(n int) []*models.Parcel {
	now := time.Now().UTC()
	out := make([]*models.Parcel, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &models.Parcel{
			TrackingNumber: string(rune('A'+i)) + "123",
			Courier:        models.CourierUnknown,
			Company:        models.CompanyUnknown,
			Status:         models.ParcelStatusPending,
			LastUpdated:    now,
			CreatedAt:      now,
		})
	}
	return out
}

func TestService_ListParcels_capsAtLimit(t *testing.T) {
	r := &fakeRepo{listOut: makeParcels(5)}
	s := New(r)

	out, total, err := s.ListParcels(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, 5, total)
	require.Equal(t, "A123", out[0].TrackingNumber)

	// limit <= 0 — без ограничения
	out, total, err = s.ListParcels(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 5)
	require.Equal(t, 5, total)

	out, total, err = s.ListParcels(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out, 5)
	require.Equal(t, 5, total)
}

func TestService_GetParcel_validate(t *testing.T) {
	r := &fakeRepo{getOut: &models.Parcel{TrackingNumber: "X1"}}
	s := New(r)

	_, err := s.GetParcel(context.Background(), "")
	require.Error(t, err)

	p, err := s.GetParcel(context.Background(), "X1")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "X1", r.getIn)
}

func TestService_DeleteParcel_validate(t *testing.T) {
	r := &fakeRepo{deleteOut: true}
	s := New(r)

	_, err := s.DeleteParcel(context.Background(), "")
	require.Error(t, err)

	ok, err := s.DeleteParcel(context.Background(), "X1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "X1", r.deleteIn)
}
