package courier

import (
	"context"
	"testing"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
)

type stubTracker struct {
	name    string
	handles func(trackingNumber, company string) bool
}

func (s stubTracker) CanHandle(trackingNumber, company string) bool {
	return s.handles(trackingNumber, company)
}

func (s stubTracker) Track(ctx context.Context, trackingNumber string) (Result, error) {
	return Result{Status: s.name}, nil
}

func TestRegistry_OrderedFirstMatch(t *testing.T) {
	// Оба трекера берут 12-значные номера: выигрывает первый по порядку.
	first := stubTracker{name: "first", handles: func(tn, _ string) bool { return len(tn) == 12 }}
	second := stubTracker{name: "second", handles: func(tn, _ string) bool { return len(tn) == 12 }}
	r := NewRegistry(first, second)

	got := r.Get("123456789012", "")
	res, err := got.Track(context.Background(), "123456789012")
	require.NoError(t, err)
	require.Equal(t, "first", res.Status)
}

func TestRegistry_FallsBackToGeneric(t *testing.T) {
	picky := stubTracker{name: "picky", handles: func(tn, _ string) bool { return false }}
	r := NewRegistry(picky)

	got := r.Get("whatever", "whoever")
	_, ok := got.(Generic)
	require.True(t, ok)
}

func TestRegistry_EmptyStillHasCatchAll(t *testing.T) {
	r := NewRegistry()
	got := r.Get("", "")
	require.NotNil(t, got)
}

func TestGeneric_Track(t *testing.T) {
	res, err := Generic{}.Track(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, models.ParcelStatusPending, res.Status)
	require.Nil(t, res.ETA)
}
