package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeTracker_Deterministic(t *testing.T) {
	f := New()
	a, err := f.Track(context.Background(), "1Z999AA10123456784")
	require.NoError(t, err)
	b, err := f.Track(context.Background(), "1Z999AA10123456784")
	require.NoError(t, err)
	require.Equal(t, a.Status, b.Status)
	require.NotEmpty(t, a.Status)
}

func TestErrTracker(t *testing.T) {
	_, err := ErrTracker{}.Track(context.Background(), "N")
	require.Error(t, err)
}
