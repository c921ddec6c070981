package upshttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_CanHandle(t *testing.T) {
	c := New("", "k")
	require.True(t, c.CanHandle("1Z999AA10123456784", ""))
	require.True(t, c.CanHandle("123456789012345678", ""))
	require.True(t, c.CanHandle("XYZ", "United Parcel Service (UPS)"))
	require.False(t, c.CanHandle("1z999aa10123456784", "amazon"))
	require.False(t, c.CanHandle("123456789012", "usps"))
}

func TestClient_Track_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/track/v1/details/1Z999AA10123456784", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"out_for_delivery","estimatedDeliveryDate":"2026-08-22"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	res, err := c.Track(context.Background(), "1Z999AA10123456784")
	require.NoError(t, err)
	require.Equal(t, "out_for_delivery", res.Status)
	require.Equal(t, "2026-08-22", *res.ETA)
}

func TestClient_Track_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{oops`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key")
	_, err := c.Track(context.Background(), "1Z999AA10123456784")
	require.Error(t, err)
}

func TestClient_Track_NoAPIKey(t *testing.T) {
	c := New("http://localhost:1", "")
	res, err := c.Track(context.Background(), "1Z999AA10123456784")
	require.NoError(t, err)
	require.Equal(t, "pending", res.Status)
}
