package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
gmail:
  token_path: "/var/lib/parcelbox/token"
  max_emails_per_check: 50
database:
  driver: "sqlite"
  path: "parcels.db"
couriers:
  fedex_api_key: "fk"
  ups_api_key: "uk"
kafka:
  host: "localhost"
  port: 9092
  parcel_updated_topic_name: "parcel.updated"
redis:
  host: "localhost"
  port: 6379
parcelbox:
  check_interval_minutes: 15
  terminal_refresh_seconds: 30
  max_display_parcels: 20
  http_addr: ":8082"
  log_level: "info"
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/parcelbox/token", cfg.Gmail.TokenPath)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "fk", cfg.Couriers.FedExAPIKey)
	require.Equal(t, "parcel.updated", cfg.Kafka.ParcelUpdatedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, 15, cfg.ParcelBox.CheckIntervalMinutes)
	require.Equal(t, ":8082", cfg.ParcelBox.HTTPAddr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
