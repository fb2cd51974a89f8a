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
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  status_updated_topic_name: "shipment.status.updated"
redis:
  host: "localhost"
  port: 6379
shipdesk:
  http_addr: ":8080"
  kafka_consumer_group: "ship-worker"
  jwt_secret: "test-secret"
  jwt_ttl_hours: 24
  cost_per_kilogram: 10
  tracking_snapshot_ttl_seconds: 600
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "shipment.status.updated", cfg.Kafka.StatusUpdatedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8080", cfg.ShipDesk.HTTPAddr)
	require.Equal(t, 10.0, cfg.ShipDesk.CostPerKilogram)
	require.Equal(t, "ship-worker", cfg.ShipDesk.KafkaConsumerGroup)
}

func TestLoadConfig_missingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
