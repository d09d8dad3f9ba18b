package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTIFY_TRANSPORT", "none")
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("STUB_PORT", "8081")
	t.Setenv("MARKETPLACE_URL", "http://localhost:8081")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load("dashboard")
	require.NoError(t, err)
	require.Equal(t, "dashboard", cfg.RunMode)
	require.Equal(t, "http://localhost:8081", cfg.MarketplaceURL)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, NotifyNone, cfg.NotifyTransport)
	require.False(t, cfg.ImagesEnabled())
}

func TestLoad_TypedValues(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("SNAPSHOT_TTL_MINUTES", "5")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")
	t.Setenv("MIN_AUCTION_IMAGES", "2")
	t.Setenv("NOTIFY_TRANSPORT", "KAFKA")
	t.Setenv("AWS_S3_BUCKET", "bucket")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load("all")
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 5*time.Minute, cfg.SnapshotTTL)
	require.Equal(t, 25, cfg.DefaultPageSize)
	require.Equal(t, 2, cfg.MinAuctionImages)
	require.Equal(t, NotifyKafka, cfg.NotifyTransport)
	require.True(t, cfg.ImagesEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad_timeout", env: map[string]string{"HTTP_TIMEOUT_SECONDS": "soon"}},
		{name: "bad_transport", env: map[string]string{"NOTIFY_TRANSPORT": "carrier-pigeon"}},
		{name: "redis_transport_without_redis", env: map[string]string{"NOTIFY_TRANSPORT": "redis", "REDIS_ENABLED": "false"}},
		{name: "zero_page_size", env: map[string]string{"DEFAULT_PAGE_SIZE": "0"}},
		{name: "oversized_page_size", env: map[string]string{"DEFAULT_PAGE_SIZE": "101"}},
		{name: "bad_redis_db", env: map[string]string{"REDIS_DB": "one"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("dashboard")
			require.Error(t, err)
		})
	}
}
