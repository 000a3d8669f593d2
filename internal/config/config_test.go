package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "telecare", cfg.App.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, float64(10), cfg.FeeSchedule.CommissionRatePercent)
	assert.Equal(t, 7, cfg.FeeSchedule.EscrowHoldDays)
	assert.True(t, cfg.FeeSchedule.AutoReleaseEscrow)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
app:
  name: telecare
  environment: staging
http:
  port: 9000
escrow:
  sweep_interval: 15s
fee_schedule:
  commission_rate_percent: 12.5
  booking_fee: 700
  cancellation_fee: 1500
  escrow_hold_days: 3
  auto_release_escrow: false
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.Escrow.SweepInterval)
	assert.Equal(t, 12.5, cfg.FeeSchedule.CommissionRatePercent)
	assert.EqualValues(t, 700, cfg.FeeSchedule.BookingFee)
	assert.False(t, cfg.FeeSchedule.AutoReleaseEscrow)
}

func TestLoad_InvalidFeeScheduleRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
fee_schedule:
  commission_rate_percent: 140
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/telecare_test")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/telecare_test", cfg.Database.URL)
	assert.Equal(t, 8181, cfg.HTTP.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
}
