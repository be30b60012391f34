package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_AnalyticsConfig(t *testing.T) {
	os.Setenv("ANALYTICS_VETERAN_INACTIVE_MONTHS", "4")
	os.Setenv("ANALYTICS_CIVILIAN_INACTIVE_MONTHS", "6")
	defer func() {
		os.Unsetenv("ANALYTICS_VETERAN_INACTIVE_MONTHS")
		os.Unsetenv("ANALYTICS_CIVILIAN_INACTIVE_MONTHS")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 4, cfg.Analytics.VeteranInactiveMonths)
	assert.Equal(t, 6, cfg.Analytics.CivilianInactiveMonths)
	assert.Equal(t, 12, cfg.Analytics.NeverOrderedMonths)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("ANALYTICS_VETERAN_INACTIVE_MONTHS")
	os.Unsetenv("ANALYTICS_CIVILIAN_INACTIVE_MONTHS")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 2, cfg.Analytics.VeteranInactiveMonths)
	assert.Equal(t, 3, cfg.Analytics.CivilianInactiveMonths)
	assert.Equal(t, "patient_admin", cfg.Database.Database)
	assert.Equal(t, 10*time.Second, cfg.Database.CallTimeout)
}

func TestLoad_RejectsZeroThreshold(t *testing.T) {
	os.Setenv("ANALYTICS_VETERAN_INACTIVE_MONTHS", "0")
	defer os.Unsetenv("ANALYTICS_VETERAN_INACTIVE_MONTHS")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "admin",
		Password: "secret",
		Database: "patients",
		SSLMode:  "require",
	}

	assert.Equal(t, "host=db port=5433 user=admin password=secret dbname=patients sslmode=require", cfg.DatabaseDSN())
}
