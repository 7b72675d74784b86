package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "netstock", cfg.MongoDB.DBName)
	assert.Equal(t, "구분", cfg.CableStock.CategoryHeader)
	assert.Equal(t, "수량", cfg.CableStock.QuantityHeader)
	assert.Equal(t, 90, cfg.Jobs.StaleAfterDays)
	assert.Empty(t, cfg.Network.Gateways)

	// Default schemas render the standard record forms.
	assert.NotEmpty(t, cfg.Schema.Employee)
	assert.NotEmpty(t, cfg.Schema.Machine)
	for _, spec := range cfg.Schema.Employee {
		assert.NotEmpty(t, spec.Key)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("GATEWAYS", `[{"ip":"192.168.1.254","range":50}]`)
	t.Setenv("EMPLOYEE_FIELDS", `[{"key":"team","label":"Team","kind":"text"}]`)
	t.Setenv("STALE_AFTER_DAYS", "30")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	require.Len(t, cfg.Network.Gateways, 1)
	assert.Equal(t, Gateway{IP: "192.168.1.254", Range: 50}, cfg.Network.Gateways[0])
	require.Len(t, cfg.Schema.Employee, 1)
	assert.Equal(t, "team", cfg.Schema.Employee[0].Key)
	assert.Equal(t, 30, cfg.Jobs.StaleAfterDays)
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("GATEWAYS", "not-json")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			MongoDB: MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "netstock"},
			CableStock: CableStockConfig{
				CategoryHeader: "구분",
				TypeHeader:     "종류",
				LinNoHeader:    "LINNO",
				QuantityHeader: "수량",
			},
			Jobs: JobsConfig{StaleAfterDays: 90},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Network.Gateways = []Gateway{{IP: "not-an-ip", Range: 50}}
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Network.Gateways = []Gateway{{IP: "192.168.1.254", Range: 0}}
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Schema.Machine = []models.FieldSpec{{Label: "no key"}}
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.CableStock.LinNoHeader = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Sheets.SpreadsheetID = "sheet-id"
	assert.Error(t, cfg.Validate(), "mirror without credentials")
	cfg.Sheets.CredentialsPath = "/etc/netstock/credentials.json"
	assert.NoError(t, cfg.Validate())
}
