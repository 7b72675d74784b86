package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// Default field schemas mirror the attribute sets the record forms render.
// Deployments override them with EMPLOYEE_FIELDS / MACHINE_FIELDS.
const (
	defaultEmployeeFields = `[
		{"key":"department","label":"Department","kind":"text"},
		{"key":"email","label":"E-Mail","kind":"text"},
		{"key":"badge","label":"Badge","kind":"text"},
		{"key":"officeKey","label":"Office Key","kind":"text"},
		{"key":"mac","label":"MAC","kind":"mac"},
		{"key":"note","label":"Note","kind":"text"}
	]`
	defaultMachineFields = `[
		{"key":"line","label":"Line","kind":"text"},
		{"key":"device","label":"Device","kind":"text"},
		{"key":"mac","label":"MAC","kind":"mac"},
		{"key":"username","label":"Username","kind":"text"},
		{"key":"password","label":"Password","kind":"text"},
		{"key":"note","label":"Note","kind":"text"}
	]`
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Network    NetworkConfig
	Schema     SchemaConfig
	CableStock CableStockConfig
	Notify     NotifyConfig
	Sheets     SheetsConfig
	Jobs       JobsConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Gateway describes one managed subnet: the gateway address supplies the
// three base octets, Range the usable host count (capped at 254).
type Gateway struct {
	IP    string `json:"ip"`
	Range int    `json:"range"`
}

// NetworkConfig holds the gateway list driving subnet enumeration.
type NetworkConfig struct {
	Gateways []Gateway
}

// SchemaConfig carries the dynamic field schemas per unit variant.
type SchemaConfig struct {
	Employee []models.FieldSpec
	Machine  []models.FieldSpec
}

// CableStockConfig holds the expected spreadsheet header tokens. The source
// sheets use Korean headers, so the tokens are configuration, not code.
type CableStockConfig struct {
	CategoryHeader string
	TypeHeader     string
	LinNoHeader    string
	QuantityHeader string
}

// NotifyConfig configures the optional outbound webhook.
type NotifyConfig struct {
	WebhookURL string
}

// SheetsConfig configures the optional Google Sheets snapshot mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// JobsConfig holds scheduler settings.
type JobsConfig struct {
	StaleSweepSchedule     string
	UploadReminderSchedule string
	StaleAfterDays         int
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "netstock"),
		},
		CableStock: CableStockConfig{
			CategoryHeader: getenvWithDefault("CABLESTOCK_CATEGORY_HEADER", "구분"),
			TypeHeader:     getenvWithDefault("CABLESTOCK_TYPE_HEADER", "종류"),
			LinNoHeader:    getenvWithDefault("CABLESTOCK_LINNO_HEADER", "LINNO"),
			QuantityHeader: getenvWithDefault("CABLESTOCK_QUANTITY_HEADER", "수량"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_MIRROR_ID"),
		},
		Jobs: JobsConfig{
			StaleSweepSchedule:     getenvWithDefault("STALE_SWEEP_SCHEDULE", "0 8 * * 1"),
			UploadReminderSchedule: getenvWithDefault("UPLOAD_REMINDER_SCHEDULE", "0 9 25 * *"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := json.Unmarshal([]byte(getenvWithDefault("GATEWAYS", "[]")), &cfg.Network.Gateways); err != nil {
		return nil, fmt.Errorf("failed parsing GATEWAYS: %w", err)
	}
	if err := json.Unmarshal([]byte(getenvWithDefault("EMPLOYEE_FIELDS", defaultEmployeeFields)), &cfg.Schema.Employee); err != nil {
		return nil, fmt.Errorf("failed parsing EMPLOYEE_FIELDS: %w", err)
	}
	if err := json.Unmarshal([]byte(getenvWithDefault("MACHINE_FIELDS", defaultMachineFields)), &cfg.Schema.Machine); err != nil {
		return nil, fmt.Errorf("failed parsing MACHINE_FIELDS: %w", err)
	}

	staleDays, err := strconv.Atoi(getenvWithDefault("STALE_AFTER_DAYS", "90"))
	if err != nil {
		return nil, fmt.Errorf("failed parsing STALE_AFTER_DAYS: %w", err)
	}
	cfg.Jobs.StaleAfterDays = staleDays

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	for _, gw := range c.Network.Gateways {
		if _, err := models.ParseIPv4(gw.IP); err != nil {
			return fmt.Errorf("GATEWAYS entry %q is not a valid address", gw.IP)
		}
		if gw.Range < 1 {
			return fmt.Errorf("GATEWAYS entry %q must have a positive range", gw.IP)
		}
	}

	for _, spec := range append(append([]models.FieldSpec{}, c.Schema.Employee...), c.Schema.Machine...) {
		if spec.Key == "" {
			return errors.New("field schema entries must have a key")
		}
	}

	switch {
	case c.CableStock.CategoryHeader == "":
		return errors.New("CABLESTOCK_CATEGORY_HEADER must not be empty")
	case c.CableStock.TypeHeader == "":
		return errors.New("CABLESTOCK_TYPE_HEADER must not be empty")
	case c.CableStock.LinNoHeader == "":
		return errors.New("CABLESTOCK_LINNO_HEADER must not be empty")
	case c.CableStock.QuantityHeader == "":
		return errors.New("CABLESTOCK_QUANTITY_HEADER must not be empty")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when the sheet mirror is enabled")
	}

	if c.Jobs.StaleAfterDays < 1 {
		return errors.New("STALE_AFTER_DAYS must be positive")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
