package config

import "time"

// SyncConfig is the root configuration for one sync run.
type SyncConfig struct {
	QuickBooks       QuickBooksConfig  `yaml:"quickbooks"`
	Delivery         DeliveryConfig    `yaml:"delivery"`
	TimestampFormat  string            `yaml:"timestamp_format"`
	SyncTargets      []TargetConfig    `yaml:"sync_targets"`
	TimestampTargets []TimestampConfig `yaml:"timestamp_targets"`
}

// QuickBooksConfig holds QuickBooks session settings.
type QuickBooksConfig struct {
	ApplicationID   string        `yaml:"application_id"`   // Unused by the SDK, carried for completeness
	ApplicationName string        `yaml:"application_name"` // Shown in the QuickBooks authorization UI
	CompanyFile     string        `yaml:"company_file"`     // Path, or "AUTO" to use the open file
	CallTimeout     time.Duration `yaml:"call_timeout"`     // Ceiling for one COM request
}

// DeliveryConfig holds the spreadsheet endpoint settings.
type DeliveryConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries is a pointer so an explicit 0 ("never retry") is
	// distinguishable from an absent field, which takes the default.
	MaxRetries   *int          `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Retries returns the configured retry budget, or the default when the
// field was absent.
func (d *DeliveryConfig) Retries() int {
	if d.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *d.MaxRetries
}

// TargetConfig maps one account to one spreadsheet cell.
type TargetConfig struct {
	AccountFullName string `yaml:"account_full_name"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CellAddress     string `yaml:"cell_address"`
}

// TimestampConfig maps the run timestamp to one spreadsheet cell.
type TimestampConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
	CellAddress   string `yaml:"cell_address"`
}
