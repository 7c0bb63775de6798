package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
quickbooks:
  company_file: "C:\\Data\\company.qbw"
  call_timeout: 45s
delivery:
  url: https://sheets.example.com/exec
  api_key: test-key
sync_targets:
  - account_full_name: "Assets:Checking"
    spreadsheet_id: sheet-1
    sheet_name: Balances
    cell_address: B2
timestamp_targets:
  - spreadsheet_id: sheet-1
    sheet_name: Balances
    cell_address: A1
`

func TestLoad(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.QuickBooks.CompanyFile != `C:\Data\company.qbw` {
		t.Errorf("QuickBooks.CompanyFile = %q, want %q", cfg.QuickBooks.CompanyFile, `C:\Data\company.qbw`)
	}
	if cfg.QuickBooks.CallTimeout != 45*time.Second {
		t.Errorf("QuickBooks.CallTimeout = %v, want 45s", cfg.QuickBooks.CallTimeout)
	}
	if cfg.Delivery.URL != "https://sheets.example.com/exec" {
		t.Errorf("Delivery.URL = %q, want %q", cfg.Delivery.URL, "https://sheets.example.com/exec")
	}
	if len(cfg.SyncTargets) != 1 || cfg.SyncTargets[0].AccountFullName != "Assets:Checking" {
		t.Errorf("SyncTargets = %+v, want one Assets:Checking entry", cfg.SyncTargets)
	}
	if len(cfg.TimestampTargets) != 1 || cfg.TimestampTargets[0].CellAddress != "A1" {
		t.Errorf("TimestampTargets = %+v, want one A1 entry", cfg.TimestampTargets)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SHEETS_KEY", "secret123")

	yaml := `
delivery:
  url: https://sheets.example.com/exec
  api_key: ${TEST_SHEETS_KEY}
sync_targets:
  - account_full_name: "Assets:Checking"
    spreadsheet_id: sheet-1
    sheet_name: Balances
    cell_address: B2
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Delivery.APIKey != "secret123" {
		t.Errorf("Delivery.APIKey = %q, want %q", cfg.Delivery.APIKey, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
delivery:
  url: https://sheets.example.com/exec
  api_key: test-key
sync_targets:
  - account_full_name: "Assets:Checking"
    spreadsheet_id: sheet-1
    sheet_name: Balances
    cell_address: B2
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.QuickBooks.ApplicationName != DefaultApplicationName {
		t.Errorf("QuickBooks.ApplicationName = %q, want default %q", cfg.QuickBooks.ApplicationName, DefaultApplicationName)
	}
	if cfg.QuickBooks.CompanyFile != DefaultCompanyFile {
		t.Errorf("QuickBooks.CompanyFile = %q, want default %q", cfg.QuickBooks.CompanyFile, DefaultCompanyFile)
	}
	if cfg.QuickBooks.CallTimeout != DefaultCallTimeout {
		t.Errorf("QuickBooks.CallTimeout = %v, want default %v", cfg.QuickBooks.CallTimeout, DefaultCallTimeout)
	}
	if cfg.Delivery.Timeout != DefaultDeliveryTimeout {
		t.Errorf("Delivery.Timeout = %v, want default %v", cfg.Delivery.Timeout, DefaultDeliveryTimeout)
	}
	if cfg.Delivery.Retries() != DefaultMaxRetries {
		t.Errorf("Delivery.Retries() = %d, want default %d", cfg.Delivery.Retries(), DefaultMaxRetries)
	}
	if cfg.TimestampFormat != DefaultTimestampFormat {
		t.Errorf("TimestampFormat = %q, want default %q", cfg.TimestampFormat, DefaultTimestampFormat)
	}
}

func TestLoadWithDefaultsZeroRetries(t *testing.T) {
	yaml := `
delivery:
  url: https://sheets.example.com/exec
  api_key: test-key
  max_retries: 0
sync_targets:
  - account_full_name: "Assets:Checking"
    spreadsheet_id: sheet-1
    sheet_name: Balances
    cell_address: B2
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// An explicit zero survives defaulting: single attempt, no retries.
	if cfg.Delivery.MaxRetries == nil || *cfg.Delivery.MaxRetries != 0 {
		t.Errorf("Delivery.MaxRetries = %v, want explicit 0", cfg.Delivery.MaxRetries)
	}
	if cfg.Delivery.Retries() != 0 {
		t.Errorf("Delivery.Retries() = %d, want 0", cfg.Delivery.Retries())
	}
}

func TestValidate(t *testing.T) {
	valid := func() SyncConfig {
		return SyncConfig{
			QuickBooks: QuickBooksConfig{
				ApplicationName: "Test Sync",
				CompanyFile:     "AUTO",
				CallTimeout:     time.Minute,
			},
			Delivery: DeliveryConfig{
				URL:          "https://sheets.example.com/exec",
				APIKey:       "key",
				Timeout:      30 * time.Second,
				MaxRetries:   intPtr(3),
				RetryBackoff: time.Second,
			},
			SyncTargets: []TargetConfig{
				{AccountFullName: "Assets:Checking", SpreadsheetID: "s", SheetName: "n", CellAddress: "B2"},
			},
			TimestampTargets: []TimestampConfig{
				{SpreadsheetID: "s", SheetName: "n", CellAddress: "AA10"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*SyncConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *SyncConfig) {},
			wantErr: "",
		},
		{
			name:    "missing delivery url",
			mutate:  func(c *SyncConfig) { c.Delivery.URL = "" },
			wantErr: "delivery.url is required",
		},
		{
			name:    "malformed delivery url",
			mutate:  func(c *SyncConfig) { c.Delivery.URL = "not a url" },
			wantErr: `delivery.url "not a url" is not a valid URL`,
		},
		{
			name:    "missing api key",
			mutate:  func(c *SyncConfig) { c.Delivery.APIKey = "" },
			wantErr: "delivery.api_key is required",
		},
		{
			name:    "no sync targets",
			mutate:  func(c *SyncConfig) { c.SyncTargets = nil },
			wantErr: "at least one sync_targets entry is required",
		},
		{
			name:    "empty account name",
			mutate:  func(c *SyncConfig) { c.SyncTargets[0].AccountFullName = "" },
			wantErr: "sync_targets[0].account_full_name is required",
		},
		{
			name:    "bad cell address",
			mutate:  func(c *SyncConfig) { c.SyncTargets[0].CellAddress = "2B" },
			wantErr: `sync_targets[0].cell_address "2B" is not in A1 notation`,
		},
		{
			name:    "zero row cell address",
			mutate:  func(c *SyncConfig) { c.TimestampTargets[0].CellAddress = "A0" },
			wantErr: `timestamp_targets[0].cell_address "A0" is not in A1 notation`,
		},
		{
			name:    "missing spreadsheet id",
			mutate:  func(c *SyncConfig) { c.TimestampTargets[0].SpreadsheetID = "" },
			wantErr: "timestamp_targets[0].spreadsheet_id is required",
		},
		{
			name:    "negative max retries",
			mutate:  func(c *SyncConfig) { c.Delivery.MaxRetries = intPtr(-1) },
			wantErr: "delivery.max_retries must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestModelTargets(t *testing.T) {
	path := writeTempFile(t, validYAML)
	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	syncs := cfg.ModelSyncTargets()
	if len(syncs) != 1 || syncs[0].AccountFullName != "Assets:Checking" || syncs[0].CellAddress != "B2" {
		t.Errorf("ModelSyncTargets() = %+v, want one Assets:Checking/B2 entry", syncs)
	}

	stamps := cfg.ModelTimestampTargets()
	if len(stamps) != 1 || stamps[0].CellAddress != "A1" {
		t.Errorf("ModelTimestampTargets() = %+v, want one A1 entry", stamps)
	}
}

func intPtr(v int) *int {
	return &v
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
