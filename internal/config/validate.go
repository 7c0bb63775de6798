package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/ledgerbridge/qbsync/internal/model"
)

// cellAddressRe matches A1-notation cell addresses: column letters then a
// 1-based row number.
var cellAddressRe = regexp.MustCompile(`^[A-Za-z]{1,3}[1-9][0-9]*$`)

// Validate checks that all required fields are set and values are valid.
func (c *SyncConfig) Validate() error {
	if c.QuickBooks.CallTimeout < 0 {
		return errors.New("quickbooks.call_timeout must be >= 0")
	}

	if c.Delivery.URL == "" {
		return errors.New("delivery.url is required")
	}
	u, err := url.Parse(c.Delivery.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("delivery.url %q is not a valid URL", c.Delivery.URL)
	}
	if c.Delivery.APIKey == "" {
		return errors.New("delivery.api_key is required")
	}
	if c.Delivery.MaxRetries != nil && *c.Delivery.MaxRetries < 0 {
		return errors.New("delivery.max_retries must be >= 0")
	}
	if c.Delivery.Timeout <= 0 {
		return errors.New("delivery.timeout must be > 0")
	}
	if c.Delivery.RetryBackoff <= 0 {
		return errors.New("delivery.retry_backoff must be > 0")
	}

	if len(c.SyncTargets) == 0 {
		return errors.New("at least one sync_targets entry is required")
	}
	for i, t := range c.SyncTargets {
		if t.AccountFullName == "" {
			return fmt.Errorf("sync_targets[%d].account_full_name is required", i)
		}
		if err := validateCell(fmt.Sprintf("sync_targets[%d]", i), t.SpreadsheetID, t.SheetName, t.CellAddress); err != nil {
			return err
		}
	}
	for i, t := range c.TimestampTargets {
		if err := validateCell(fmt.Sprintf("timestamp_targets[%d]", i), t.SpreadsheetID, t.SheetName, t.CellAddress); err != nil {
			return err
		}
	}

	return nil
}

func validateCell(prefix, spreadsheetID, sheetName, cellAddress string) error {
	if spreadsheetID == "" {
		return fmt.Errorf("%s.spreadsheet_id is required", prefix)
	}
	if sheetName == "" {
		return fmt.Errorf("%s.sheet_name is required", prefix)
	}
	if !cellAddressRe.MatchString(cellAddress) {
		return fmt.Errorf("%s.cell_address %q is not in A1 notation", prefix, cellAddress)
	}
	return nil
}

// ModelSyncTargets converts the configured sync targets to domain types.
func (c *SyncConfig) ModelSyncTargets() []model.SyncTarget {
	targets := make([]model.SyncTarget, 0, len(c.SyncTargets))
	for _, t := range c.SyncTargets {
		targets = append(targets, model.SyncTarget{
			AccountFullName: t.AccountFullName,
			SpreadsheetID:   t.SpreadsheetID,
			SheetName:       t.SheetName,
			CellAddress:     t.CellAddress,
		})
	}
	return targets
}

// ModelTimestampTargets converts the configured timestamp targets to domain types.
func (c *SyncConfig) ModelTimestampTargets() []model.TimestampTarget {
	targets := make([]model.TimestampTarget, 0, len(c.TimestampTargets))
	for _, t := range c.TimestampTargets {
		targets = append(targets, model.TimestampTarget{
			SpreadsheetID: t.SpreadsheetID,
			SheetName:     t.SheetName,
			CellAddress:   t.CellAddress,
		})
	}
	return targets
}
