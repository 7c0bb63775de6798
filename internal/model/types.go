package model

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// Configured Targets
// -----------------------------------------------------------------------------

// SyncTarget maps one QuickBooks account to one spreadsheet cell.
// Targets are immutable once loaded; duplicates are allowed (last write wins
// on the spreadsheet side).
type SyncTarget struct {
	AccountFullName string // Hierarchical name, e.g. "Assets:Bank:Checking"
	SpreadsheetID   string // Destination spreadsheet
	SheetName       string // Destination sheet within the spreadsheet
	CellAddress     string // A1-notation cell, e.g. "B2"
}

// TimestampTarget maps the run's capture instant to one spreadsheet cell.
// It carries no account reference and never hits the QuickBooks wire.
type TimestampTarget struct {
	SpreadsheetID string
	SheetName     string
	CellAddress   string
}

// -----------------------------------------------------------------------------
// Resolved Values
// -----------------------------------------------------------------------------

// Status is the per-target outcome of a query.
type Status int

const (
	// StatusOk means the balance (or timestamp) was resolved and will be delivered.
	StatusOk Status = iota
	// StatusNotFound means the account was absent from the response, or its
	// result element reported a non-success status. Excluded from delivery.
	StatusNotFound
	// StatusParseError means the result element was present but its balance
	// field could not be decoded. Excluded from delivery.
	StatusParseError
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// ResolvedValue is the outcome for a single SyncTarget. Exactly one is
// produced per configured target per run, correlated by the target's index.
type ResolvedValue struct {
	TargetIndex int             // Index into the configured sync target list
	Target      SyncTarget      // The originating target
	AccountName string          // Short name reported by QuickBooks (informational)
	AccountType string          // Account type reported by QuickBooks (informational)
	Balance     decimal.Decimal // Valid only when Status == StatusOk
	Status      Status
	Detail      string // Human-readable status detail for the run summary
}

// ResolvedTimestamp is the synthesized outcome for a TimestampTarget.
// Always Ok: the value is the run's capture instant, not a query result.
type ResolvedTimestamp struct {
	Target    TimestampTarget
	Formatted string // Capture instant rendered with the configured layout
}
