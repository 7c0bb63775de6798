package delivery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errors
var (
	// ErrNetwork: the endpoint stayed unreachable through the whole retry budget.
	ErrNetwork = errors.New("delivery endpoint unreachable")
	// ErrAuth: the endpoint rejected the API key. Retrying cannot change an
	// invalid credential, so no retry budget is consumed.
	ErrAuth = errors.New("delivery endpoint rejected api key")
)

// Payload is the JSON document POSTed to the spreadsheet endpoint, built once
// per run from all resolved values with status Ok.
type Payload struct {
	APIKey           string        `json:"api_key"`
	RunID            string        `json:"run_id,omitempty"`
	ValueUpdates     []ValueUpdate `json:"value_updates"`
	TimestampUpdates []CellUpdate  `json:"timestamp_updates"`
}

// ValueUpdate writes one resolved balance to one cell. The value is a decimal
// string so the endpoint receives the exact accounting figure.
type ValueUpdate struct {
	SpreadsheetID string          `json:"spreadsheet_id"`
	SheetName     string          `json:"sheet_name"`
	CellAddress   string          `json:"cell_address"`
	Value         decimal.Decimal `json:"value"`
	AccountName   string          `json:"account_name,omitempty"`
}

// CellUpdate writes one literal string to one cell (run timestamps).
type CellUpdate struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetName     string `json:"sheet_name"`
	CellAddress   string `json:"cell_address"`
	Value         string `json:"value"`
}

// Size returns the total number of updates in the payload.
func (p *Payload) Size() int {
	return len(p.ValueUpdates) + len(p.TimestampUpdates)
}

// endpointResponse is the per-update acceptance body returned by the endpoint.
type endpointResponse struct {
	Status   string           `json:"status"` // "ok" or "partial"
	Updated  int              `json:"updated"`
	Rejected []RejectedUpdate `json:"rejected,omitempty"`
}

// RejectedUpdate identifies one update the endpoint refused to apply.
type RejectedUpdate struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetName     string `json:"sheet_name"`
	CellAddress   string `json:"cell_address"`
	Reason        string `json:"reason"`
}

// PartialDeliveryError reports that the endpoint accepted the payload but
// rejected some updates (unknown sheet or spreadsheet, malformed cell).
// The rejected entries are not retried automatically.
type PartialDeliveryError struct {
	Accepted int
	Rejected []RejectedUpdate
}

func (e *PartialDeliveryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "partial delivery: %d accepted, %d rejected", e.Accepted, len(e.Rejected))
	for _, r := range e.Rejected {
		fmt.Fprintf(&b, "; %s!%s (%s)", r.SheetName, r.CellAddress, r.Reason)
	}
	return b.String()
}

// HTTPError is a non-2xx endpoint response that is neither an auth rejection
// nor a partial acceptance.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("delivery endpoint error %d", e.StatusCode)
}

// retryable reports whether the status suggests a transient server problem.
func (e *HTTPError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
