//go:build !windows

package session

import "errors"

// NewCOMProcessor is only available on Windows, where QuickBooks Desktop and
// its COM interface live. Non-Windows builds exist for development and tests,
// which supply fake processors.
func NewCOMProcessor() (RequestProcessor, error) {
	return nil, errors.New("quickbooks COM interface is only available on windows")
}
