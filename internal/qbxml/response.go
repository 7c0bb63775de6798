package qbxml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/qbsync/internal/model"
)

// ParseAccountQueryResponse parses a qbXML response document and resolves one
// value per configured target, matched by requestID. Targets absent from the
// response, or whose result element reports a non-success status, resolve to
// NotFound. A present element whose balance fails fixed-point decoding
// resolves to ParseError. A non-success top-level status fails the whole
// batch with ErrProtocol.
func ParseAccountQueryResponse(doc string, targets []model.SyncTarget) ([]model.ResolvedValue, error) {
	var resp responseDoc
	if err := xml.Unmarshal([]byte(doc), &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProtocol, err)
	}

	if resp.Msgs.StatusCode != nil && *resp.Msgs.StatusCode != 0 {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, &StatusError{
			Code:     *resp.Msgs.StatusCode,
			Severity: resp.Msgs.StatusSeverity,
			Message:  resp.Msgs.StatusMessage,
		})
	}

	// Index results by correlation id. Later duplicates win, matching the
	// request processor's own last-result behavior.
	byID := make(map[int]accountQueryRs, len(resp.Msgs.Results))
	for _, rs := range resp.Msgs.Results {
		byID[rs.RequestID] = rs
	}

	resolved := make([]model.ResolvedValue, 0, len(targets))
	for i, t := range targets {
		resolved = append(resolved, resolveTarget(i, t, byID))
	}
	return resolved, nil
}

func resolveTarget(idx int, target model.SyncTarget, byID map[int]accountQueryRs) model.ResolvedValue {
	rv := model.ResolvedValue{TargetIndex: idx, Target: target}

	rs, ok := byID[idx]
	if !ok {
		rv.Status = model.StatusNotFound
		rv.Detail = "no result element for this query"
		return rv
	}
	if rs.StatusCode != 0 {
		rv.Status = model.StatusNotFound
		rv.Detail = fmt.Sprintf("status %d: %s", rs.StatusCode, rs.StatusMessage)
		return rv
	}

	acct, ok := matchAccount(rs.Accounts, target.AccountFullName)
	if !ok {
		rv.Status = model.StatusNotFound
		rv.Detail = "account not present in result"
		return rv
	}

	rv.AccountName = acct.Name
	rv.AccountType = acct.AccountType

	bal := acct.Balance
	if bal == "" {
		bal = acct.TotalBalance
	}
	if bal == "" {
		rv.Status = model.StatusParseError
		rv.Detail = "result carries no balance field"
		return rv
	}

	d, err := decimal.NewFromString(bal)
	if err != nil {
		rv.Status = model.StatusParseError
		rv.Detail = fmt.Sprintf("balance %q: %v", bal, err)
		return rv
	}

	rv.Balance = d
	rv.Status = model.StatusOk
	return rv
}

// matchAccount picks the account whose FullName matches the target filter.
// The name filter is a starts-with match on the QuickBooks side, so a parent
// account query can return children too; an exact FullName match is preferred,
// falling back to the first returned account.
func matchAccount(accounts []accountRet, fullName string) (accountRet, bool) {
	if len(accounts) == 0 {
		return accountRet{}, false
	}
	for _, a := range accounts {
		if strings.EqualFold(a.FullName, fullName) {
			return a, true
		}
	}
	return accounts[0], true
}
