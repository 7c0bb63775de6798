package planner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerbridge/qbsync/internal/model"
	"github.com/ledgerbridge/qbsync/internal/session"
)

// fakeSession scripts Send responses per attempt.
type fakeSession struct {
	responses []string // One per Send call; reused last when exhausted
	sendErrs  []error  // Parallel to responses; nil = success

	sends     int
	refreshes int
	refresh   error
}

func (f *fakeSession) Send(request string) (string, error) {
	i := f.sends
	f.sends++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	if err := f.sendErrs[i]; err != nil {
		return "", err
	}
	return f.responses[i], nil
}

func (f *fakeSession) RefreshSession() error {
	f.refreshes++
	return f.refresh
}

func targets(names ...string) []model.SyncTarget {
	out := make([]model.SyncTarget, 0, len(names))
	for _, n := range names {
		out = append(out, model.SyncTarget{
			AccountFullName: n,
			SpreadsheetID:   "sheet-1",
			SheetName:       "Balances",
			CellAddress:     "B2",
		})
	}
	return out
}

const okResponse = `<QBXML><QBXMLMsgsRs>
<AccountQueryRs requestID="0" statusCode="0" statusSeverity="Info">
<AccountRet><Name>Checking</Name><FullName>Assets:Checking</FullName><Balance>500.00</Balance></AccountRet>
</AccountQueryRs>
</QBXMLMsgsRs></QBXML>`

// protocolFailure carries a top-level error status, failing the whole batch.
const protocolFailure = `<QBXML><QBXMLMsgsRs statusCode="3120" statusSeverity="Error" statusMessage="session no longer valid"/></QBXML>`

func TestPlannerRun(t *testing.T) {
	sess := &fakeSession{
		responses: []string{okResponse},
		sendErrs:  []error{nil},
	}
	p := New(Config{
		SyncTargets: targets("Assets:Checking"),
		TimestampTargets: []model.TimestampTarget{
			{SpreadsheetID: "sheet-1", SheetName: "Balances", CellAddress: "A1"},
		},
	}, sess, nil)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sess.sends != 1 {
		t.Errorf("sends = %d, want 1 (batched)", sess.sends)
	}
	if len(result.Values) != 1 {
		t.Fatalf("resolved %d values, want 1", len(result.Values))
	}
	if !result.Values[0].Balance.Equal(decimal.New(50000, -2)) {
		t.Errorf("Balance = %s, want 500.00", result.Values[0].Balance)
	}

	if len(result.Timestamps) != 1 {
		t.Fatalf("synthesized %d timestamps, want 1", len(result.Timestamps))
	}
	ts := result.Timestamps[0]
	if ts.Formatted != result.CapturedAt.Format(DefaultTimestampLayout) {
		t.Errorf("Formatted = %q, want capture instant in default layout", ts.Formatted)
	}
	if strings.Count(ts.Formatted, ":") != 2 || !strings.Contains(ts.Formatted, "-") {
		t.Errorf("Formatted = %q, not in dd-mm-yyyy:hh:mm form", ts.Formatted)
	}
}

func TestPlannerCustomTimestampLayout(t *testing.T) {
	sess := &fakeSession{responses: []string{okResponse}, sendErrs: []error{nil}}
	p := New(Config{
		SyncTargets:      targets("Assets:Checking"),
		TimestampTargets: []model.TimestampTarget{{SpreadsheetID: "s", SheetName: "n", CellAddress: "A1"}},
		TimestampLayout:  time.RFC3339,
	}, sess, nil)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, result.Timestamps[0].Formatted); err != nil {
		t.Errorf("Formatted = %q, not RFC3339: %v", result.Timestamps[0].Formatted, err)
	}
}

func TestPlannerProtocolRetry(t *testing.T) {
	t.Run("retries exactly once after refresh", func(t *testing.T) {
		sess := &fakeSession{
			responses: []string{protocolFailure, okResponse},
			sendErrs:  []error{nil, nil},
		}
		p := New(Config{SyncTargets: targets("Assets:Checking")}, sess, nil)

		result, err := p.Run()
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if sess.sends != 2 {
			t.Errorf("sends = %d, want 2", sess.sends)
		}
		if sess.refreshes != 1 {
			t.Errorf("refreshes = %d, want 1", sess.refreshes)
		}
		if result.Values[0].Status != model.StatusOk {
			t.Errorf("Status = %s, want ok", result.Values[0].Status)
		}
	})

	t.Run("second protocol failure is fatal", func(t *testing.T) {
		sess := &fakeSession{
			responses: []string{protocolFailure, protocolFailure},
			sendErrs:  []error{nil, nil},
		}
		p := New(Config{SyncTargets: targets("Assets:Checking")}, sess, nil)

		_, err := p.Run()
		if err == nil {
			t.Fatal("Run expected error, got nil")
		}
		if sess.sends != 2 {
			t.Errorf("sends = %d, want 2 (one retry only)", sess.sends)
		}
	})

	t.Run("refresh failure aborts the retry", func(t *testing.T) {
		sess := &fakeSession{
			responses: []string{protocolFailure},
			sendErrs:  []error{nil},
			refresh:   errors.New("begin session: connection gone"),
		}
		p := New(Config{SyncTargets: targets("Assets:Checking")}, sess, nil)

		_, err := p.Run()
		if err == nil {
			t.Fatal("Run expected error, got nil")
		}
		if sess.sends != 1 {
			t.Errorf("sends = %d, want 1", sess.sends)
		}
	})
}

func TestPlannerFatalSendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"external call error", &session.StatusError{Op: "ProcessRequest", Code: 0x80040301}},
		{"timeout", session.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{
				responses: []string{""},
				sendErrs:  []error{tt.err},
			}
			p := New(Config{SyncTargets: targets("Assets:Checking")}, sess, nil)

			_, err := p.Run()
			if err == nil {
				t.Fatal("Run expected error, got nil")
			}
			if sess.sends != 1 {
				t.Errorf("sends = %d, want 1 (never retried)", sess.sends)
			}
			if sess.refreshes != 0 {
				t.Errorf("refreshes = %d, want 0", sess.refreshes)
			}
		})
	}
}

func TestPlannerNoSyncTargets(t *testing.T) {
	// Timestamp-only configuration never touches the session.
	sess := &fakeSession{responses: []string{""}, sendErrs: []error{errors.New("should not be called")}}
	p := New(Config{
		TimestampTargets: []model.TimestampTarget{{SpreadsheetID: "s", SheetName: "n", CellAddress: "A1"}},
	}, sess, nil)

	result, err := p.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sess.sends != 0 {
		t.Errorf("sends = %d, want 0", sess.sends)
	}
	if len(result.Timestamps) != 1 {
		t.Errorf("synthesized %d timestamps, want 1", len(result.Timestamps))
	}
}
