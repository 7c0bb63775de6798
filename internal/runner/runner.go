package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ledgerbridge/qbsync/internal/config"
	"github.com/ledgerbridge/qbsync/internal/delivery"
	"github.com/ledgerbridge/qbsync/internal/model"
	"github.com/ledgerbridge/qbsync/internal/planner"
	"github.com/ledgerbridge/qbsync/internal/qbxml"
	"github.com/ledgerbridge/qbsync/internal/session"
)

// Process exit codes. Enumerated, not free-form: the external scheduler keys
// its alerting off these.
const (
	ExitOK              = 0
	ExitConfig          = 1
	ExitSession         = 2
	ExitQuery           = 3
	ExitDelivery        = 4
	ExitPartialDelivery = 5
)

// Summary is the outcome of one run.
type Summary struct {
	RunID     string
	Resolved  int      // Sync targets resolved Ok
	Warnings  []string // Per-target NotFound/ParseError notes, never fatal
	Delivered int      // Updates sent to the endpoint
}

// Runner executes the linear per-invocation pipeline.
type Runner struct {
	cfg    *config.SyncConfig
	proc   session.RequestProcessor
	logger *slog.Logger
}

// New creates a Runner. The request processor is injected so tests can run
// the full pipeline against a fake QuickBooks.
func New(cfg *config.SyncConfig, proc session.RequestProcessor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, proc: proc, logger: logger}
}

// Run performs one complete sync run. The returned Summary is valid even
// when err is non-nil; map err to a process exit code with ExitCode.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	summary := &Summary{RunID: runID}

	logger.Info("starting sync run",
		"sync_targets", len(r.cfg.SyncTargets),
		"timestamp_targets", len(r.cfg.TimestampTargets),
	)

	result, err := r.query(logger)
	if err != nil {
		return summary, err
	}

	for _, v := range result.Values {
		if v.Status == model.StatusOk {
			summary.Resolved++
			continue
		}
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("%s: %s (%s)", v.Target.AccountFullName, v.Status, v.Detail))
	}

	client := delivery.NewClient(
		r.cfg.Delivery.URL,
		r.cfg.Delivery.APIKey,
		delivery.WithLogger(logger),
		delivery.WithTimeout(r.cfg.Delivery.Timeout),
		delivery.WithRetries(r.cfg.Delivery.Retries(), r.cfg.Delivery.RetryBackoff),
	)

	payload := client.BuildPayload(runID, result.Values, result.Timestamps)
	if payload.Size() == 0 {
		logger.Warn("nothing to deliver, skipping endpoint call",
			"warnings", len(summary.Warnings),
		)
		return summary, nil
	}

	if err := client.Send(ctx, payload); err != nil {
		var pde *delivery.PartialDeliveryError
		if errors.As(err, &pde) {
			summary.Delivered = pde.Accepted
		}
		return summary, fmt.Errorf("deliver payload: %w", err)
	}
	summary.Delivered = payload.Size()

	logger.Info("sync run complete",
		"resolved", summary.Resolved,
		"delivered", summary.Delivered,
		"warnings", len(summary.Warnings),
	)
	return summary, nil
}

// query owns the session phase: the manager is closed before this function
// returns, on every path, so the QuickBooks connection is never held across
// delivery.
func (r *Runner) query(logger *slog.Logger) (*planner.Result, error) {
	mgr := session.NewManager(session.Config{
		AppID:       r.cfg.QuickBooks.ApplicationID,
		AppName:     r.cfg.QuickBooks.ApplicationName,
		CompanyFile: r.cfg.QuickBooks.CompanyFile,
		CallTimeout: r.cfg.QuickBooks.CallTimeout,
	}, r.proc, logger)

	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("session release", "error", err)
		}
	}()

	if err := mgr.Open(); err != nil {
		return nil, err
	}
	if err := mgr.BeginSession(); err != nil {
		return nil, err
	}

	p := planner.New(planner.Config{
		SyncTargets:      r.cfg.ModelSyncTargets(),
		TimestampTargets: r.cfg.ModelTimestampTargets(),
		TimestampLayout:  r.cfg.TimestampFormat,
	}, mgr, logger)

	return p.Run()
}

// ExitCode maps a Run error to the enumerated process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case errors.Is(err, session.ErrAlreadyRunning),
		errors.Is(err, session.ErrAuthorizationPending),
		errors.Is(err, session.ErrNoCompanyFileOpen),
		errors.Is(err, session.ErrInvalidState):
		return ExitSession
	case errors.Is(err, session.ErrTimeout),
		errors.Is(err, qbxml.ErrProtocol):
		return ExitQuery
	case errors.Is(err, delivery.ErrAuth),
		errors.Is(err, delivery.ErrNetwork):
		return ExitDelivery
	}

	var partial *delivery.PartialDeliveryError
	if errors.As(err, &partial) {
		return ExitPartialDelivery
	}
	var httpErr *delivery.HTTPError
	if errors.As(err, &httpErr) {
		return ExitDelivery
	}
	var statusErr *session.StatusError
	if errors.As(err, &statusErr) {
		// A failed ProcessRequest is a query failure; any other interface
		// operation failing is a session failure.
		if statusErr.Op == "ProcessRequest" {
			return ExitQuery
		}
		return ExitSession
	}

	// Unclassified failures during the session phase (wrapped open/begin
	// errors without a sentinel) count as session failures.
	return ExitSession
}
