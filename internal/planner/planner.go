package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerbridge/qbsync/internal/model"
	"github.com/ledgerbridge/qbsync/internal/qbxml"
	"github.com/ledgerbridge/qbsync/internal/session"
)

// Session is the slice of the Session Manager the planner needs.
type Session interface {
	Send(request string) (string, error)
	RefreshSession() error
}

// Config holds Query Planner settings.
type Config struct {
	SyncTargets      []model.SyncTarget
	TimestampTargets []model.TimestampTarget
	TimestampLayout  string // time.Format layout for synthesized timestamps
}

// DefaultTimestampLayout renders "24-08-2026:14:30".
const DefaultTimestampLayout = "02-01-2006:15:04"

// Result is the outcome of one planner run.
type Result struct {
	Values     []model.ResolvedValue     // One per sync target, in target order
	Timestamps []model.ResolvedTimestamp // One per timestamp target
	CapturedAt time.Time                 // Run capture instant
}

// Planner executes the configured queries against an open session.
type Planner struct {
	cfg    Config
	sess   Session
	logger *slog.Logger
}

// New creates a Query Planner.
func New(cfg Config, sess Session, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TimestampLayout == "" {
		cfg.TimestampLayout = DefaultTimestampLayout
	}
	return &Planner{cfg: cfg, sess: sess, logger: logger}
}

// Run executes the batch and synthesizes timestamp values. On a
// protocol-level failure the session is refreshed and the batch retried
// exactly once; external-call and timeout failures are run-fatal and never
// retried here.
func (p *Planner) Run() (*Result, error) {
	capturedAt := time.Now()

	values, err := p.runBatch()
	if err != nil {
		if !errors.Is(err, qbxml.ErrProtocol) {
			return nil, err
		}

		// Transient session-state issues can surface as protocol errors.
		p.logger.Warn("batch failed with protocol error, refreshing session and retrying once", "error", err)
		if refreshErr := p.sess.RefreshSession(); refreshErr != nil {
			return nil, fmt.Errorf("refresh session after protocol error: %w", refreshErr)
		}
		values, err = p.runBatch()
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Values:     values,
		CapturedAt: capturedAt,
	}
	formatted := capturedAt.Format(p.cfg.TimestampLayout)
	for _, t := range p.cfg.TimestampTargets {
		result.Timestamps = append(result.Timestamps, model.ResolvedTimestamp{
			Target:    t,
			Formatted: formatted,
		})
	}

	return result, nil
}

func (p *Planner) runBatch() ([]model.ResolvedValue, error) {
	if len(p.cfg.SyncTargets) == 0 {
		return nil, nil
	}

	request, err := qbxml.BuildAccountQuery(p.cfg.SyncTargets)
	if err != nil {
		return nil, err
	}

	response, err := p.sess.Send(request)
	if err != nil {
		return nil, err
	}

	values, err := qbxml.ParseAccountQueryResponse(response, p.cfg.SyncTargets)
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		switch v.Status {
		case model.StatusOk:
			p.logger.Debug("account resolved",
				"account", v.Target.AccountFullName,
				"balance", v.Balance,
			)
		default:
			p.logger.Warn("account not resolved",
				"account", v.Target.AccountFullName,
				"status", v.Status,
				"detail", v.Detail,
			)
		}
	}

	return values, nil
}

var _ Session = (*session.Manager)(nil)
