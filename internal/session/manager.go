package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Errors
var (
	ErrAlreadyRunning       = errors.New("another host already owns the QuickBooks interface")
	ErrAuthorizationPending = errors.New("application not yet authorized in the QuickBooks UI")
	ErrNoCompanyFileOpen    = errors.New("no company file open in QuickBooks")
	ErrTimeout              = errors.New("external call exceeded timeout")
	ErrInvalidState         = errors.New("operation invalid in current session state")
)

// AutoCompanyFile is the config sentinel asking the request processor to use
// whatever company file is currently open. The interface itself expects an
// empty path for this.
const AutoCompanyFile = "AUTO"

// State is the lifecycle state of the Manager.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateSessionOpen
	StateSessionClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSessionOpen:
		return "session_open"
	case StateSessionClosing:
		return "session_closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds Session Manager settings.
type Config struct {
	AppID       string        // Application ID (unused by the SDK, carried anyway)
	AppName     string        // Application name shown in the QuickBooks authorization UI
	CompanyFile string        // Company file path, or AutoCompanyFile
	CallTimeout time.Duration // Ceiling for one ProcessRequest call (0 = no ceiling)
}

// Manager drives the request processor through its lifecycle. Exactly one
// Manager, one connection and one session exist per process run.
type Manager struct {
	cfg    Config
	proc   RequestProcessor
	logger *slog.Logger

	state       State
	ticket      string
	connOpen    bool
	sessionOpen bool
}

// NewManager creates a Session Manager over the given request processor.
func NewManager(cfg Config, proc RequestProcessor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		proc:   proc,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Open acquires the connection to the request processor. A second-instance
// conflict maps to ErrAlreadyRunning and an unapproved application to
// ErrAuthorizationPending; both are fatal for the run.
func (m *Manager) Open() error {
	if m.state != StateIdle {
		return fmt.Errorf("%w: open from %s", ErrInvalidState, m.state)
	}
	m.state = StateConnecting

	if err := m.proc.OpenConnection(m.cfg.AppID, m.cfg.AppName); err != nil {
		m.state = StateFailed
		var se *StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case StatusSecondInstance:
				return fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
			case StatusAuthPending, StatusAuthDenied:
				return fmt.Errorf("%w: %v", ErrAuthorizationPending, err)
			}
		}
		return fmt.Errorf("open connection: %w", err)
	}

	m.connOpen = true
	m.state = StateConnected
	m.logger.Debug("connection opened", "app_name", m.cfg.AppName)
	return nil
}

// BeginSession opens the logical session against the configured company file.
// Valid only from Connected.
func (m *Manager) BeginSession() error {
	if m.state != StateConnected {
		return fmt.Errorf("%w: begin session from %s", ErrInvalidState, m.state)
	}
	return m.beginSession()
}

func (m *Manager) beginSession() error {
	companyFile := m.cfg.CompanyFile
	if companyFile == AutoCompanyFile {
		companyFile = ""
	}

	ticket, err := m.proc.BeginSession(companyFile, FileModeDoNotCare)
	if err != nil {
		m.state = StateFailed
		var se *StatusError
		if errors.As(err, &se) && se.Code == StatusNoCompanyFile {
			return fmt.Errorf("%w: %v", ErrNoCompanyFileOpen, err)
		}
		return fmt.Errorf("begin session: %w", err)
	}

	m.ticket = ticket
	m.sessionOpen = true
	m.state = StateSessionOpen
	m.logger.Debug("session opened", "company_file", m.cfg.CompanyFile)
	return nil
}

// Send issues one qbXML request and blocks for the response. Valid only from
// SessionOpen; the protocol is strictly request/response, one outstanding
// request at a time. A call exceeding the configured ceiling returns
// ErrTimeout and fails the run: the COM call itself cannot be interrupted, so
// the in-flight goroutine is abandoned rather than cancelled.
func (m *Manager) Send(request string) (string, error) {
	if m.state != StateSessionOpen {
		return "", fmt.Errorf("%w: send from %s", ErrInvalidState, m.state)
	}

	type callResult struct {
		response string
		err      error
	}
	done := make(chan callResult, 1)
	go func() {
		resp, err := m.proc.ProcessRequest(m.ticket, request)
		done <- callResult{resp, err}
	}()

	var timeout <-chan time.Time
	if m.cfg.CallTimeout > 0 {
		timer := time.NewTimer(m.cfg.CallTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		if r.err != nil {
			m.state = StateFailed
			return "", fmt.Errorf("process request: %w", r.err)
		}
		return r.response, nil
	case <-timeout:
		m.state = StateFailed
		return "", fmt.Errorf("%w: no response after %s", ErrTimeout, m.cfg.CallTimeout)
	}
}

// RefreshSession ends and re-begins the logical session. Used when
// QuickBooks implicitly invalidated the session between requests.
func (m *Manager) RefreshSession() error {
	if m.sessionOpen {
		if err := m.proc.EndSession(m.ticket); err != nil {
			m.logger.Warn("end session during refresh", "error", err)
		}
		m.sessionOpen = false
		m.ticket = ""
	}
	if !m.connOpen {
		return fmt.Errorf("%w: refresh session without connection", ErrInvalidState)
	}
	m.state = StateConnected
	return m.beginSession()
}

// Close releases the session and the connection, in that order, best effort.
// Idempotent and callable from any state, including Failed: the handles must
// be released on every exit path.
func (m *Manager) Close() error {
	if m.state == StateClosed {
		return nil
	}

	var errs []error
	if m.sessionOpen {
		m.state = StateSessionClosing
		if err := m.proc.EndSession(m.ticket); err != nil {
			errs = append(errs, fmt.Errorf("end session: %w", err))
		}
		m.sessionOpen = false
		m.ticket = ""
	}
	if m.connOpen {
		if err := m.proc.CloseConnection(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
		m.connOpen = false
	}

	m.state = StateClosed
	m.logger.Debug("session manager closed")
	return errors.Join(errs...)
}
