package session

import "fmt"

// RequestProcessor is the qbXML request-processor COM interface. The sync
// engine depends only on these five operations and their status codes; the
// Windows implementation drives the real COM object, tests use fakes.
type RequestProcessor interface {
	// OpenConnection acquires the interface for this host application.
	OpenConnection(appID, appName string) error

	// BeginSession opens a logical session against a company data file.
	// An empty companyFile means "use whatever file is open in QuickBooks".
	// Returns the ticket identifying the session.
	BeginSession(companyFile string, mode FileMode) (string, error)

	// ProcessRequest sends one qbXML request document and blocks until the
	// response document is available. Strictly one request at a time.
	ProcessRequest(ticket, request string) (string, error)

	// EndSession releases the logical session identified by ticket.
	EndSession(ticket string) error

	// CloseConnection releases the interface.
	CloseConnection() error
}

// FileMode is the file-open mode requested at BeginSession.
type FileMode int

// File-open modes defined by the request processor interface.
const (
	FileModeSingleUser FileMode = 1
	FileModeMultiUser  FileMode = 2
	FileModeDoNotCare  FileMode = 3
)

// Status codes reported by the request processor. The interface signals
// errors through HRESULT-style codes; these are the ones the engine
// distinguishes, everything else surfaces as a generic StatusError.
const (
	// StatusSecondInstance: the interface is already bound by another host
	// process (another copy of this program, or QuickBooks itself holding
	// the integration channel). Operator-level conflict, never retried.
	StatusSecondInstance uint32 = 0x80040402

	// StatusAuthPending: the operator has not yet approved this application
	// inside the QuickBooks UI. Approval is interactive and cannot be
	// driven from here.
	StatusAuthPending uint32 = 0x8004041A

	// StatusAuthDenied: the operator rejected the application.
	StatusAuthDenied uint32 = 0x8004041B

	// StatusNoCompanyFile: auto-detect was requested but no company data
	// file is open in QuickBooks.
	StatusNoCompanyFile uint32 = 0x80040416

	// StatusSessionInvalid: the session ticket is no longer valid, usually
	// because QuickBooks closed the session implicitly.
	StatusSessionInvalid uint32 = 0x80040408
)

// StatusError is a non-success return from the request processor, carrying
// the raw status code for taxonomy mapping.
type StatusError struct {
	Op      string // Interface operation that failed
	Code    uint32 // Raw HRESULT-style status code
	Message string // Text reported by the interface, if any
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status 0x%08X", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: status 0x%08X: %s", e.Op, e.Code, e.Message)
}
