// Package session owns the lifecycle of the COM connection and the logical
// session to the QuickBooks Desktop request processor.
//
// The Manager is a state machine (Idle → Connecting → Connected → SessionOpen
// → SessionClosing → Closed, with Failed reachable from any state) wrapping a
// RequestProcessor, the five-operation COM interface. The external interface
// does not support concurrent calls from one host, and the whole run is
// single-threaded; the Manager is not safe for concurrent use.
//
// Connection and session handles are owned exclusively by the Manager and are
// never exposed. Close is idempotent and releases whatever is held on every
// exit path: leaking the connection leaves QuickBooks unusable for subsequent
// runs until it restarts.
package session
