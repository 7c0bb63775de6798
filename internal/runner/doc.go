// Package runner sequences one sync run: acquire the QuickBooks session,
// plan and execute the batched query, release the session, deliver the
// resolved values, and report the outcome as an enumerated exit code.
//
// The session is always released before delivery is attempted, so a slow or
// failing delivery never holds the QuickBooks connection open.
package runner
