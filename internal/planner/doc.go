// Package planner turns the configured targets into one batched qbXML
// exchange and correlates the response back to targets.
//
// The whole run is one batch: every sync target becomes one query element in
// a single request document, so the run costs exactly one request/response
// round trip over the COM interface (two if the batch is retried once after a
// protocol-level failure). Timestamp targets never hit the wire; their values
// are synthesized from the run's capture instant.
package planner
