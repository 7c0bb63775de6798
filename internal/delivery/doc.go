// Package delivery serializes resolved values into the payload for the
// spreadsheet web endpoint and performs the authenticated POST.
//
// One payload per run, all-or-nothing: there is no per-target delivery.
// Network-level failures are retried with exponential backoff up to a bound;
// an authentication rejection is fatal immediately; a response listing
// rejected updates surfaces as a PartialDeliveryError and is not retried.
package delivery
