// Package qbxml builds qbXML request documents and parses qbXML response
// documents for the QuickBooks Desktop request processor.
//
// The package is pure data transformation: no I/O, no session state. One
// request document carries one AccountQueryRq element per configured target,
// correlated by the requestID attribute; the matching response carries one
// AccountQueryRs element per query.
//
// Balances decode through shopspring/decimal so that accounting figures are
// never approximated by a float.
package qbxml
