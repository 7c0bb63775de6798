package qbxml

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// SpecVersion is the qbXML schema version declared in every request.
// QuickBooks SDK v16 is the minimum supported by the service.
const SpecVersion = "16.0"

// ErrProtocol indicates the response document failed as a whole: it could not
// be parsed as qbXML, or its top-level status reported an error. The batch may
// be retried once after the session has been revalidated.
var ErrProtocol = errors.New("qbxml protocol error")

// StatusError carries a non-success qbXML status reported by QuickBooks.
type StatusError struct {
	Code     int
	Severity string
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qbxml status %d (%s): %s", e.Code, e.Severity, e.Message)
}

// -----------------------------------------------------------------------------
// Request documents
// -----------------------------------------------------------------------------

type requestDoc struct {
	XMLName xml.Name       `xml:"QBXML"`
	Msgs    requestMsgsSet `xml:"QBXMLMsgsRq"`
}

type requestMsgsSet struct {
	OnError string           `xml:"onError,attr"`
	Queries []accountQueryRq `xml:"AccountQueryRq"`
}

type accountQueryRq struct {
	RequestID int    `xml:"requestID,attr"`
	FullName  string `xml:"FullName"`
}

// -----------------------------------------------------------------------------
// Response documents
// -----------------------------------------------------------------------------

type responseDoc struct {
	XMLName xml.Name        `xml:"QBXML"`
	Msgs    responseMsgsSet `xml:"QBXMLMsgsRs"`
}

type responseMsgsSet struct {
	// Top-level status is absent in most SDK versions; when present and
	// non-zero the whole batch is rejected.
	StatusCode     *int             `xml:"statusCode,attr"`
	StatusSeverity string           `xml:"statusSeverity,attr"`
	StatusMessage  string           `xml:"statusMessage,attr"`
	Results        []accountQueryRs `xml:"AccountQueryRs"`
}

type accountQueryRs struct {
	RequestID      int          `xml:"requestID,attr"`
	StatusCode     int          `xml:"statusCode,attr"`
	StatusSeverity string       `xml:"statusSeverity,attr"`
	StatusMessage  string       `xml:"statusMessage,attr"`
	Accounts       []accountRet `xml:"AccountRet"`
}

type accountRet struct {
	Name         string `xml:"Name"`
	FullName     string `xml:"FullName"`
	AccountType  string `xml:"AccountType"`
	Balance      string `xml:"Balance"`
	TotalBalance string `xml:"TotalBalance"`
}
