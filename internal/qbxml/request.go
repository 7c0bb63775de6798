package qbxml

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ledgerbridge/qbsync/internal/model"
)

// BuildAccountQuery builds one qbXML request document containing an
// AccountQueryRq element per target. The requestID attribute of each element
// is the target's index in the configured list; responses are correlated back
// through it. Batching all targets into one document keeps the run to a
// single request/response round trip over the COM interface.
func BuildAccountQuery(targets []model.SyncTarget) (string, error) {
	if len(targets) == 0 {
		return "", fmt.Errorf("build account query: no targets")
	}

	doc := requestDoc{
		Msgs: requestMsgsSet{
			OnError: "continueOnError",
			Queries: make([]accountQueryRq, 0, len(targets)),
		},
	}
	for i, t := range targets {
		doc.Msgs.Queries = append(doc.Msgs.Queries, accountQueryRq{
			RequestID: i,
			FullName:  t.AccountFullName,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<?qbxml version=%q?>\n", SpecVersion)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode account query: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode account query: %w", err)
	}

	return buf.String(), nil
}
