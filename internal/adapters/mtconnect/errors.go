package mtconnect

import (
	"encoding/xml"
	"strings"
)

type errorDocument struct {
	XMLName xml.Name
	Errors  []xmlAgentError `xml:"Errors>Error"`
	Error   *xmlAgentError  `xml:"Error"`
}

type xmlAgentError struct {
	Code string `xml:"errorCode,attr"`
	Text string `xml:",chardata"`
}

// agentErrorDetail summarizes an MTConnectError body, e.g.
// "OUT_OF_RANGE: 'from' must be greater than 100". Bodies that are not
// error documents yield "".
func agentErrorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc errorDocument
	if err := xml.Unmarshal(body, &doc); err != nil || doc.XMLName.Local != "MTConnectError" {
		return ""
	}
	errs := doc.Errors
	if doc.Error != nil {
		errs = append(errs, *doc.Error)
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Code+": "+strings.TrimSpace(e.Text))
	}
	return strings.Join(parts, "; ")
}
