// Package hacienda renders computed documents into the tax authority's
// XML format. Element order is fixed by the schema and expressed
// through struct field order; numeric fields use the schema's exact
// decimal widths (5 decimals for line amounts, 2 for summary amounts
// and percentages).
package hacienda

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/invopop/gobl/num"
	"github.com/invopop/validation"
	"github.com/invopop/xmlctx"
)

// Schema namespaces for the two supported document variants.
const (
	NamespaceFactura = "https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/facturaElectronica"
	NamespaceTiquete = "https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/tiqueteElectronico"
	NamespaceXSD     = "http://www.w3.org/2001/XMLSchema"
	NamespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// Root element names.
const (
	RootFactura = "FacturaElectronica"
	RootTiquete = "TiqueteElectronico"
)

// ErrUnknownDocumentType is returned when parsing a document whose
// root namespace is not recognized.
var ErrUnknownDocumentType = fmt.Errorf("unknown document type")

// SerializationError reports required upstream fields missing before
// emission. No partial document is ever produced.
type SerializationError struct {
	Fields validation.Errors
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("hacienda: document incomplete: %v", e.Fields)
}

// Unwrap exposes the field errors.
func (e *SerializationError) Unwrap() error { return e.Fields }

// Bytes returns the raw XML of the document including the XML header,
// UTF-8 encoded.
func Bytes(doc *Document) ([]byte, error) {
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// Parse reads a serialized document back into its typed form. The
// variant is selected from the root element's namespace.
func Parse(data []byte) (*Document, error) {
	ns, err := extractRootNamespace(data)
	if err != nil {
		return nil, err
	}

	switch ns {
	case NamespaceFactura, NamespaceTiquete:
		doc := new(Document)
		if err := xmlctx.Unmarshal(data, doc, xmlctx.WithNamespaces(map[string]string{
			"":    ns,
			"xsd": NamespaceXSD,
			"xsi": NamespaceXSI,
		})); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, ErrUnknownDocumentType
	}
}

func extractRootNamespace(data []byte) (string, error) {
	dc := xml.NewDecoder(bytes.NewReader(data))
	for {
		tk, err := dc.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error parsing XML: %w", err)
		}
		switch t := tk.(type) {
		case xml.StartElement:
			return t.Name.Space, nil
		}
	}
	return "", ErrUnknownDocumentType
}

// formatLineAmount renders a line level monetary value with the 5
// decimals the schema requires.
func formatLineAmount(a num.Amount) string {
	return a.Rescale(5).String()
}

// formatTotal renders a summary monetary value with 2 decimals.
func formatTotal(a num.Amount) string {
	return a.Rescale(2).String()
}

// formatPercent renders a whole percentage with 2 decimals.
func formatPercent(p int) string {
	return num.MakeAmount(int64(p), 0).Rescale(2).String()
}

// formatDate renders an emission timestamp in the schema's date-time
// form.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}
