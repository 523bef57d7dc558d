package hacienda

import (
	"encoding/xml"
	"errors"

	"github.com/invopop/validation"

	"github.com/avillegas/facturacr/bill"
	"github.com/avillegas/facturacr/clave"
)

// Document is the root of a factura or tiquete electrónico. Field
// order matches the schema's required element order exactly.
type Document struct {
	XMLName      xml.Name
	Namespace    string `xml:"xmlns,attr"`
	XSDNamespace string `xml:"xmlns:xsd,attr"`
	XSINamespace string `xml:"xmlns:xsi,attr"`

	Clave             string `xml:"Clave"`
	CodigoActividad   string `xml:"CodigoActividad,omitempty"`
	NumeroConsecutivo string `xml:"NumeroConsecutivo"`
	FechaEmision      string `xml:"FechaEmision"`

	Emisor   *Emisor   `xml:"Emisor"`
	Receptor *Receptor `xml:"Receptor,omitempty"`

	CondicionVenta string `xml:"CondicionVenta"`
	PlazoCredito   string `xml:"PlazoCredito,omitempty"`

	DetalleServicio *DetalleServicio `xml:"DetalleServicio"`
	OtrosCargos     []*OtroCargo     `xml:"OtrosCargos,omitempty"`
	ResumenFactura  *ResumenFactura  `xml:"ResumenFactura"`

	// Payment method blocks follow the summary.
	MedioPago []string `xml:"MedioPago"`

	InformacionReferencia []*InformacionReferencia `xml:"InformacionReferencia,omitempty"`
	Otros                 *Otros                   `xml:"Otros,omitempty"`
}

// InformacionReferencia links the document to a prior one.
type InformacionReferencia struct {
	TipoDoc      string `xml:"TipoDoc"`
	Numero       string `xml:"Numero"`
	FechaEmision string `xml:"FechaEmision"`
	Codigo       string `xml:"Codigo"`
	Razon        string `xml:"Razon"`
}

// Otros carries the free-text block.
type Otros struct {
	OtroTexto     []string         `xml:"OtroTexto,omitempty"`
	OtroContenido []*OtroContenido `xml:"OtroContenido,omitempty"`
}

// OtroContenido is a coded free-text entry.
type OtroContenido struct {
	Codigo string `xml:"codigo,attr,omitempty"`
	Value  string `xml:",chardata"`
}

// IsTiquete reports whether the document uses the simplified variant.
func (d *Document) IsTiquete() bool {
	return d.XMLName.Local == RootTiquete
}

// NewDocument renders a calculated invoice plus its derived key and
// consecutive number into the schema structure. The variant is chosen
// from the consecutive number's document type code. Missing required
// upstream fields abort with SerializationError; a partial document is
// never produced.
func NewDocument(inv *bill.Invoice, key, consecutive string) (*Document, error) {
	if err := checkComplete(inv, key, consecutive); err != nil {
		return nil, err
	}

	tiquete := clave.IsTiquete(consecutive)

	doc := &Document{
		XMLName:      xml.Name{Local: RootFactura},
		Namespace:    NamespaceFactura,
		XSDNamespace: NamespaceXSD,
		XSINamespace: NamespaceXSI,

		Clave:             key,
		CodigoActividad:   inv.Issuer.ActivityCode,
		NumeroConsecutivo: consecutive,
		FechaEmision:      formatDate(inv.Emission),

		Emisor: newEmisor(inv.Issuer),

		CondicionVenta: inv.SaleCondition,
		PlazoCredito:   inv.CreditTerm,
		MedioPago:      inv.PaymentMethods,
	}
	if tiquete {
		doc.XMLName = xml.Name{Local: RootTiquete}
		doc.Namespace = NamespaceTiquete
	}

	// The receiver's activity code only exists on the factura
	// variant.
	if inv.Receiver != nil {
		doc.Receptor = newReceptor(inv.Receiver, !tiquete)
	}

	doc.addLines(inv)
	doc.addCharges(inv)
	doc.addTotals(inv)
	doc.addReferences(inv)
	doc.addNotes(inv)

	return doc, nil
}

func checkComplete(inv *bill.Invoice, key, consecutive string) error {
	errs := validation.Errors{}
	if key == "" {
		errs["clave"] = errors.New("required")
	} else if len(key) != 50 {
		errs["clave"] = errors.New("must be exactly 50 digits")
	}
	if consecutive == "" {
		errs["consecutive"] = errors.New("required")
	} else if len(consecutive) != 20 {
		errs["consecutive"] = errors.New("must be exactly 20 digits")
	}
	if inv == nil {
		errs["invoice"] = errors.New("required")
	} else {
		if inv.Issuer == nil || inv.Issuer.Identification == nil || inv.Issuer.Identification.Number == "" {
			errs["issuer"] = errors.New("identification required")
		}
		if len(inv.Lines) == 0 {
			errs["lines"] = errors.New("at least one line required")
		}
		if inv.Totals == nil {
			errs["totals"] = errors.New("invoice has not been calculated")
		}
	}
	if len(errs) > 0 {
		return &SerializationError{Fields: errs}
	}
	return nil
}

func (d *Document) addReferences(inv *bill.Invoice) {
	for _, r := range inv.References {
		d.InformacionReferencia = append(d.InformacionReferencia, &InformacionReferencia{
			TipoDoc:      r.DocType,
			Numero:       r.Number,
			FechaEmision: formatDate(r.IssueDate),
			Codigo:       r.Code,
			Razon:        r.Reason,
		})
	}
}

func (d *Document) addNotes(inv *bill.Invoice) {
	if inv.Notes.IsEmpty() {
		return
	}
	otros := &Otros{OtroTexto: inv.Notes.AllTexts()}
	for _, e := range inv.Notes.CodedContents() {
		otros.OtroContenido = append(otros.OtroContenido, &OtroContenido{
			Codigo: e.Code,
			Value:  e.Text,
		})
	}
	d.Otros = otros
}
