package hacienda

import (
	"strconv"

	"github.com/avillegas/facturacr/bill"
)

// DetalleServicio wraps the repeated line blocks.
type DetalleServicio struct {
	LineaDetalle []*LineaDetalle `xml:"LineaDetalle"`
}

// LineaDetalle is one document line. Internal element order is fixed
// by the schema.
type LineaDetalle struct {
	NumeroLinea     string           `xml:"NumeroLinea"`
	Codigo          string           `xml:"Codigo,omitempty"`
	CodigoComercial *CodigoComercial `xml:"CodigoComercial,omitempty"`
	Cantidad        string           `xml:"Cantidad"`
	UnidadMedida    string           `xml:"UnidadMedida"`
	Detalle         string           `xml:"Detalle"`
	PrecioUnitario  string           `xml:"PrecioUnitario"`
	MontoTotal      string           `xml:"MontoTotal"`
	Descuento       *Descuento       `xml:"Descuento,omitempty"`
	SubTotal        string           `xml:"SubTotal"`
	Impuesto        []*Impuesto      `xml:"Impuesto,omitempty"`
	ImpuestoNeto    string           `xml:"ImpuestoNeto"`
	MontoTotalLinea string           `xml:"MontoTotalLinea"`
}

// CodigoComercial is an internal product code.
type CodigoComercial struct {
	Tipo   string `xml:"Tipo"`
	Codigo string `xml:"Codigo"`
}

// Descuento is a line discount.
type Descuento struct {
	MontoDescuento      string `xml:"MontoDescuento"`
	NaturalezaDescuento string `xml:"NaturalezaDescuento,omitempty"`
}

// Impuesto is a tax block with its optional nested exoneration.
type Impuesto struct {
	Codigo       string       `xml:"Codigo"`
	CodigoTarifa string       `xml:"CodigoTarifa"`
	Tarifa       string       `xml:"Tarifa"`
	Monto        string       `xml:"Monto"`
	Exoneracion  *Exoneracion `xml:"Exoneracion,omitempty"`
}

// Exoneracion documents a tax exemption.
type Exoneracion struct {
	TipoDocumento         string `xml:"TipoDocumento"`
	NumeroDocumento       string `xml:"NumeroDocumento"`
	NombreInstitucion     string `xml:"NombreInstitucion"`
	FechaEmision          string `xml:"FechaEmision"`
	PorcentajeExoneracion string `xml:"PorcentajeExoneracion"`
	MontoExoneracion      string `xml:"MontoExoneracion"`
}

func (d *Document) addLines(inv *bill.Invoice) {
	detail := &DetalleServicio{}
	for _, l := range inv.Lines {
		line := &LineaDetalle{
			NumeroLinea:     strconv.Itoa(l.Number),
			Codigo:          l.Code,
			Cantidad:        formatLineAmount(*l.Quantity),
			UnidadMedida:    l.Unit,
			Detalle:         l.Detail,
			PrecioUnitario:  formatLineAmount(*l.UnitPrice),
			SubTotal:        formatLineAmount(l.Subtotal),
			ImpuestoNeto:    formatLineAmount(l.NetTax),
			MontoTotalLinea: formatLineAmount(l.Total),
		}

		// MontoTotal is the gross quantity times price, before the
		// discount.
		gross := l.Subtotal
		if l.Discount != nil {
			gross = gross.Add(l.Discount.Amount)
			line.Descuento = &Descuento{
				MontoDescuento:      formatLineAmount(l.Discount.Amount),
				NaturalezaDescuento: l.Discount.Reason,
			}
		}
		line.MontoTotal = formatLineAmount(gross)

		if l.CommercialCode != nil {
			line.CodigoComercial = &CodigoComercial{
				Tipo:   l.CommercialCode.Type,
				Codigo: l.CommercialCode.Code,
			}
		}

		for _, t := range []*bill.Tax{l.Tax, l.OtherTax} {
			if t == nil {
				continue
			}
			imp := &Impuesto{
				Codigo:       t.Code,
				CodigoTarifa: t.RateCode,
				Tarifa:       formatPercent(t.Rate),
				Monto:        formatLineAmount(t.Amount),
			}
			if ex := t.Exemption; ex != nil {
				imp.Exoneracion = &Exoneracion{
					TipoDocumento:         ex.DocType,
					NumeroDocumento:       ex.DocNumber,
					NombreInstitucion:     ex.Institution,
					FechaEmision:          formatDate(ex.IssueDate),
					PorcentajeExoneracion: formatPercent(ex.Percent),
					MontoExoneracion:      formatLineAmount(ex.Amount),
				}
			}
			line.Impuesto = append(line.Impuesto, imp)
		}

		detail.LineaDetalle = append(detail.LineaDetalle, line)
	}
	d.DetalleServicio = detail
}
