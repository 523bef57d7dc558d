package hacienda

import "github.com/avillegas/facturacr/bill"

// CodigoTipoMoneda is the currency sub-block, always first in the
// summary.
type CodigoTipoMoneda struct {
	CodigoMoneda string `xml:"CodigoMoneda"`
	TipoCambio   string `xml:"TipoCambio"`
}

// ResumenFactura is the document summary block in the schema's fixed
// order.
type ResumenFactura struct {
	CodigoTipoMoneda *CodigoTipoMoneda `xml:"CodigoTipoMoneda"`

	TotalServGravados       string `xml:"TotalServGravados"`
	TotalServExentos        string `xml:"TotalServExentos"`
	TotalServExonerado      string `xml:"TotalServExonerado,omitempty"`
	TotalMercanciasGravadas string `xml:"TotalMercanciasGravadas"`
	TotalMercanciasExentas  string `xml:"TotalMercanciasExentas"`
	TotalMercExonerada      string `xml:"TotalMercExonerada,omitempty"`

	TotalGravado    string `xml:"TotalGravado"`
	TotalExento     string `xml:"TotalExento"`
	TotalExonerado  string `xml:"TotalExonerado,omitempty"`
	TotalVenta      string `xml:"TotalVenta"`
	TotalDescuentos string `xml:"TotalDescuentos"`
	TotalVentaNeta  string `xml:"TotalVentaNeta"`
	TotalImpuesto   string `xml:"TotalImpuesto"`

	TotalOtrosCargos string `xml:"TotalOtrosCargos,omitempty"`
	TotalComprobante string `xml:"TotalComprobante"`
}

// OtroCargo is one document level charge block.
type OtroCargo struct {
	TipoDocumento string `xml:"TipoDocumento"`
	Detalle       string `xml:"Detalle"`
	Porcentaje    string `xml:"Porcentaje,omitempty"`
	MontoCargo    string `xml:"MontoCargo"`
}

func (d *Document) addTotals(inv *bill.Invoice) {
	t := inv.Totals

	r := &ResumenFactura{
		CodigoTipoMoneda: &CodigoTipoMoneda{
			CodigoMoneda: t.Currency.String(),
			TipoCambio:   formatTotal(t.ExchangeRate),
		},

		TotalServGravados:       formatTotal(t.ServicesTaxed),
		TotalServExentos:        formatTotal(t.ServicesExempt),
		TotalMercanciasGravadas: formatTotal(t.GoodsTaxed),
		TotalMercanciasExentas:  formatTotal(t.GoodsExempt),

		TotalGravado:    formatTotal(t.Taxed),
		TotalExento:     formatTotal(t.Exempt),
		TotalVenta:      formatTotal(t.GrossSales),
		TotalDescuentos: formatTotal(t.Discounts),
		TotalVentaNeta:  formatTotal(t.NetSales),
		TotalImpuesto:   formatTotal(t.Tax),

		TotalComprobante: formatTotal(t.Grand),
	}

	if !t.ServicesExonerated.IsZero() {
		r.TotalServExonerado = formatTotal(t.ServicesExonerated)
	}
	if !t.GoodsExonerated.IsZero() {
		r.TotalMercExonerada = formatTotal(t.GoodsExonerated)
	}
	if !t.Exonerated.IsZero() {
		r.TotalExonerado = formatTotal(t.Exonerated)
	}
	if !t.OtherCharges.IsZero() {
		r.TotalOtrosCargos = formatTotal(t.OtherCharges)
	}

	d.ResumenFactura = r
}

func (d *Document) addCharges(inv *bill.Invoice) {
	for _, c := range inv.OtherCharges {
		oc := &OtroCargo{
			TipoDocumento: c.Type,
			Detalle:       c.Description,
			MontoCargo:    formatTotal(c.Amount),
		}
		if c.Percent != nil {
			oc.Porcentaje = formatTotal(*c.Percent)
		}
		d.OtrosCargos = append(d.OtrosCargos, oc)
	}
}
