package hacienda_test

import (
	"strings"
	"testing"
	"time"

	"github.com/invopop/gobl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avillegas/facturacr/bill"
	"github.com/avillegas/facturacr/clave"
	"github.com/avillegas/facturacr/hacienda"
)

const (
	testConsecutive = "01010010000000000042"
	testTiqueteCons = "04010010000000000042"
)

func testKey(t *testing.T, consecutive string) string {
	t.Helper()
	emission := time.Date(2024, 3, 5, 10, 30, 0, 0, time.FixedZone("CST", -6*3600))
	key, err := clave.New(emission, clave.SituationNormal, "3101123456", consecutive, "12345678")
	require.NoError(t, err)
	return key
}

func testInvoice(t *testing.T) *bill.Invoice {
	t.Helper()
	qty := num.MakeAmount(2, 0)
	price := num.MakeAmount(100, 0)
	inv := &bill.Invoice{
		Emission: time.Date(2024, 3, 5, 10, 30, 0, 0, time.FixedZone("CST", -6*3600)),
		Issuer: &bill.Party{
			Name:         "Comercial La Uruca S.A.",
			ActivityCode: "722003",
			Identification: &bill.Identification{
				Type:   bill.IDTypeCedulaJuridica,
				Number: "3101123456",
			},
			Location: &bill.Location{Province: "1", Canton: "01", District: "01"},
			Phone:    &bill.Phone{Number: "22334455"},
			Email:    "facturas@lauruca.cr",
		},
		Receiver: &bill.Party{
			Name:         "Juan Pérez",
			ActivityCode: "851101",
			Identification: &bill.Identification{
				Type:   bill.IDTypeCedulaFisica,
				Number: "102340506",
			},
		},
		Lines: []*bill.Line{
			{
				Code:      "8399000000000",
				Detail:    "Servicio profesional",
				Quantity:  &qty,
				UnitPrice: &price,
				Tax:       &bill.Tax{Rate: 13},
			},
		},
	}
	inv.Normalize()
	require.NoError(t, inv.Calculate())
	return inv
}

func TestNewDocumentFactura(t *testing.T) {
	inv := testInvoice(t)
	key := testKey(t, testConsecutive)

	doc, err := hacienda.NewDocument(inv, key, testConsecutive)
	require.NoError(t, err)

	assert.False(t, doc.IsTiquete())
	assert.Equal(t, hacienda.RootFactura, doc.XMLName.Local)
	assert.Equal(t, hacienda.NamespaceFactura, doc.Namespace)
	assert.Equal(t, key, doc.Clave)
	assert.Equal(t, testConsecutive, doc.NumeroConsecutivo)
	assert.Equal(t, "722003", doc.CodigoActividad)
	assert.Equal(t, "2024-03-05T10:30:00-06:00", doc.FechaEmision)
	assert.Equal(t, "01", doc.CondicionVenta)
	assert.Equal(t, []string{"01"}, doc.MedioPago)

	require.NotNil(t, doc.Receptor)
	assert.Equal(t, "851101", doc.Receptor.ActividadEconomica)

	require.Len(t, doc.DetalleServicio.LineaDetalle, 1)
	l := doc.DetalleServicio.LineaDetalle[0]
	assert.Equal(t, "1", l.NumeroLinea)
	assert.Equal(t, "2.00000", l.Cantidad)
	assert.Equal(t, "Unid", l.UnidadMedida)
	assert.Equal(t, "100.00000", l.PrecioUnitario)
	assert.Equal(t, "200.00000", l.MontoTotal)
	assert.Equal(t, "200.00000", l.SubTotal)
	assert.Equal(t, "26.00000", l.ImpuestoNeto)
	assert.Equal(t, "226.00000", l.MontoTotalLinea)

	require.Len(t, l.Impuesto, 1)
	imp := l.Impuesto[0]
	assert.Equal(t, "01", imp.Codigo)
	assert.Equal(t, "08", imp.CodigoTarifa)
	assert.Equal(t, "13.00", imp.Tarifa)
	assert.Equal(t, "26.00000", imp.Monto)

	r := doc.ResumenFactura
	require.NotNil(t, r)
	assert.Equal(t, "CRC", r.CodigoTipoMoneda.CodigoMoneda)
	assert.Equal(t, "1.00", r.CodigoTipoMoneda.TipoCambio)
	assert.Equal(t, "200.00", r.TotalMercanciasGravadas)
	assert.Equal(t, "200.00", r.TotalGravado)
	assert.Equal(t, "200.00", r.TotalVenta)
	assert.Equal(t, "0.00", r.TotalDescuentos)
	assert.Equal(t, "200.00", r.TotalVentaNeta)
	assert.Equal(t, "26.00", r.TotalImpuesto)
	assert.Equal(t, "226.00", r.TotalComprobante)
	assert.Empty(t, r.TotalOtrosCargos)
	assert.Empty(t, r.TotalExonerado)
}

func TestNewDocumentTiquete(t *testing.T) {
	inv := testInvoice(t)
	inv.Receiver = nil
	inv.DocumentType = "04"
	key := testKey(t, testTiqueteCons)

	doc, err := hacienda.NewDocument(inv, key, testTiqueteCons)
	require.NoError(t, err)

	assert.True(t, doc.IsTiquete())
	assert.Equal(t, hacienda.RootTiquete, doc.XMLName.Local)
	assert.Equal(t, hacienda.NamespaceTiquete, doc.Namespace)
	assert.Nil(t, doc.Receptor)
}

func TestNewDocumentTiqueteReceiverActivityDropped(t *testing.T) {
	// A tiquete may still carry a receiver, but never the receiver's
	// activity code.
	inv := testInvoice(t)
	key := testKey(t, testTiqueteCons)

	doc, err := hacienda.NewDocument(inv, key, testTiqueteCons)
	require.NoError(t, err)

	require.NotNil(t, doc.Receptor)
	assert.Empty(t, doc.Receptor.ActividadEconomica)
	assert.Equal(t, "Juan Pérez", doc.Receptor.Nombre)
}

func TestNewDocumentReferences(t *testing.T) {
	inv := testInvoice(t)
	inv.References = []*bill.Reference{
		{
			DocType:   "01",
			Number:    strings.Repeat("5", 50),
			IssueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.FixedZone("CST", -6*3600)),
			Code:      bill.ReferenceCodeCancel,
			Reason:    "Anula factura por error de monto",
		},
	}
	key := testKey(t, testConsecutive)

	doc, err := hacienda.NewDocument(inv, key, testConsecutive)
	require.NoError(t, err)

	require.Len(t, doc.InformacionReferencia, 1)
	ref := doc.InformacionReferencia[0]
	assert.Equal(t, "01", ref.TipoDoc)
	assert.Equal(t, strings.Repeat("5", 50), ref.Numero)
	assert.Equal(t, "2024-02-01T00:00:00-06:00", ref.FechaEmision)
	assert.Equal(t, "01", ref.Codigo)
	assert.Equal(t, "Anula factura por error de monto", ref.Razon)
}

func TestNewDocumentIncomplete(t *testing.T) {
	inv := testInvoice(t)
	key := testKey(t, testConsecutive)

	t.Run("missing key", func(t *testing.T) {
		_, err := hacienda.NewDocument(inv, "", testConsecutive)
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "clave")
	})

	t.Run("short key", func(t *testing.T) {
		_, err := hacienda.NewDocument(inv, key[:49], testConsecutive)
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "clave")
	})

	t.Run("bad consecutive", func(t *testing.T) {
		_, err := hacienda.NewDocument(inv, key, "0101001")
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "consecutive")
	})

	t.Run("no lines", func(t *testing.T) {
		bad := testInvoice(t)
		bad.Lines = nil
		_, err := hacienda.NewDocument(bad, key, testConsecutive)
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "lines")
	})

	t.Run("not calculated", func(t *testing.T) {
		bad := testInvoice(t)
		bad.Totals = nil
		_, err := hacienda.NewDocument(bad, key, testConsecutive)
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "totals")
	})

	t.Run("missing issuer identification", func(t *testing.T) {
		bad := testInvoice(t)
		bad.Issuer.Identification = nil
		_, err := hacienda.NewDocument(bad, key, testConsecutive)
		var se *hacienda.SerializationError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Fields, "issuer")
	})
}

func TestBytesElementOrder(t *testing.T) {
	inv := testInvoice(t)
	inv.Lines[0].Discount = &bill.Discount{
		Amount: num.MakeAmount(10, 0),
		Reason: "promo",
	}
	require.NoError(t, inv.Calculate())
	key := testKey(t, testConsecutive)

	doc, err := hacienda.NewDocument(inv, key, testConsecutive)
	require.NoError(t, err)

	data, err := hacienda.Bytes(doc)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"))
	assert.Contains(t, out, `xmlns="`+hacienda.NamespaceFactura+`"`)

	order := []string{
		"<Clave>", "<CodigoActividad>", "<NumeroConsecutivo>", "<FechaEmision>",
		"<Emisor>", "<Receptor>", "<CondicionVenta>",
		"<DetalleServicio>", "<ResumenFactura>", "<MedioPago>",
	}
	last := -1
	for _, el := range order {
		idx := strings.Index(out, el)
		require.GreaterOrEqual(t, idx, 0, "missing %s", el)
		assert.Greater(t, idx, last, "%s out of order", el)
		last = idx
	}

	// Within a line the fixed order also holds.
	lineOrder := []string{
		"<NumeroLinea>", "<Codigo>", "<Cantidad>", "<UnidadMedida>",
		"<Detalle>", "<PrecioUnitario>", "<MontoTotal>", "<Descuento>",
		"<SubTotal>", "<Impuesto>", "<ImpuestoNeto>", "<MontoTotalLinea>",
	}
	last = -1
	for _, el := range lineOrder {
		idx := strings.Index(out, el)
		require.GreaterOrEqual(t, idx, 0, "missing %s", el)
		assert.Greater(t, idx, last, "%s out of order", el)
		last = idx
	}

	// Currency block opens the summary.
	assert.Less(t,
		strings.Index(out, "<CodigoTipoMoneda>"),
		strings.Index(out, "<TotalServGravados>"))
}

func TestBytesPaymentMethodsFollowSummary(t *testing.T) {
	inv := testInvoice(t)
	inv.PaymentMethods = []string{"01", "02"}
	inv.References = []*bill.Reference{
		{
			DocType:   "01",
			Number:    strings.Repeat("5", 50),
			IssueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.FixedZone("CST", -6*3600)),
			Code:      bill.ReferenceCodeCancel,
			Reason:    "Anula factura",
		},
	}
	key := testKey(t, testConsecutive)

	doc, err := hacienda.NewDocument(inv, key, testConsecutive)
	require.NoError(t, err)
	data, err := hacienda.Bytes(doc)
	require.NoError(t, err)
	out := string(data)

	medio := strings.Index(out, "<MedioPago>")
	resumen := strings.Index(out, "<ResumenFactura>")
	refs := strings.Index(out, "<InformacionReferencia>")
	require.GreaterOrEqual(t, medio, 0)
	require.GreaterOrEqual(t, resumen, 0)
	require.GreaterOrEqual(t, refs, 0)
	assert.Greater(t, medio, resumen)
	assert.Less(t, medio, refs)
	assert.Equal(t, 2, strings.Count(out, "<MedioPago>"))
}

func TestBytesParseRoundTrip(t *testing.T) {
	inv := testInvoice(t)
	inv.Notes = bill.EntryNotes(
		bill.NoteEntry{Text: "Entrega inmediata"},
		bill.NoteEntry{Code: "07", Text: "pedido 991"},
	)
	key := testKey(t, testConsecutive)

	doc, err := hacienda.NewDocument(inv, key, testConsecutive)
	require.NoError(t, err)
	data, err := hacienda.Bytes(doc)
	require.NoError(t, err)

	back, err := hacienda.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, doc.Clave, back.Clave)
	assert.Equal(t, doc.NumeroConsecutivo, back.NumeroConsecutivo)
	assert.Equal(t, doc.FechaEmision, back.FechaEmision)
	require.NotNil(t, back.Emisor)
	assert.Equal(t, doc.Emisor.Nombre, back.Emisor.Nombre)
	require.NotNil(t, back.Receptor)
	assert.Equal(t, "102340506", back.Receptor.Identificacion.Numero)
	require.Len(t, back.DetalleServicio.LineaDetalle, 1)
	assert.Equal(t, "226.00000", back.DetalleServicio.LineaDetalle[0].MontoTotalLinea)
	assert.Equal(t, "226.00", back.ResumenFactura.TotalComprobante)
	require.NotNil(t, back.Otros)
	assert.Equal(t, []string{"Entrega inmediata"}, back.Otros.OtroTexto)
	require.Len(t, back.Otros.OtroContenido, 1)
	assert.Equal(t, "07", back.Otros.OtroContenido[0].Codigo)
}

func TestParseUnknownNamespace(t *testing.T) {
	data := []byte(`<?xml version="1.0"?><Invoice xmlns="urn:something:else"><ID>1</ID></Invoice>`)
	_, err := hacienda.Parse(data)
	assert.ErrorIs(t, err, hacienda.ErrUnknownDocumentType)
}

func TestParseGarbage(t *testing.T) {
	_, err := hacienda.Parse([]byte("not xml at all"))
	assert.Error(t, err)
}
