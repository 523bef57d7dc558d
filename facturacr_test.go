package facturacr_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/invopop/gobl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facturacr "github.com/avillegas/facturacr"
	"github.com/avillegas/facturacr/bill"
	"github.com/avillegas/facturacr/hacienda"
	"github.com/avillegas/facturacr/sequence"
)

func testInvoice() *bill.Invoice {
	qty := num.MakeAmount(2, 0)
	price := num.MakeAmount(100, 0)
	return &bill.Invoice{
		Emission: time.Date(2024, 3, 5, 10, 30, 0, 0, time.FixedZone("CST", -6*3600)),
		Issuer: &bill.Party{
			Name:         "Comercial La Uruca S.A.",
			ActivityCode: "722003",
			Identification: &bill.Identification{
				Type:   bill.IDTypeCedulaJuridica,
				Number: "3101123456",
			},
		},
		Receiver: &bill.Party{
			Name: "Juan Pérez",
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
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	g := facturacr.New(sequence.NewMemoryStore())

	res, err := g.Generate(ctx, testInvoice())
	require.NoError(t, err)

	assert.Len(t, res.Clave, 50)
	assert.Equal(t, "01010010000000000001", res.Consecutive)
	assert.Equal(t, int64(1), res.Sequence)

	// Key layout: country, date, situation, issuer, consecutive,
	// security code.
	assert.True(t, strings.HasPrefix(res.Clave, "506"))
	assert.Equal(t, "050324", res.Clave[3:9])
	assert.Equal(t, "1", res.Clave[9:10])
	assert.Equal(t, "003101123456", res.Clave[10:22])
	assert.Equal(t, res.Consecutive, res.Clave[22:42])

	require.NotNil(t, res.Document)
	assert.False(t, res.Document.IsTiquete())
	assert.Equal(t, res.Clave, res.Document.Clave)
	assert.Contains(t, string(res.XML), "<FacturaElectronica")
	assert.Contains(t, string(res.XML), "<TotalComprobante>226.00</TotalComprobante>")
}

func TestGenerateSequenceAdvances(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()
	g := facturacr.New(store)

	var prev *facturacr.Result
	for i := 1; i <= 5; i++ {
		res, err := g.Generate(ctx, testInvoice())
		require.NoError(t, err)
		assert.Equal(t, int64(i), res.Sequence)
		if prev != nil {
			assert.NotEqual(t, prev.Clave, res.Clave)
			assert.NotEqual(t, prev.Consecutive, res.Consecutive)
		}
		prev = res
	}
}

func TestGenerateTiquete(t *testing.T) {
	ctx := context.Background()
	g := facturacr.New(sequence.NewMemoryStore())

	inv := testInvoice()
	inv.Receiver = nil

	res, err := g.Generate(ctx, inv)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Consecutive, "04"))
	assert.True(t, res.Document.IsTiquete())
	assert.Contains(t, string(res.XML), "<TiqueteElectronico")
}

func TestGenerateSeparateSequencesPerType(t *testing.T) {
	// Facturas and tiquetes for the same company advance independent
	// counters.
	ctx := context.Background()
	g := facturacr.New(sequence.NewMemoryStore())

	fac, err := g.Generate(ctx, testInvoice())
	require.NoError(t, err)

	tiq := testInvoice()
	tiq.Receiver = nil
	res, err := g.Generate(ctx, tiq)
	require.NoError(t, err)

	assert.Equal(t, int64(1), fac.Sequence)
	assert.Equal(t, int64(1), res.Sequence)
	assert.NotEqual(t, fac.Consecutive, res.Consecutive)
}

func TestGenerateOptions(t *testing.T) {
	ctx := context.Background()
	g := facturacr.New(sequence.NewMemoryStore(),
		facturacr.WithTerminal("02"),
		facturacr.WithBranch("005"),
		facturacr.WithSituation("3"),
	)

	res, err := g.Generate(ctx, testInvoice())
	require.NoError(t, err)

	assert.Equal(t, "01020050000000000001", res.Consecutive)
	assert.Equal(t, "3", res.Clave[9:10])
}

func TestGenerateEnvironmentSwitchResets(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()

	test := facturacr.New(store, facturacr.WithEnvironment(sequence.EnvironmentTest))
	for i := 0; i < 3; i++ {
		_, err := test.Generate(ctx, testInvoice())
		require.NoError(t, err)
	}

	prod := facturacr.New(store, facturacr.WithEnvironment(sequence.EnvironmentProduction))
	res, err := prod.Generate(ctx, testInvoice())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Sequence)
}

func TestGenerateInvalidInvoice(t *testing.T) {
	ctx := context.Background()
	store := sequence.NewMemoryStore()
	g := facturacr.New(store)

	inv := testInvoice()
	neg := num.MakeAmount(-1, 0)
	inv.Lines[0].Quantity = &neg

	_, err := g.Generate(ctx, inv)
	require.Error(t, err)

	// Validation failures must not consume a sequence number.
	res, err := g.Generate(ctx, testInvoice())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Sequence)
}

func TestGenerateRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := facturacr.New(sequence.NewMemoryStore())

	res, err := g.Generate(ctx, testInvoice())
	require.NoError(t, err)

	doc, err := hacienda.Parse(res.XML)
	require.NoError(t, err)
	assert.Equal(t, res.Clave, doc.Clave)
	assert.Equal(t, res.Consecutive, doc.NumeroConsecutivo)
}
