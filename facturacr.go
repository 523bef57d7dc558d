// Package facturacr generates Costa Rican electronic documents: it
// sanitizes and calculates an invoice, allocates its consecutive
// number, derives the 50 digit document key and serializes the result
// into the tax authority's XML format.
package facturacr

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avillegas/facturacr/bill"
	"github.com/avillegas/facturacr/clave"
	"github.com/avillegas/facturacr/hacienda"
	"github.com/avillegas/facturacr/sequence"
)

// Generator runs the full document pipeline against a sequence store.
// It is safe for concurrent use as long as the store is.
type Generator struct {
	store     sequence.Store
	env       sequence.Environment
	situation string
	terminal  string
	branch    string
	log       zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithEnvironment selects the Hacienda environment documents are
// generated for. Switching environments resets the company's counters
// on the next generation.
func WithEnvironment(env sequence.Environment) Option {
	return func(g *Generator) { g.env = env }
}

// WithSituation overrides the key's situation code, normally only for
// contingency or offline emission.
func WithSituation(code string) Option {
	return func(g *Generator) { g.situation = code }
}

// WithTerminal sets the 2 digit terminal for the consecutive number.
func WithTerminal(terminal string) Option {
	return func(g *Generator) { g.terminal = terminal }
}

// WithBranch sets the 3 digit branch for the consecutive number.
func WithBranch(branch string) Option {
	return func(g *Generator) { g.branch = branch }
}

// WithLogger attaches a logger; without one the generator is silent.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a Generator over the given store. Defaults: test
// environment, normal situation, terminal "01", branch "001".
func New(store sequence.Store, opts ...Option) *Generator {
	g := &Generator{
		store:     store,
		env:       sequence.EnvironmentTest,
		situation: clave.SituationNormal,
		terminal:  "01",
		branch:    "001",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is one generated document. It is immutable once produced: a
// resend must reuse the same key, consecutive and bytes rather than
// generating again.
type Result struct {
	Clave       string
	Consecutive string
	Sequence    int64
	Document    *hacienda.Document
	XML         []byte
}

// Generate runs the pipeline: normalize, validate, calculate, allocate
// the consecutive, derive the key, serialize. Any failure aborts the
// whole generation; in particular, an allocated sequence value is
// consumed even if a later stage fails.
func (g *Generator) Generate(ctx context.Context, inv *bill.Invoice) (*Result, error) {
	inv.Normalize()
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invoice: %w", err)
	}
	if err := inv.Calculate(); err != nil {
		return nil, fmt.Errorf("calculating totals: %w", err)
	}

	companyID := inv.Issuer.Identification.Number
	if err := g.store.ResetForEnvironment(ctx, companyID, g.env); err != nil {
		return nil, err
	}

	scope := sequence.Scope{
		CompanyID:    companyID,
		DocumentType: inv.DocumentType,
		Terminal:     g.terminal,
		Branch:       g.branch,
	}
	seq, err := g.store.AllocateNext(ctx, scope)
	if err != nil {
		return nil, err
	}

	consecutive, err := clave.Consecutive(inv.DocumentType, g.terminal, g.branch, seq)
	if err != nil {
		return nil, err
	}

	code, err := g.store.SecurityCode(ctx, companyID)
	if err != nil {
		return nil, err
	}

	key, err := clave.New(inv.Emission, g.situation, companyID, consecutive, code)
	if err != nil {
		return nil, err
	}

	doc, err := hacienda.NewDocument(inv, key, consecutive)
	if err != nil {
		return nil, err
	}
	data, err := hacienda.Bytes(doc)
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("clave", key).
		Str("consecutive", consecutive).
		Int64("sequence", seq).
		Str("company", companyID).
		Str("environment", string(g.env)).
		Msg("document generated")

	return &Result{
		Clave:       key,
		Consecutive: consecutive,
		Sequence:    seq,
		Document:    doc,
		XML:         data,
	}, nil
}
