package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/avillegas/facturacr"
	"github.com/avillegas/facturacr/bill"
	"github.com/avillegas/facturacr/clave"
	"github.com/avillegas/facturacr/sequence"
)

type generateOpts struct {
	*rootOpts
	situation string
	inMemory  bool
}

func generate(o *rootOpts) *generateOpts {
	return &generateOpts{rootOpts: o}
}

func (g *generateOpts) cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <infile> [outfile]",
		Short: "Generate a document from invoice JSON and write its XML",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  g.runE,
	}

	flags := cmd.Flags()
	flags.StringVar(&g.situation, "situation", clave.SituationNormal, "Situation code (1 normal, 2 contingency, 3 offline)")
	flags.BoolVar(&g.inMemory, "in-memory", false, "Use a throwaway in-memory counter store (testing only)")

	return cmd
}

func (g *generateOpts) runE(cmd *cobra.Command, args []string) error {
	input, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer input.Close() // nolint:errcheck

	out, err := openOutput(cmd, args)
	if err != nil {
		return err
	}
	defer out.Close() // nolint:errcheck

	inData, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	inv := new(bill.Invoice)
	if err := json.Unmarshal(inData, inv); err != nil {
		return fmt.Errorf("parsing invoice JSON: %w", err)
	}

	env, err := g.environment()
	if err != nil {
		return err
	}

	store, err := g.store(env)
	if err != nil {
		return err
	}

	gen := facturacr.New(store,
		facturacr.WithEnvironment(env),
		facturacr.WithSituation(g.situation),
		facturacr.WithTerminal(g.cfg.Terminal),
		facturacr.WithBranch(g.cfg.Branch),
		facturacr.WithLogger(g.log),
	)

	res, err := gen.Generate(cmd.Context(), inv)
	if err != nil {
		return err
	}

	if _, err := out.Write(res.XML); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (g *generateOpts) store(env sequence.Environment) (sequence.Store, error) {
	if g.inMemory {
		return sequence.NewMemoryStore(), nil
	}
	return g.openStore(env)
}
