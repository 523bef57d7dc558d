package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/avillegas/facturacr/hacienda"
)

type inspectOpts struct {
	*rootOpts
}

func inspect(o *rootOpts) *inspectOpts {
	return &inspectOpts{rootOpts: o}
}

func (i *inspectOpts) cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <infile>",
		Short: "Parse a document XML and print its identifiers and totals",
		Args:  cobra.ExactArgs(1),
		RunE:  i.runE,
	}
}

// inspectSummary is the JSON shape printed for a parsed document.
type inspectSummary struct {
	Variant     string `json:"variant"`
	Clave       string `json:"clave"`
	Consecutive string `json:"consecutive"`
	Emission    string `json:"emission"`
	Issuer      string `json:"issuer,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Total       string `json:"total,omitempty"`
	Lines       int    `json:"lines"`
}

func (i *inspectOpts) runE(cmd *cobra.Command, args []string) error {
	input, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer input.Close() // nolint:errcheck

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := hacienda.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}

	s := inspectSummary{
		Variant:     doc.XMLName.Local,
		Clave:       doc.Clave,
		Consecutive: doc.NumeroConsecutivo,
		Emission:    doc.FechaEmision,
	}
	if doc.Emisor != nil {
		s.Issuer = doc.Emisor.Nombre
	}
	if r := doc.ResumenFactura; r != nil {
		s.Total = r.TotalComprobante
		if r.CodigoTipoMoneda != nil {
			s.Currency = r.CodigoTipoMoneda.CodigoMoneda
		}
	}
	if doc.DetalleServicio != nil {
		s.Lines = len(doc.DetalleServicio.LineaDetalle)
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
