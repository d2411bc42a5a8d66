// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Command jsoncat is a small round-trip harness for the codec: it parses a
// JSON document and re-emits it through the writer, exercising the
// construction → parse → write path spec.md §8 specifies as a testable
// property. It is not part of the codec itself (spec.md §1 scopes the core
// to the parser/writer/value-tree), the way the teacher repo ships its own
// `cmd/` binaries alongside its importable packages.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/arenajson/arenajson/internal/config"
	"github.com/arenajson/arenajson/pkg/jsonparser"
	"github.com/arenajson/arenajson/pkg/jsonvalue"
	"github.com/arenajson/arenajson/pkg/jsonwriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("jsoncat failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jsoncat [file]",
		Short: "Parse a JSON document and re-emit it through the arenajson writer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCat,
	}
	config.BindFlags(cmd.Flags())
	cmd.Flags().IntP("precision", "p", -1, "fractional digits for doubles (-1 uses the writer's default)")
	return cmd
}

func runCat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	precision, err := cmd.Flags().GetInt("precision")
	if err != nil {
		return err
	}

	input, err := readInput(args)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	p, err := jsonparser.New(
		jsonparser.WithMemBytes(cfg.ParserMemBytes),
		jsonparser.WithStackDepth(cfg.StackDepth),
	)
	if err != nil {
		return fmt.Errorf("constructing parser: %w", err)
	}

	root, err := p.Parse(input)
	if err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	w, err := jsonwriter.New(
		jsonwriter.WithBufBytes(cfg.WriterBufBytes),
		jsonwriter.WithStackDepth(cfg.WriterStackSize),
	)
	if err != nil {
		return fmt.Errorf("constructing writer: %w", err)
	}

	emit(w, root, "", precision)

	out, err := w.Get()
	if err != nil {
		return fmt.Errorf("emitting output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

// emit walks v and replays it through w, carrying name through exactly the
// way the original parse recorded it: "" for array elements and the root,
// the attribute's interned name inside an object.
func emit(w *jsonwriter.Writer, v *jsonvalue.Value, name string, precision int) {
	switch v.Type() {
	case jsonvalue.TypeNull:
		w.Null(name)
	case jsonvalue.TypeBool:
		w.Bool(v.AsBool(), name)
	case jsonvalue.TypeInt:
		w.Int(v.AsInt(), name)
	case jsonvalue.TypeDouble:
		if precision >= 0 {
			w.DoubleWithPrecision(v.AsDouble(), precision, name)
		} else {
			w.Double(v.AsDouble(), name)
		}
	case jsonvalue.TypeString:
		w.String(v.AsString(), name)
	case jsonvalue.TypeArray:
		w.ArrayBegin(name)
		for i := 0; i < v.Len(); i++ {
			emit(w, v.Element(i), "", precision)
		}
		w.ArrayEnd()
	case jsonvalue.TypeObject:
		w.ObjectBegin(name)
		for i := 0; i < v.Len(); i++ {
			emit(w, v.AttributeAt(i), v.AttributeName(i), precision)
		}
		w.ObjectEnd()
	}
}
