package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/tos-network/tvmabi"
	"github.com/tos-network/tvmabi/abi/abijson"
	"github.com/tos-network/tvmabi/abi/ast"
)

func (a *app) parseCmd() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse [signature]",
		Short: "parse a signature or function document and print its structure",
		Example: `  tvmabi parse 'map(uint256, addr)[]'
  tvmabi parse --format json 'transfer(address,uint128)(bool)v2'`,
		RunE: a.runParse,
	}
	parseCmd.Flags().StringP("format", "f", "text", "output format: text|json|yaml")
	parseCmd.Flags().String("file", "", "read the input from a file, '-' for stdin")
	return parseCmd
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	text, _, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	ent, err := tvmabi.ParseEntity(text)
	if err != nil {
		return err
	}
	a.log.Debugw("parsed entity", "kind", ent.Kind.String())

	out := cmd.OutOrStdout()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		writeEntityText(out, ent)
		return nil
	case "json":
		data, err := abijson.MarshalEntity(ent)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(abijson.FromEntity(ent))
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
	return fmt.Errorf("unsupported --format value %q (expected text|json|yaml)", format)
}

func writeEntityText(w io.Writer, ent ast.Entity) {
	switch ent.Kind {
	case ast.EntityEmpty:
		fmt.Fprintln(w, "empty")
	case ast.EntityCell:
		fmt.Fprintf(w, "cell (%s)\n", ast.SignatureList(ent.Params))
		for _, p := range ent.Params {
			fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Type.Signature())
		}
	case ast.EntityFunction:
		fn := ent.Function
		fmt.Fprintf(w, "function %s v%s\n", fn.Name, fn.Version)
		fmt.Fprintf(w, "  input id:  0x%08x\n", fn.InputID)
		fmt.Fprintf(w, "  output id: 0x%08x\n", fn.OutputID)
		for _, p := range fn.Inputs {
			fmt.Fprintf(w, "  in  %s: %s\n", p.Name, p.Type.Signature())
		}
		for _, p := range fn.Outputs {
			fmt.Fprintf(w, "  out %s: %s\n", p.Name, p.Type.Signature())
		}
	}
}

func (a *app) idCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "id <function>",
		Short:   "print the input and output ids of a function declaration",
		Example: "  tvmabi id 'foo(uint32)(bool)v2'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ent, err := tvmabi.ParseEntity(strings.Join(args, " "), tvmabi.TextStrategy{})
			if err != nil {
				return err
			}
			if ent.Kind != ast.EntityFunction {
				return fmt.Errorf("%q is not a function declaration", strings.Join(args, " "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "input=0x%08x output=0x%08x\n", ent.Function.InputID, ent.Function.OutputID)
			return nil
		},
	}
}
