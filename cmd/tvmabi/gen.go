package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tos-network/tvmabi"
	"github.com/tos-network/tvmabi/abi/ast"
)

func (a *app) genCmd() *cobra.Command {
	genCmd := &cobra.Command{
		Use:   "gen [signature]",
		Short: "generate Go structs from a signature or a contract document",
		Example: `  tvmabi gen 'uint256, (uint8, bool)[]'
  tvmabi gen --contract wallet.abi.json --descriptors -o wallet_abi.go`,
		RunE: a.runGen,
	}
	genCmd.Flags().String("contract", "", "contract document to generate from")
	genCmd.Flags().String("file", "", "read the signature from a file, '-' for stdin")
	genCmd.Flags().StringP("output", "o", "", "output file, stdout when empty")
	genCmd.Flags().String("package", "", "package clause of the generated file")
	genCmd.Flags().Bool("descriptors", false, "emit a constructor per function and event")
	mustBind(a.v, "codegen.package", genCmd.Flags().Lookup("package"))
	mustBind(a.v, "codegen.descriptors", genCmd.Flags().Lookup("descriptors"))
	return genCmd
}

func (a *app) runGen(cmd *cobra.Command, args []string) error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	cfg, err := opts.CodegenConfig(a.log)
	if err != nil {
		return err
	}

	var out []byte
	if contract, _ := cmd.Flags().GetString("contract"); contract != "" {
		if len(args) > 0 {
			return fmt.Errorf("--contract cannot be combined with a signature argument")
		}
		data, err := os.ReadFile(contract)
		if err != nil {
			return err
		}
		out, err = tvmabi.GenerateFromContract(contract, data, cfg)
		if err != nil {
			return err
		}
	} else {
		text, _, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		ent, err := tvmabi.ParseEntity(text)
		if err != nil {
			return err
		}
		switch ent.Kind {
		case ast.EntityEmpty:
			a.log.Infow("nothing to generate for empty input")
			return nil
		case ast.EntityFunction:
			out, err = tvmabi.GenerateFromFunction(text, cfg)
		default:
			out, err = tvmabi.GenerateFromParams(text, cfg)
		}
		if err != nil {
			return err
		}
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
		a.log.Infow("wrote generated file", "path", path, "bytes", len(out))
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
