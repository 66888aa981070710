package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tos-network/tvmabi"
)

func (a *app) sigsCmd() *cobra.Command {
	sigsCmd := &cobra.Command{
		Use:   "sigs <contract.abi.json>",
		Short: "list canonical signatures and ids of a contract document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if check, _ := cmd.Flags().GetString("check"); check != "" {
				if len(args) > 0 {
					return fmt.Errorf("--check takes no contract document")
				}
				data, err := os.ReadFile(check)
				if err != nil {
					return err
				}
				info, err := tvmabi.InspectSignatures(data)
				if err != nil {
					return &exitError{code: 2, err: fmt.Errorf("%s: %w", check, err)}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok: abi %s, %d function(s), %d event(s)\n", info.Version, info.FunctionCount, info.EventCount)
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("sigs requires a contract document")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := tvmabi.LoadContract(args[0], data)
			if err != nil {
				return err
			}
			listing, err := tvmabi.RenderSignatures(c)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(listing)
			return err
		},
	}
	sigsCmd.Flags().String("check", "", "validate a signature listing instead of producing one")
	return sigsCmd
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <generated.go> <contract.abi.json>",
		Short: "check that a generated file matches its contract document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			generated, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			source, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if err := tvmabi.VerifyGeneratedSource(generated, source); err != nil {
				return &exitError{code: 2, err: fmt.Errorf("%s: %w", args[0], err)}
			}
			a.log.Debugw("source hash verified", "file", args[0], "hash", tvmabi.SourceHash(source))
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s matches %s\n", args[0], args[1])
			return nil
		},
	}
}
