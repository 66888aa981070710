package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tos-network/tvmabi"
	"github.com/tos-network/tvmabi/abi/abijson"
	"github.com/tos-network/tvmabi/abi/codegen"
	"github.com/tos-network/tvmabi/abi/diag"
)

const replHelp = `Enter a signature to parse it, e.g. 'map(uint256, addr)[]' or 'foo(uint32)(bool)v2'.
  :gen <signature>   generate Go structs
  :json <signature>  print the JSON projection
  :help              show this help
  :quit              leave`

func (a *app) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactive signature shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			cfg, err := opts.CodegenConfig(a.log)
			if err != nil {
				return err
			}
			return doREPL(&replSession{out: cmd.OutOrStdout(), cfg: cfg})
		},
	}
}

// do read/eval/print/loop
func doREPL(s *replSession) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	fmt.Fprintln(s.out, replHelp)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		if strings.TrimSpace(line) == ":quit" {
			return nil
		}
		if s.feed(line) {
			rl.SetPrompt(">> ")
		} else {
			rl.SetPrompt("> ")
		}
	}
}

// replSession evaluates shell input. Input that ends in the middle of a
// signature is kept until the next line completes it.
type replSession struct {
	out     io.Writer
	cfg     codegen.Config
	pending string
}

// feed evaluates one line and reports whether more input is needed.
func (s *replSession) feed(line string) bool {
	text := line
	if s.pending != "" {
		text = s.pending + "\n" + line
	}
	if strings.TrimSpace(text) == "" {
		return false
	}

	cmd, rest := "", text
	if strings.HasPrefix(strings.TrimSpace(text), ":") {
		cmd, rest, _ = strings.Cut(strings.TrimSpace(text), " ")
	}
	switch cmd {
	case ":help":
		fmt.Fprintln(s.out, replHelp)
		return false
	case "", ":gen", ":json":
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", cmd)
		return false
	}

	ent, err := tvmabi.ParseEntity(rest, tvmabi.TextStrategy{})
	if err != nil {
		if incomplete(err) {
			s.pending = text
			return true
		}
		s.pending = ""
		fmt.Fprintln(s.out, err)
		return false
	}
	s.pending = ""

	switch cmd {
	case ":gen":
		out, err := tvmabi.GenerateFromParams(rest, s.cfg)
		if err == nil && out == nil {
			out, err = tvmabi.GenerateFromFunction(rest, s.cfg)
		}
		if err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprint(s.out, string(out))
	case ":json":
		data, err := abijson.MarshalEntity(ent)
		if err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintln(s.out, string(data))
	default:
		writeEntityText(s.out, ent)
	}
	return false
}

func incomplete(err error) bool {
	return diag.Is(err, diag.CodeParseEOF)
}
