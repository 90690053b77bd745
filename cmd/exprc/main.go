// Command exprc is a small driver around the expr package: compile and
// evaluate an expression from the command line, or explore one
// interactively in a REPL, or inspect its compiled bytecode.
//
// Grounded on oisee-z80-optimizer's cmd/z80opt/main.go root-command plus
// subcommand layout (RunE closures over locally-declared flag variables),
// adapted from that tool's enumerate/target/stoke/verify/export commands
// to this module's eval/repl/disasm commands.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/skx/expr-machine"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "exprc",
		Short: "exprc compiles and evaluates arithmetic expressions",
	}

	rootCmd.AddCommand(evalCmd(), replCmd(), disasmCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval [expression]",
		Short: "Compile and evaluate a single expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := expr.Compile(args[0], nil)
			if err != nil {
				return fmt.Errorf("compile error: %w", err)
			}

			v, err := p.Eval()
			if err != nil {
				return fmt.Errorf("evaluation error: %w", err)
			}

			fmt.Println(v)
			return nil
		},
	}
}

func disasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm [expression]",
		Short: "Compile an expression and print its bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := expr.Compile(args[0], nil)
			if err != nil {
				return fmt.Errorf("compile error: %w", err)
			}
			return p.Disassemble(os.Stdout)
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive expression REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(os.Stdin, os.Stdout)
		},
	}
}

// runRepl upgrades informatter-nilan's bufio.Scanner-based REPL loop to
// chzyer/readline for history and line editing; the loop shape (print a
// prompt, read a line, "exit" terminates) otherwise follows it directly.
func runRepl(in io.Reader, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "expr> ",
		HistoryFile: "",
		Stdin:       io.NopCloser(in),
		Stdout:      out,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(out, "exprc REPL — type an expression, or 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}

		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		p, err := expr.Compile(line, nil)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		v, err := p.Eval()
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		fmt.Fprintln(out, v)
	}
}
