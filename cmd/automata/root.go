package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/domain"
)

var (
	defFlags  cli.DefinitionFlags
	debug     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "automata",
	Short: "Validate, draw and simulate finite-state and pushdown automata",
	Long: `automata checks automaton definitions, renders their state diagrams and
simulates pushdown automata step by step.

A definition comes from --file (YAML or JSON) or from the field flags:

  automata simulate --states q0,q1 --alphabet a,b --stack-alphabet A \
    -r 'q0,a,Z->q0,AZ' -r 'q0,b,A->q1,ε' -r 'q1,b,A->q1,ε' -r 'q1,ε,Z->q1,ε' \
    --initial q0 --finals q1 --input abb`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

func init() {
	defFlags.Bind(rootCmd)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log engine activity to stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func newLogger() (*slog.Logger, error) {
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return nil, err
	}
	return cli.NewLogger(debug, format), nil
}

// newEngine builds the facade shared by every command.
func newEngine(logger *slog.Logger, opts ...automata.Option) *automata.Engine {
	base := []automata.Option{automata.WithLogger(logger)}
	if debug {
		base = append(base, automata.WithLifecycleHooks(cli.DebugHooks(logger)))
	}
	return automata.New(append(base, opts...)...)
}

// describe adds the offending field and line to a domain error.
func describe(err error) string {
	field, line := domain.Locate(err)
	switch {
	case line > 0:
		return fmt.Sprintf("%v (field %s, line %d)", err, field, line)
	case field != "":
		return fmt.Sprintf("%v (field %s)", err, field)
	}
	return err.Error()
}
