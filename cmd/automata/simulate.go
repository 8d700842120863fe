package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/domain"
)

var (
	simInputs     []string
	simExplore    bool
	simMaxSteps   int
	simHaltReject bool
	simJSON       bool
	simReport     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a pushdown automaton on input strings",
	Long: `Simulates the automaton on every --input (or on the inputs listed in the
definition file) and prints each transition followed by the verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		doc, err := defFlags.Load()
		if err != nil {
			return err
		}

		inputs := simInputs
		if !cmd.Flags().Changed("input") {
			inputs = doc.Inputs
		}
		if len(inputs) == 0 {
			return errors.New("nothing to simulate: pass --input or list inputs in the definition file")
		}

		opts := []automata.Option{automata.WithStepLimit(simMaxSteps)}
		if simExplore {
			opts = append(opts, automata.WithMode(domain.ModeExplore))
		}
		if simHaltReject {
			opts = append(opts, automata.WithHaltPolicy(automata.HaltReject))
		}
		engine := newEngine(logger, opts...)

		a, err := engine.Compile(doc.Definition)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		out := cmd.OutOrStdout()
		render := tui.NewPlainRenderer()
		if simReport && cli.IsTerminal(out) {
			if render, err = tui.NewRenderer(100); err != nil {
				return err
			}
		}

		traces := make([]*domain.Trace, 0, len(inputs))
		for _, input := range inputs {
			trace, err := engine.Run(ctx, a, input)
			if err != nil {
				if cli.IsInterrupted(err) {
					cli.PrintSystemMessage(cmd.ErrOrStderr(), "Interrupted.")
					return nil
				}
				return fmt.Errorf("input %q: %w", input, err)
			}
			traces = append(traces, trace)
			if simJSON {
				continue
			}
			if err := printTrace(out, trace, render); err != nil {
				return err
			}
		}

		if simJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(traces)
		}
		return nil
	},
}

func printTrace(w io.Writer, t *domain.Trace, render func(string) (string, error)) error {
	if simReport {
		out, err := render(tui.Report(t))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}
	fmt.Fprint(w, tui.FormatLog(t))
	fmt.Fprintf(w, "Verdict: %s\n\n", tui.Verdict(t.Verdict))
	return nil
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringArrayVarP(&simInputs, "input", "i", nil, "Input string (repeatable; may be empty)")
	simulateCmd.Flags().BoolVar(&simExplore, "explore", false, "Try every rule of a key and accept if any path accepts")
	simulateCmd.Flags().IntVar(&simMaxSteps, "max-steps", automata.DefaultStepLimit, "Step ceiling per run")
	simulateCmd.Flags().BoolVar(&simHaltReject, "halt-reject", false, "Reject runs that stop on a missing rule before the input ends")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print the traces as JSON")
	simulateCmd.Flags().BoolVar(&simReport, "report", false, "Print a markdown report (styled on a terminal)")
}
