package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a definition",
	Long:  `Parses the transitions and checks every reference against the declared states and alphabets. The first problem is reported with its field or line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		doc, err := defFlags.Load()
		if err != nil {
			return err
		}

		summary, err := newEngine(logger).Validate(doc.Definition)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if validateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}
		determinism := "nondeterministic"
		if summary.Deterministic {
			determinism = "deterministic"
		}
		fmt.Fprintf(out, "Valid %s: %d states, %d transitions, %s\n",
			strings.ToUpper(string(summary.Kind)), summary.States, summary.Transitions, determinism)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the summary as JSON")
}
