package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/automata"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of automata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "automata version %s\n", automata.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
