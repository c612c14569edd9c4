package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newthinker/tickertalk/internal/registry"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the operations the assistant can call",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFunctions(cmd, registry.Default())
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}

func printFunctions(cmd *cobra.Command, reg *registry.Registry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tARGUMENTS\tDESCRIPTION")
	for _, spec := range reg.Specs() {
		args := make([]string, 0, len(spec.Args))
		for _, a := range spec.Args {
			name := a.Name
			if !a.Required {
				name += "?"
			}
			args = append(args, name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", spec.Name, strings.Join(args, ","), spec.Description)
	}
	return w.Flush()
}
