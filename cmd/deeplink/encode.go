package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitalvas/deeplink/deeplink"
)

func encodeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <route> [key=value...]",
		Short: "Render the template of a route",
		Long: `Render the template of a named route with the given variables.

Repeat a key to build a list variable.

Examples:
  deeplink encode artist slug=metallica id=1
  deeplink encode search terms=red terms=shoes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(args[1:])
			if err != nil {
				return err
			}

			table, err := opts.table(cmd)
			if err != nil {
				return err
			}

			out, err := table.Encode(args[0], vars)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	return cmd
}

// parseVars collects key=value pairs. Repeated keys accumulate.
func parseVars(pairs []string) (deeplink.Vars, error) {
	vars := deeplink.Vars{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		vars[key] = append(vars[key], value)
	}
	return vars, nil
}
