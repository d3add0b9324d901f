package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/vitalvas/deeplink/deeplink"
)

var errNotClaimed = errors.New("no route claimed the url")

// matchReport is printed by the match command.
type matchReport struct {
	URL      string        `json:"url"`
	Matched  bool          `json:"matched"`
	Route    string        `json:"route,omitempty"`
	Template string        `json:"template,omitempty"`
	Target   string        `json:"target,omitempty"`
	Vars     deeplink.Vars `json:"vars,omitempty"`
	Error    string        `json:"error,omitempty"`
	Attempts []string      `json:"attempts,omitempty"`
}

func matchCmd(opts *rootOptions) *cobra.Command {
	var selectPath string

	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Resolve a URL and print the result as JSON",
		Long: `Resolve a URL against the route table and print a JSON report.

When no route claims the URL the report lists why every route was
skipped and the command exits with a non-zero status.

Examples:
  deeplink match https://example.com/artist/metallica/1
  deeplink match https://example.com/artist/metallica/1 --select target
  deeplink match https://example.com/nope --select attempts.#`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table(cmd)
			if err != nil {
				return err
			}

			report := matchReport{URL: args[0]}

			res, resolveErr := table.ResolveString(cmd.Context(), args[0])
			if resolveErr == nil {
				report.Matched = true
				report.Route = res.Route
				report.Template = res.Template
				report.Target = res.Target
				report.Vars = res.Vars
			} else {
				report.Error = resolveErr.Error()

				var nm *deeplink.NoMatchError
				if errors.As(resolveErr, &nm) {
					report.Error = errNotClaimed.Error()
					for _, err := range nm.Errors {
						report.Attempts = append(report.Attempts, err.Error())
					}
				}
			}

			raw, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}

			if selectPath != "" {
				result := gjson.GetBytes(raw, selectPath)
				if !result.Exists() {
					return fmt.Errorf("path %q not found in report", selectPath)
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.String())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			}

			return resolveErr
		},
	}

	cmd.Flags().StringVarP(&selectPath, "select", "s", "", "Print only the value at this gjson path of the report")

	return cmd
}
