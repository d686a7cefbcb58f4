// cmd/tools/resource-matcher/validate.go
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse the guide and report rejected resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			summary := cat.Summary()
			if opts.jsonOutput {
				if err := writeJSON(out, map[string]interface{}{
					"summary":  summary,
					"rejected": cat.Rejected,
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "version:      %s\n", summary.Version)
				fmt.Fprintf(out, "last updated: %s\n", summary.LastUpdated)
				fmt.Fprintf(out, "resources:    %d\n", summary.ResourceCount)
				fmt.Fprintf(out, "rejected:     %d\n", summary.RejectedCount)
				fmt.Fprintf(out, "categories:   %s\n", strings.Join(summary.Categories, ", "))

				if len(cat.Rejected) > 0 {
					fmt.Fprintln(out)
					tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "INDEX\tID\tREASON")
					for _, r := range cat.Rejected {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Index, r.ID, r.Reason)
					}
					tw.Flush()
				}
			}

			if strict && len(cat.Rejected) > 0 {
				return fmt.Errorf("%d resource(s) rejected", len(cat.Rejected))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any resource is rejected")
	return cmd
}
