package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type formListing struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Steps    int    `json:"steps"`
	Contract string `json:"contract,omitempty"`
}

func newFormsCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the available forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := c.orchestrator(cmd.Context())
			if err != nil {
				return err
			}

			var list []formListing
			for _, form := range o.Forms().Forms() {
				list = append(list, formListing{
					ID:       form.ID,
					Title:    form.Title,
					Steps:    len(form.Steps),
					Contract: form.Contract,
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTEPS")
			for _, item := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", item.ID, item.Title, item.Steps)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
