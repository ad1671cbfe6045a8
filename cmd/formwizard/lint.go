package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/formdef"
	"github.com/goliatone/go-formwizard/pkg/orchestrator"
)

func newLintCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [dir]",
		Short: "Check form definitions and their payload contracts",
		Long: "Lint compiles every definition in dir (default: forms.dir, or the " +
			"bundled forms) and reports problems a live submission would hit.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Forms.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			var (
				store *formdef.Store
				err   error
			)
			if dir == "" {
				store, err = formdef.Default()
			} else {
				store, err = formdef.LoadFS(os.DirFS(dir))
			}
			if err != nil {
				return err
			}
			if store.Empty() {
				return fmt.Errorf("lint: no definitions found in %s", dir)
			}

			violations := orchestrator.Lint(cmd.Context(), store)
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v.String())
			}
			if len(violations) > 0 {
				return fmt.Errorf("lint: %d problem(s) found", len(violations))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d form(s) ok\n", len(store.Forms()))
			return nil
		},
	}
}
