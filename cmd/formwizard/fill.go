package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
)

func newFillCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill in a form interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := c.orchestrator(ctx)
			if err != nil {
				return err
			}
			sess, err := o.NewSession(args[0])
			if err != nil {
				return err
			}
			defer o.Sessions().Delete(sess.ID())

			runner := tui.NewRunner(
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithRenderOptions(render.RenderOptions{Locale: c.cfg.Render.Locale}),
			)
			result, err := runner.Run(ctx, sess)
			switch {
			case errors.Is(err, tui.ErrAborted):
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			case err != nil:
				return err
			}

			if result != nil && result.RedirectURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Continue at %s\n", result.RedirectURL)
			}
			return nil
		},
	}
}
