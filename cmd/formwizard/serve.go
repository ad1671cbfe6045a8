package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			o, err := c.orchestrator(ctx)
			if err != nil {
				return err
			}

			renderer, err := html.New(html.WithTemplatesDir(c.cfg.Render.TemplatesDir))
			if err != nil {
				return fmt.Errorf("html renderer: %w", err)
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			api, err := server.NewWebAPI(c.logger, server.Config{
				Addr:            addr,
				ShutdownTimeout: c.cfg.Server.ShutdownTimeout,
				SweepInterval:   c.cfg.Server.SweepInterval,
				Locale:          c.cfg.Render.Locale,
				Theme:           c.cfg.Render.Theme,
				Variant:         c.cfg.Render.Variant,
				Dependencies: server.Dependencies{
					Forms:          o.Forms(),
					Sessions:       o.Sessions(),
					HTML:           renderer,
					SessionOptions: o.SessionOptions,
				},
			})
			if err != nil {
				return err
			}

			for _, form := range o.Forms().Forms() {
				c.logger.Info().Str("form", form.ID).Int("steps", len(form.Steps)).Msg("form loaded")
			}
			return api.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
