package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/pkg/orchestrator"
	"github.com/goliatone/go-formwizard/pkg/session"
)

// cli carries state shared by every subcommand once the root pre-run has
// loaded the configuration.
type cli struct {
	cfgPath string
	cfg     *config.Config
	logger  zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Multi-step financial intake forms over HTTP and the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "",
		"Path to a config file (default is ./formwizard.yaml when present)")

	root.AddCommand(
		newServeCmd(c),
		newFillCmd(c),
		newFormsCmd(c),
		newPayloadCmd(c),
		newLintCmd(c),
	)
	return root
}

// orchestrator builds the orchestrator from the loaded config.
func (c *cli) orchestrator(ctx context.Context, extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	opts := []orchestrator.Option{
		orchestrator.WithFormsDir(c.cfg.Forms.Dir),
		orchestrator.WithSubmitTimeout(c.cfg.Submit.Timeout),
		orchestrator.WithEndpoint(c.cfg.Submit.Endpoint),
		orchestrator.WithStrictContract(c.cfg.Submit.StrictContract),
		orchestrator.WithSessionStore(session.NewStore(session.WithTTL(c.cfg.Server.SessionTTL))),
	}
	o, err := orchestrator.New(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("load forms: %w", err)
	}
	return o, nil
}
