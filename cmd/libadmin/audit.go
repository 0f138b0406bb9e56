package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiebiao/libadmin/internal/application/audit"
	"github.com/xiebiao/libadmin/pkg/mq"
)

func newAuditCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit trail of console mutations",
	}

	var keys []string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print audit events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.Audit.URL == "" {
				return errors.New("audit.url is not configured")
			}

			consumer, err := mq.NewConsumer(cfg.Audit.URL, cfg.Audit.Exchange, cfg.Audit.Queue, keys, log)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return consumer.Consume(ctx, audit.Print(cmd.OutOrStdout()))
		},
	}
	tail.Flags().StringSliceVar(&keys, "key", []string{"#"}, "routing keys to follow, <screen>.<op> with * and # wildcards")

	cmd.AddCommand(tail)
	return cmd
}
