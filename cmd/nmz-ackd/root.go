package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wagiedev/nmz-inspector-go/internal/peer"
)

func newRootCmd() *cobra.Command {
	var (
		policyPath string
		logLevel   string
		flags      = defaultPolicy()
	)

	cmd := &cobra.Command{
		Use:           "nmz-ackd",
		Short:         "Acknowledge inspection events from instrumented processes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy := flags

			if policyPath != "" {
				var err error

				policy, err = loadPolicy(policyPath, policy)
				if err != nil {
					return err
				}

				// Explicit flags win over the file.
				if cmd.Flags().Changed("listen") {
					policy.Listen = flags.Listen
				}

				if cmd.Flags().Changed("end-after") {
					policy.EndAfter = flags.EndAfter
				}

				if cmd.Flags().Changed("ack-delay") {
					policy.AckDelay = flags.AckDelay
				}
			}

			if err := policy.validate(); err != nil {
				return err
			}

			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, log, policy)
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML policy file")
	cmd.Flags().StringVar(&flags.Listen, "listen", flags.Listen, "address to accept runtimes on")
	cmd.Flags().IntVar(&flags.EndAfter, "end-after", 0, "send END after this many FUNC_CALL events per process (0 = never)")
	cmd.Flags().DurationVar(&flags.AckDelay, "ack-delay", 0, "delay before each ACK")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	return cmd
}

func run(ctx context.Context, log *slog.Logger, policy Policy) error {
	ln, err := peer.Listen(log, policy.Listen)
	if err != nil {
		return err
	}

	log.Info("Waiting for runtimes",
		"listen", ln.Addr(),
		"end_after", policy.EndAfter,
		"ack_delay", policy.AckDelay,
	)

	return newServer(log, ln, policy).Serve(ctx)
}
