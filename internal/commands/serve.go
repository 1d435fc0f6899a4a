package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerbook/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the book over an HTTP JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, store, err := a.openBook(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(b, addr,
				server.WithLogger(a.logger),
				server.WithChangeHook(func(ctx context.Context, message string) {
					a.commit(ctx, message, a.logFiles()...)
				}),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", a.dir, addr)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr in ledgerbook.yaml)")
	return cmd
}
