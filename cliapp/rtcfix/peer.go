package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"rtcfix/link/mock"
	"rtcfix/link/wsbridge"
)

func newPeerCommand() *cobra.Command {
	var (
		listen  string
		options string
	)

	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Serve an emulated receiving console for the ws driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			peer, err := mock.ParseAddress(options)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    listen,
				Handler: wsbridge.NewServer(peer),
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			go func() {
				<-ctx.Done()
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()
				_ = srv.Shutdown(sctx)
			}()

			log.Printf("rtcfix: emulated peer listening on ws://%s/\n", listen)
			if err = srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "localhost:8080", "address to listen on")
	cmd.Flags().StringVar(&options, "peer", "boot=120", "emulated peer options: boot=N,drop=M")
	return cmd
}
