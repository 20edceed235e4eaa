package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"rtcfix/engine"
	"rtcfix/link"
	"rtcfix/payload"
	"rtcfix/transfer"
	"rtcfix/ui"
)

// headless stands in for a person: it confirms every prompt and gives up after too many
// failed attempts.
type headless struct {
	out         io.Writer
	machine     *transfer.Machine
	maxFailures int
	cancel      context.CancelFunc

	last transfer.Scene
}

func (h *headless) Present(scene transfer.Scene) {
	if scene != h.last {
		fmt.Fprintf(h.out, "%s\n", scene)
		h.last = scene
	}
}

func (h *headless) Confirmed() bool {
	if h.machine.State() == transfer.StateFailed && h.machine.Report().Failures >= h.maxFailures {
		h.cancel()
		return false
	}
	return true
}

func newTransferCommand() *cobra.Command {
	var (
		driver, port, payloadPath, ack string
		chunkSize, retries, settle     int
		noUI                           bool
		maxFailures                    int
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send the clock reset program to the connected console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := engine.LoadConfiguration(configPath)
			if err != nil {
				return err
			}

			// flags override the configuration file:
			flags := cmd.Flags()
			if flags.Changed("driver") {
				config.Driver = driver
			}
			if flags.Changed("port") {
				config.Port = port
			}
			if flags.Changed("payload") {
				config.Payload = payloadPath
			}
			if flags.Changed("ack") {
				config.Ack = ack
			}
			if flags.Changed("chunk") {
				config.ChunkSize = chunkSize
			}
			if flags.Changed("retries") {
				config.Retries = retries
			}
			if flags.Changed("settle") {
				config.SettleTicks = settle
			}
			if err = config.Validate(); err != nil {
				return err
			}
			if config.Payload == "" {
				return fmt.Errorf("no payload given; use --payload or set it in %s", configPath)
			}

			img, err := payload.Load(config.Payload)
			if err != nil {
				return err
			}
			tc, err := config.TransferConfig(img.TransmitRange())
			if err != nil {
				return err
			}

			p, err := link.Open(config.Driver, config.Port)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			m := transfer.NewMachine(p, tc)
			var (
				presenter engine.Presenter
				input     engine.Input
				screen    *ui.Screen
			)
			if noUI {
				h := &headless{out: cmd.OutOrStdout(), machine: m, maxFailures: maxFailures, cancel: cancel, last: -1}
				presenter, input = h, h
			} else {
				screen, err = ui.NewScreen()
				if err != nil {
					return err
				}
				if logger != nil {
					logger.SetEcho(false)
					defer logger.SetEcho(true)
				}
				go func() {
					select {
					case <-screen.Stopped():
						cancel()
					case <-ctx.Done():
					}
				}()
				defer screen.Close()
				presenter, input = screen, screen
			}

			c := engine.NewController(m, presenter, input, engine.RestarterFunc(func() {
				log.Printf("rtcfix: transfer acknowledged; resetting link\n")
			}))

			err = c.Run(ctx)
			if screen != nil {
				// leave the full-screen UI before printing
				screen.Close()
			}

			out := cmd.OutOrStdout()
			if perr := m.Report().Fprint(out); perr != nil {
				log.Printf("rtcfix: report: %v\n", perr)
			}
			if errors.Is(err, engine.ErrRestart) {
				fmt.Fprintln(out, "transfer complete")
				return nil
			}
			if m.State() == transfer.StateComplete {
				return nil
			}
			if m.Err != nil {
				return fmt.Errorf("transfer did not complete: %w", m.Err)
			}
			return fmt.Errorf("transfer did not complete: %w", err)
		},
	}

	def := engine.DefaultConfiguration()
	flags := cmd.Flags()
	flags.StringVarP(&driver, "driver", "d", def.Driver, "link driver (see 'rtcfix drivers')")
	flags.StringVarP(&port, "port", "p", "", "driver address: serial port[;baud] for cable, ws:// URL for ws, options for mock")
	flags.StringVar(&payloadPath, "payload", "", "corrective program image")
	flags.StringVar(&ack, "ack", def.Ack, "chunk acknowledgement: required or none")
	flags.IntVar(&chunkSize, "chunk", def.ChunkSize, "bytes per chunk")
	flags.IntVar(&retries, "retries", def.Retries, "send attempts per tick")
	flags.IntVar(&settle, "settle", def.SettleTicks, "ticks the peer must stay ready before sending")
	flags.BoolVar(&noUI, "no-ui", false, "run without the terminal UI, confirming every prompt")
	flags.IntVar(&maxFailures, "max-failures", 3, "with --no-ui, give up after this many failed attempts")
	return cmd
}
