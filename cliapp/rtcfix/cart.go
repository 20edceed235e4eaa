package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rtcfix/cart"
)

func loadHeader(path string) (*cart.Header, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h, err := cart.ParseHeader(contents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

func printHeader(w io.Writer, h *cart.Header) {
	fmt.Fprintf(w, `title:      '%s'
game code:  %s
maker:      %s
magic:      %02x
version:    %d
complement: %02x (valid %v)
`,
		h.TitleString(),
		h.GameCodeString(),
		string(h.MakerCode[:]),
		h.Magic,
		h.SoftwareVersion,
		h.ComplementCheck, h.ComplementValid())
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rom>",
		Short: "Check whether a cartridge image needs the clock fix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHeader(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printHeader(out, h)

			result := cart.Validate(h)
			fmt.Fprintf(out, "result:     %s\n", result)
			if result.Status == cart.Invalid {
				return fmt.Errorf("unsupported cartridge")
			}
			return nil
		},
	}
}
