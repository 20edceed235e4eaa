package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rtcfix/recovery"
	"rtcfix/save"
	"rtcfix/save/flash"
)

func newRecoverCommand() *cobra.Command {
	var (
		clock  recovery.SoftClock
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "recover <rom> <sav>",
		Short: "Run the clock reset against a cartridge and save image",
		Long: "Runs the same steps the corrective program performs on the receiving console:\n" +
			"validate the header, load the save, reset the clock and carry game time over.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHeader(args[0])
			if err != nil {
				return err
			}
			f, err := flash.LoadFile(args[1])
			if err != nil {
				return err
			}

			task := recovery.NewTask(h, save.NewManager(f), &clock)
			for task.Step() != recovery.StepWaitExit {
				task.Tick(false)
			}
			task.Tick(true)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cartridge: %s\noutcome:   %s\n", task.Result, task.Outcome)

			switch task.Outcome {
			case recovery.OutcomeUpdated:
				fmt.Fprintf(out, "game time: %+v\n", task.GameTime)
				if dryRun {
					return nil
				}
				return f.SaveFile(args[1])
			case recovery.OutcomeAlreadyUpdated:
				return nil
			}
			if task.Err != nil {
				return fmt.Errorf("%s: %w", task.Outcome, task.Err)
			}
			return fmt.Errorf("%s", task.Outcome)
		},
	}

	flags := cmd.Flags()
	flags.Uint16Var(&clock.Now.Days, "days", 0, "cartridge clock days at the time of the reset")
	flags.Int8Var(&clock.Now.Hours, "hours", 0, "cartridge clock hours")
	flags.Int8Var(&clock.Now.Minutes, "minutes", 0, "cartridge clock minutes")
	flags.BoolVar(&clock.Missing, "no-clock", false, "simulate a cartridge whose clock does not respond")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "do not write the save image")
	return cmd
}
