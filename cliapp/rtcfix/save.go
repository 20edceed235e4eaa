package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rtcfix/save"
	"rtcfix/save/flash"
)

func newSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Inspect or create save images",
	}

	verify := &cobra.Command{
		Use:   "verify <sav>",
		Short: "Check both slots of a save image and report the one that loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flash.LoadFile(args[0])
			if err != nil {
				return err
			}
			m := save.NewManager(f)
			status := m.Load()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status:  %s\n", status)
			if status != save.StatusOK {
				return fmt.Errorf("save does not load: %s", status)
			}
			fmt.Fprintf(out, "counter: %d\n", m.Counter())
			days, _ := m.VarGet(save.VarDays)
			offset, last := m.ClockStamps()
			fmt.Fprintf(out, "days:    %d\noffset:  %+v\nupdated: %+v\n", days, offset, last)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <sav>",
		Short: "Write a blank formatted save image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			f := flash.New()
			m := save.NewManager(f)
			if status := m.Save(save.ModeFull); status != save.StatusOK {
				return fmt.Errorf("format failed: %s; damaged sectors %s", status, m.DamagedSectors())
			}
			return f.SaveFile(path)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(verify, initCmd)
	return cmd
}
