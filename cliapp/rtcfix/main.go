package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rtcfix/engine"
	"rtcfix/link"
	_ "rtcfix/link/cable"
	_ "rtcfix/link/mock"
	_ "rtcfix/link/wsbridge"
	"rtcfix/util"
)

var (
	configPath string
	logDir     string
	logger     *util.PanicSafeLogger
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			util.LogPanic(err)
			os.Exit(2)
		}
	}()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtcfix",
		Short: "Link cable re-flash and save repair tool",
		Long: "Sends the clock reset program to a second console over a link cable, and checks\n" +
			"cartridge headers and save images on the way.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return openLog()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Close()
				logger = nil
			}
		},
	}

	defaultConfig, err := engine.ConfigPath()
	if err != nil {
		defaultConfig = "config.json"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "configuration file")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "", "write a log file into this directory as well as stderr")

	root.AddCommand(
		newTransferCommand(),
		newValidateCommand(),
		newSaveCommand(),
		newRecoverCommand(),
		newPeerCommand(),
		newDriversCommand(),
		newConfigCommand(),
	)
	return root
}

func openLog() error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if logDir == "" {
		return nil
	}
	f, err := util.OpenLogFile(logDir, "rtcfix")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	logger = util.NewPanicSafeLogger(f)
	log.SetOutput(logger)
	log.Printf("rtcfix: logging to %s\n", filepath.Join(logDir, filepath.Base(f.Name())))
	return nil
}

func newDriversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List link drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range link.Drivers() {
				d, _ := link.DriverByName(name)
				fmt.Fprintf(out, "  %-8s %s\n", name, d.DisplayName())
			}
			return nil
		},
	}
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				config, err := engine.LoadConfiguration(configPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%+v\n", configPath, config)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("%s already exists", configPath)
				}
				return engine.SaveConfiguration(configPath, engine.DefaultConfiguration())
			},
		},
	)
	return cmd
}
