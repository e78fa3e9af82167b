// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding flags.
	EnvPrefix = "stratus"
	// ConfigDirFlag names the flag holding the configuration directory.
	ConfigDirFlag = "config-dir"
	// ConfigFileName is the name of the config file inside the configuration directory.
	ConfigFileName = "config.yaml"
)

// DefaultConfigDir returns the default configuration directory for name.
func DefaultConfigDir(name string) string {
	path := "." + name
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path)
}

// ConfigDir returns the configuration directory selected for cmd.
func ConfigDir(cmd *cobra.Command) string {
	flag := cmd.Flags().Lookup(ConfigDirFlag)
	if flag == nil {
		return ""
	}
	if value := os.Getenv(envKey(ConfigDirFlag)); value != "" && !flag.Changed {
		return value
	}
	return flag.Value.String()
}

// Viper returns a viper instance with cmd's flags bound. Values are looked
// up in order of: explicit flags, environment, config file, flag defaults.
func Viper(cmd *cobra.Command) (*viper.Viper, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, Error.Wrap(err)
	}
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()

	if dir := ConfigDir(cmd); dir != "" {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			vip.SetConfigFile(path)
			if err := vip.ReadInConfig(); err != nil {
				return nil, Error.New("failed to read %q: %v", path, err)
			}
		}
	}
	return vip, nil
}

func envKey(flag string) string {
	return strings.ToUpper(EnvPrefix + "_" + strings.NewReplacer(".", "_", "-", "_").Replace(flag))
}

// Ctx returns a context that is canceled when the process receives
// an interrupt or termination signal.
func Ctx(cmd *cobra.Command) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case sig := <-signals:
			log.Printf("Got a signal from the OS: %q", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Exec runs a *cobra.Command and exits the process on failure.
func Exec(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	Must(cmd.Execute())
}

// Must exits the process with err's message if err is not nil.
func Must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
