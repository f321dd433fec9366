// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the splitmon CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wgold/splitmon/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the splitmon CLI.
var rootCmd = &cobra.Command{
	Use:   "splitmon",
	Short: "Monitor SEC filings for reverse-split round-up opportunities",
	Long: `splitmon watches EDGAR for reverse stock split announcements whose
fractional-share treatment rounds holders up to a whole share. It crawls
recent filings, extracts the split ratio, effective date and rounding
policy from the filing text, gates out stale or unsuitable events, and
reports the surviving candidates as JSON/CSV plus an optional email digest.

Each stage is a subcommand: run executes the full pipeline, extract runs
the fact extractors over a local filing text, store inspects the cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./splitmon.yaml or ~/.config/splitmon/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("splitmon")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "splitmon"))
		}
	}

	viper.SetEnvPrefix("SPLITMON")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
