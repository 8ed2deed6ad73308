package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironndt/certify/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Inspect Certify configuration settings`,
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the effective configuration",
	Long:  `Display the configuration Certify would start with, after .env and environment overrides`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Println("Certify Configuration")
		fmt.Println("=====================")
		fmt.Println()
		fmt.Printf("  Listen        : %s:%d\n", cfg.Host, cfg.Port)
		fmt.Printf("  Data dir      : %s\n", cfg.DataDir)
		fmt.Printf("  Database      : %s\n", cfg.DBPath)
		fmt.Printf("  Log level     : %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
		if cfg.LogoPath != "" {
			fmt.Printf("  Logo          : %s\n", cfg.LogoPath)
		}
		if cfg.ArtifactsEnabled {
			fmt.Printf("  Artifacts     : %s (served at %s)\n", cfg.ArtifactsDir, cfg.ArtifactsBaseURL)
		} else {
			fmt.Println("  Artifacts     : disabled")
		}
		if cfg.MetricsEnabled {
			fmt.Printf("  Metrics       : %s:%d\n", cfg.Host, cfg.MetricsPort)
		} else {
			fmt.Println("  Metrics       : disabled")
		}
		fmt.Println()
		fmt.Println("Settings come from CERTIFY_* environment variables, with a .env")
		fmt.Println("file in the data directory as the fallback.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	rootCmd.AddCommand(configCmd)
}
