package commands

import (
	"context"
	"fmt"
	"os"

	"dentalscrape/lib/configutil"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exercises",
	Short: "exercises runs the analytics and scraping take-home exercises.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	StorePath            string `json:"store_path"`
	HenryScheinBaseURL   string `json:"henry_schein_base_url"`
	MidwestDentalBaseURL string `json:"midwest_dental_base_url"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to read config:", err)
		os.Exit(1)
	}

	if cfg.StorePath == "" {
		cfg.StorePath = "store.db"
	}
	if cfg.HenryScheinBaseURL == "" {
		cfg.HenryScheinBaseURL = "https://www.henryschein.com"
	}
	if cfg.MidwestDentalBaseURL == "" {
		cfg.MidwestDentalBaseURL = "https://midwestdental.com"
	}
	return cfg
}
