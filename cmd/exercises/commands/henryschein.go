package commands

import (
	"context"
	"fmt"
	"time"

	"dentalscrape/lib/cliutil"
	"dentalscrape/lib/product"
	"dentalscrape/services/henryschein"

	"github.com/spf13/cobra"
)

var henryScheinProductPageURL *string

func init() {
	henryScheinProductPageURL = henryScheinCmd.Flags().String("productPageUrl", "", "Henry Schein product page URL to scrape.")
	henryScheinCmd.MarkFlagRequired("productPageUrl")
	rootCmd.AddCommand(henryScheinCmd)
}

var henryScheinCmd = &cobra.Command{
	Use:   "henry-schein-scraping --productPageUrl <url>",
	Short: "Scrapes a Henry Schein product page into a product record.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*2)
		defer cancel()

		client, err := henryschein.NewClient(ctx, henryschein.ClientOptions{
			BaseURL: cfg.HenryScheinBaseURL,
		})
		if err != nil {
			cliutil.Fatal("failed to establish session", err)
		}

		p, err := client.Scrape(ctx, *henryScheinProductPageURL)
		if err != nil {
			cliutil.Fatal("scrape failed", err)
		}
		fmt.Println(product.Dump(p))
	},
}
