package commands

import (
	"context"
	"fmt"
	"time"

	"dentalscrape/lib/cliutil"
	"dentalscrape/lib/product"
	"dentalscrape/services/midwestdental"

	"github.com/spf13/cobra"
)

var midwestDentalProductPageURL *string

func init() {
	midwestDentalProductPageURL = midwestDentalCmd.Flags().String("productPageUrl", "", "Midwest Dental product page URL to scrape.")
	midwestDentalCmd.MarkFlagRequired("productPageUrl")
	rootCmd.AddCommand(midwestDentalCmd)
}

var midwestDentalCmd = &cobra.Command{
	Use:   "midwest-dental-scraping --productPageUrl <url>",
	Short: "Scrapes a Midwest Dental product page into a product record.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute*2)
		defer cancel()

		client, err := midwestdental.NewClient(ctx, midwestdental.ClientOptions{
			BaseURL: cfg.MidwestDentalBaseURL,
		})
		if err != nil {
			cliutil.Fatal("failed to establish session", err)
		}

		p, err := client.Scrape(ctx, *midwestDentalProductPageURL)
		if err != nil {
			cliutil.Fatal("scrape failed", err)
		}
		fmt.Println(product.Dump(p))
	},
}
