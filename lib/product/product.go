package product

import "encoding/json"

// Product is the normalized record produced by scraping a single product
// page. Optional fields are nil when the source page does not expose them.
type Product struct {
	ProductPageURL   string  `json:"productPageUrl"`
	ProductSKU       string  `json:"productSku"`
	ManufacturerName *string `json:"manufacturerName"`
	ManufacturerSKU  *string `json:"manufacturerSku"`
	Name             string  `json:"name"`
	SaleUnit         *string `json:"saleUnit"`
	ImageURL         *string `json:"imageUrl"`
	// ordered broad to narrow, never empty
	Category    []string          `json:"category"`
	Description []string          `json:"description"`
	Specs       map[string]string `json:"specs"`
	// sibling SKU pages, empty when the product has no variants
	VariationProductPageURLs []string `json:"variationProductPageUrls"`
}

// Dump renders the record for CLI output.
func Dump(p Product) string {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		// Product contains nothing json.Marshal can reject.
		panic(err)
	}
	return string(out)
}
