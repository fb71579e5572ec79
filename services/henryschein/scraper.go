package henryschein

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"dentalscrape/lib/htmlutil"
	"dentalscrape/lib/product"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	variationsPath       = "/us-en/Shopping/Ajax/ProductVariations.ajax.aspx"
	placeholderImagePath = "/us-en/images/shared/imageNotAvailable_600x600.png"
)

type Client struct {
	baseURL *url.URL
	http    *resty.Client
}

type ClientOptions struct {
	BaseURL string
}

// NewClient builds a scraping session for henryschein.com. The warm-up
// request against the site root seeds the cookie jar; product pages served
// without those cookies come back stripped of the data we need.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(time.Second * 30)

	res, err := client.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("session warm-up returned status %d", res.StatusCode())
	}

	return &Client{
		baseURL: baseURL,
		http:    client,
	}, nil
}

// structured-data block embedded in each product page, the primary source
// for most product fields
type metadata struct {
	SKU   string `json:"sku"`
	Brand struct {
		Name string `json:"name"`
	} `json:"brand"`
	MPN         string `json:"mpn"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Scrape fetches a product page and parses it into a product record. It
// issues one page fetch plus, for products with variants, one request to
// the variations endpoint. Any missing mandatory field fails the whole
// scrape; there are no partial records.
func (c *Client) Scrape(ctx context.Context, productPageURL string) (product.Product, error) {
	p := product.Product{
		ProductPageURL:           productPageURL,
		Specs:                    map[string]string{},
		VariationProductPageURLs: []string{},
	}

	doc, err := c.fetchDocument(ctx, productPageURL)
	if err != nil {
		return p, err
	}

	meta, err := parseMetadata(doc)
	if err != nil {
		return p, err
	}

	err = product.Apply(doc, &p, plan(meta))
	if err != nil {
		return p, err
	}

	parentSKU := doc.Find("section#product-tuples.product-variant > h1.heading").
		AttrOr("data-parent-itemcode", "")
	if parentSKU != "" {
		urls, err := c.fetchVariations(ctx, parentSKU, p.ProductSKU)
		if err != nil {
			return p, err
		}
		p.VariationProductPageURLs = urls
	}

	return p, nil
}

func (c *Client) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("fetching %s returned status %d", link, res.StatusCode())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (c *Client) fetchVariations(ctx context.Context, parentSKU, sku string) ([]string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"parentItemcode":     parentSKU,
			"itemcodeToFilter":   sku,
			"pageSize":           "100",
			"pageNumber":         "0",
			"showProductCompare": "False",
		}).
		Post(variationsPath)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("variations request returned status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}

	urls := []string{}
	doc.Find("li > div.title > h2.product-name > a").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href != "" {
			urls = append(urls, href)
		}
	})
	return urls, nil
}

func parseMetadata(doc *goquery.Document) (metadata, error) {
	var meta metadata

	text := htmlutil.Text(doc.Find(`script[type="application/ld+json"]`).First())
	if text == "" {
		return meta, &product.FieldError{Field: "metadata", Err: product.ErrMissing}
	}
	err := json.Unmarshal([]byte(text), &meta)
	if err != nil {
		return meta, &product.FieldError{Field: "metadata", Err: err}
	}
	return meta, nil
}

func plan(meta metadata) []product.FieldRule {
	return []product.FieldRule{
		{
			Name:     "productSku",
			Required: true,
			Extract: func(_ *goquery.Document, p *product.Product) error {
				if meta.SKU == "" {
					return product.ErrMissing
				}
				p.ProductSKU = meta.SKU
				return nil
			},
		},
		{
			Name: "manufacturerName",
			Extract: func(_ *goquery.Document, p *product.Product) error {
				if meta.Brand.Name == "" {
					return product.ErrMissing
				}
				p.ManufacturerName = &meta.Brand.Name
				return nil
			},
		},
		{
			Name: "manufacturerSku",
			Extract: func(_ *goquery.Document, p *product.Product) error {
				if meta.MPN == "" {
					return product.ErrMissing
				}
				p.ManufacturerSKU = &meta.MPN
				return nil
			},
		},
		{
			Name:     "name",
			Required: true,
			Extract: func(_ *goquery.Document, p *product.Product) error {
				if meta.Name == "" {
					return product.ErrMissing
				}
				p.Name = meta.Name
				return nil
			},
		},
		{
			Name: "saleUnit",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				unit := htmlutil.CleanText(doc.Find("ul.product-actions div.uom-opts > span.xx-small"))
				if unit == "" {
					return product.ErrMissing
				}
				p.SaleUnit = &unit
				return nil
			},
		},
		{
			Name: "imageUrl",
			Extract: func(_ *goquery.Document, p *product.Product) error {
				if meta.Image == "" {
					return product.ErrMissing
				}
				if strings.HasSuffix(meta.Image, placeholderImagePath) {
					// "image not available" placeholder, not a real image
					return nil
				}
				image := meta.Image
				p.ImageURL = &image
				return nil
			},
		},
		{
			Name:     "category",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				doc.Find("div.product-assets > ul.small-above > li").Each(func(_ int, li *goquery.Selection) {
					if htmlutil.CleanText(li.ChildrenFiltered("div.field")) != "Category:" {
						return
					}
					li.ChildrenFiltered("div.value").ChildrenFiltered("span").Each(func(_ int, span *goquery.Selection) {
						name := htmlutil.CleanText(span)
						if name != "" {
							p.Category = append(p.Category, name)
						}
					})
				})
				if len(p.Category) == 0 {
					return product.ErrMissing
				}
				return nil
			},
		},
		{
			Name:     "description",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				if meta.Description == "" {
					return product.ErrMissing
				}
				p.Description = []string{meta.Description}

				catalog := htmlutil.Text(doc.Find("section.print-catalog > div.content"))
				if catalog != "" {
					p.Description = append(p.Description, catalog)
				}
				return nil
			},
		},
		{
			Name: "specs",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				doc.Find("section.product-attributes > div.content > ul.attr-list > li").Each(func(_ int, li *goquery.Selection) {
					key := htmlutil.CleanText(li.ChildrenFiltered("div.field"))
					value := htmlutil.CleanText(li.ChildrenFiltered("div.value"))
					if value != "" {
						p.Specs[key] = value
					}
				})
				return nil
			},
		},
	}
}
