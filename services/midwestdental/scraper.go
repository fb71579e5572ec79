package midwestdental

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
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

type Client struct {
	baseURL *url.URL
	http    *resty.Client
}

type ClientOptions struct {
	BaseURL string
}

// NewClient establishes a scraping session for midwestdental.com by
// solving the anti-bot challenge on the site root. The derived OCXS cookie
// is pinned on the client; the throwaway cookies from the challenge fetch
// are discarded with their jar.
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
		return nil, fmt.Errorf("challenge fetch returned status %d", res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, err
	}

	session, err := solveChallenge(doc)
	if err != nil {
		return nil, err
	}
	client.SetCookie(&http.Cookie{
		Name:  sessionCookieName,
		Value: session,
	})

	return &Client{
		baseURL: baseURL,
		http:    client,
	}, nil
}

// Scrape fetches a product page and parses it into a product record in a
// single round trip; variation links are listed inline, so no secondary
// request is needed. Any missing mandatory field fails the whole scrape.
func (c *Client) Scrape(ctx context.Context, productPageURL string) (product.Product, error) {
	p := product.Product{
		ProductPageURL:           productPageURL,
		Specs:                    map[string]string{},
		VariationProductPageURLs: []string{},
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(productPageURL)
	if err != nil {
		return p, err
	}
	if res.StatusCode() != 200 {
		return p, fmt.Errorf("fetching %s returned status %d", productPageURL, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return p, err
	}

	err = product.Apply(doc, &p, c.plan())
	if err != nil {
		return p, err
	}
	return p, nil
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.baseURL.String() + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

func (c *Client) plan() []product.FieldRule {
	return []product.FieldRule{
		{
			Name:     "productSku",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				sku := htmlutil.CleanText(doc.Find("div.product-view__attribute-item-sku > span.product-view__attribute-item-value[itemprop=sku]"))
				if sku == "" {
					return product.ErrMissing
				}
				p.ProductSKU = sku
				return nil
			},
		},
		{
			Name: "manufacturerName",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				name := htmlutil.CleanText(doc.Find("div.product-view__attribute-item-mfg > span.product-view__attribute-item-value[itemprop=mfg]"))
				if name == "" {
					return product.ErrMissing
				}
				p.ManufacturerName = &name
				return nil
			},
		},
		{
			Name: "manufacturerSku",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				sku := htmlutil.CleanText(doc.Find("div.product-view__attribute-item-mfg_part_number > span.product-view__attribute-item-value[itemprop=mfg_part_number]"))
				if sku == "" {
					return product.ErrMissing
				}
				p.ManufacturerSKU = &sku
				return nil
			},
		},
		{
			Name:     "name",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				name := htmlutil.CleanText(doc.Find("h1 > span[itemprop=name]"))
				if name == "" {
					return product.ErrMissing
				}
				p.Name = name
				return nil
			},
		},
		{
			Name: "saleUnit",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				unit := htmlutil.CleanText(doc.Find("div.product-view__attribute-item-contains > span.product-view__attribute-item-value"))
				// some pages stuff a "Please see description" notice in
				// place of an actual unit
				if unit == "" || strings.Contains(unit, "Please see description") {
					return product.ErrMissing
				}
				p.SaleUnit = &unit
				return nil
			},
		},
		{
			Name: "imageUrl",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				src := strings.TrimSpace(doc.Find("div.product-view-media-gallery__image-item picture > img").AttrOr("src", ""))
				if src == "" {
					return product.ErrMissing
				}
				image := c.resolve(src)
				p.ImageURL = &image
				return nil
			},
		},
		{
			Name:     "category",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				doc.Find("span.breadcrumbs__item > a").Each(func(i int, a *goquery.Selection) {
					// the first crumb is the homepage link
					if i == 0 {
						return
					}
					name := strings.ToLower(htmlutil.CleanText(a))
					if name != "" {
						p.Category = append(p.Category, name)
					}
				})
				if len(p.Category) > 0 && p.Category[0] == "categories" {
					p.Category = p.Category[1:]
				}
				if len(p.Category) == 0 {
					p.Category = []string{"uncategorized"}
				}
				return nil
			},
		},
		{
			Name:     "description",
			Required: true,
			Extract: func(doc *goquery.Document, p *product.Product) error {
				description := htmlutil.Text(doc.Find("div.product-view__content div.product-view__description--configurable").Last())
				if description == "" {
					return product.ErrMissing
				}
				p.Description = []string{description}
				return nil
			},
		},
		{
			Name: "variationProductPageUrls",
			Extract: func(doc *goquery.Document, p *product.Product) error {
				doc.Find("select[name=oro_lab_product_variants_select] option:not([selected])").Each(func(_ int, option *goquery.Selection) {
					path := option.AttrOr("data-url", "")
					if path != "" {
						p.VariationProductPageURLs = append(p.VariationProductPageURLs, c.resolve(path))
					}
				})
				return nil
			},
		},
	}
}
