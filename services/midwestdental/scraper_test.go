package midwestdental

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dentalscrape/lib/product"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const productPageHTML = `<html><body>
<h1><span itemprop="name">Cotton Rolls #2</span></h1>
<span class="breadcrumbs__item"><a href="/">Home</a></span>
<span class="breadcrumbs__item"><a href="/c">Categories</a></span>
<span class="breadcrumbs__item"><a href="/c/disposables">Disposables</a></span>
<span class="breadcrumbs__item"><a href="/c/disposables/cotton">Cotton Products</a></span>
<div class="product-view__attribute-item-sku">SKU: <span class="product-view__attribute-item-value" itemprop="sku">MD-1001</span></div>
<div class="product-view__attribute-item-mfg"><span class="product-view__attribute-item-value" itemprop="mfg">Richmond</span></div>
<div class="product-view__attribute-item-mfg_part_number"><span class="product-view__attribute-item-value" itemprop="mfg_part_number">201204</span></div>
<div class="product-view__attribute-item-contains"><span class="product-view__attribute-item-value">  Bag of    2000 </span></div>
<div class="product-view-media-gallery__image-item"><picture><img src="/media/cotton.jpg"></picture></div>
<div class="product-view__content">
<div class="product-view__description--configurable">Short blurb.</div>
<div class="product-view__description--configurable">Non-sterile cotton rolls.</div>
</div>
<select name="oro_lab_product_variants_select">
<option selected data-url="/p/md-1001">#2</option>
<option data-url="/p/md-1002">#3</option>
</select>
</body></html>`

// encryptChallenge builds the hex triple the challenge script embeds, so
// the test controls the session value the client must derive.
func encryptChallenge(t *testing.T, session []byte) (string, string, string) {
	t.Helper()

	key, err := hex.DecodeString("0f2a6c5d4e3b2a190817263544536271")
	if err != nil {
		t.Fatal(err)
	}
	iv, err := hex.DecodeString("a1b2c3d4e5f60718293a4b5c6d7e8f90")
	if err != nil {
		t.Fatal(err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	payload := make([]byte, len(session))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(payload, session)

	return hex.EncodeToString(key), hex.EncodeToString(iv), hex.EncodeToString(payload)
}

func newSite(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	session := []byte("0123456789abcdef")
	key, iv, payload := encryptChallenge(t, session)
	expectedCookie := hex.EncodeToString(session)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><head><script>
function toNumbers(h){return h}
var a=toNumbers("%s"),b=toNumbers("%s"),c=toNumbers("%s");
document.cookie="OCXS="+toHex(slowAES.decrypt(c,2,a,b))+"; path=/";
</script></head><body></body></html>`, key, iv, payload)
	})
	mux.HandleFunc("/p/md-1001", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value != expectedCookie {
			http.Error(w, "missing session cookie", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, productPageHTML)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, expectedCookie
}

func ptr[T any](v T) *T {
	return &v
}

func TestScrape(t *testing.T) {
	server, _ := newSite(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	client, err := NewClient(ctx, ClientOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	pageURL := server.URL + "/p/md-1001"
	p, err := client.Scrape(ctx, pageURL)
	if err != nil {
		t.Fatal(err)
	}

	expected := product.Product{
		ProductPageURL:           pageURL,
		ProductSKU:               "MD-1001",
		ManufacturerName:         ptr("Richmond"),
		ManufacturerSKU:          ptr("201204"),
		Name:                     "Cotton Rolls #2",
		SaleUnit:                 ptr("Bag of 2000"),
		ImageURL:                 ptr(server.URL + "/media/cotton.jpg"),
		Category:                 []string{"disposables", "cotton products"},
		Description:              []string{"Non-sterile cotton rolls."},
		Specs:                    map[string]string{},
		VariationProductPageURLs: []string{server.URL + "/p/md-1002"},
	}
	if diff := cmp.Diff(expected, p); diff != "" {
		t.Fatal("unexpected product:", diff)
	}
}

func TestScrapeMissingSku(t *testing.T) {
	server, _ := newSite(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	client, err := NewClient(ctx, ClientOptions{BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	// the root page has none of the product markup
	_, err = client.Scrape(ctx, server.URL+"/")
	var fieldErr *product.FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "productSku", fieldErr.Field)
}

func TestChallengeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script>var unrelated = 1;</script></head><body></body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, err := NewClient(ctx, ClientOptions{BaseURL: server.URL})
	require.Error(t, err)
	require.Contains(t, err.Error(), "challenge")
}
