package product

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestApplyOptionalMissing(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>Widget</h1></body></html>`)

	p := Product{}
	err := Apply(doc, &p, []FieldRule{
		{
			Name:     "name",
			Required: true,
			Extract: func(doc *goquery.Document, p *Product) error {
				p.Name = doc.Find("h1").Text()
				return nil
			},
		},
		{
			Name: "saleUnit",
			Extract: func(doc *goquery.Document, p *Product) error {
				return ErrMissing
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Widget", p.Name)
	require.Nil(t, p.SaleUnit)
}

func TestApplyRequiredMissing(t *testing.T) {
	doc := parseDoc(t, `<html><body></body></html>`)

	err := Apply(doc, &Product{}, []FieldRule{
		{
			Name:     "productSku",
			Required: true,
			Extract: func(doc *goquery.Document, p *Product) error {
				return ErrMissing
			},
		},
	})

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "productSku", fieldErr.Field)
	require.True(t, errors.Is(err, ErrMissing))
}

func TestApplyOptionalHardFailure(t *testing.T) {
	doc := parseDoc(t, `<html><body></body></html>`)
	broken := errors.New("malformed markup")

	// an optional rule only gets to skip when the value is absent, not
	// when it is present but unparseable
	err := Apply(doc, &Product{}, []FieldRule{
		{
			Name: "specs",
			Extract: func(doc *goquery.Document, p *Product) error {
				return broken
			},
		},
	})

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "specs", fieldErr.Field)
	require.True(t, errors.Is(err, broken))
}
