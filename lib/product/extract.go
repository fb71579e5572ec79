package product

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissing is reported by a field rule whose selectors yielded nothing.
var ErrMissing = errors.New("no value found")

// FieldError is the typed failure of a mandatory field extraction.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("extract %q: %s", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldRule is one entry of a site's extraction plan. Extract reads from the
// parsed page and writes into the record under construction. A rule that
// finds nothing reports ErrMissing; whether that fails the scrape is decided
// by Required, not by the rule itself.
type FieldRule struct {
	Name     string
	Required bool
	Extract  func(doc *goquery.Document, p *Product) error
}

// Apply evaluates a plan in order. Optional rules swallow ErrMissing, every
// other failure aborts the scrape with a FieldError. There are no partial
// records: the caller discards the Product on error.
func Apply(doc *goquery.Document, p *Product, plan []FieldRule) error {
	for _, rule := range plan {
		err := rule.Extract(doc, p)
		if err == nil {
			continue
		}
		if !rule.Required && errors.Is(err, ErrMissing) {
			continue
		}
		return &FieldError{Field: rule.Name, Err: err}
	}
	return nil
}
