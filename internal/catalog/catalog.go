// Package catalog holds the static, immutable evaluation configuration: canonical
// parameter definitions with their alias sets and policies, and per-product
// required/critical parameter lists and spec sheets.
package catalog

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// Catalog is built once at startup and shared read-only between evaluations.
type Catalog struct {
	products       map[string]*Product
	order          []string
	parameters     map[string]Parameter
	keywords       []string
	detectionLimit float64
}

// Options are catalog-wide settings.
type Options struct {
	Parameters      []Parameter
	ProductKeywords []string
	DetectionLimit  float64
}

// ProductSpec describes one product when building a catalog.
type ProductSpec struct {
	Name       string
	Required   []string
	Critical   []string // nil means every required parameter is critical
	Parameters []Parameter
	Specs      []SpecLine
}

// New builds an immutable catalog.
func New(opts Options, specs ...ProductSpec) (*Catalog, error) {
	c := &Catalog{
		products:       make(map[string]*Product),
		parameters:     make(map[string]Parameter),
		keywords:       opts.ProductKeywords,
		detectionLimit: opts.DetectionLimit,
	}
	if len(c.keywords) == 0 {
		c.keywords = constants.ProductKeywords
	}
	for _, p := range opts.Parameters {
		k := textnorm.Key(p.Key)
		if k == "" {
			return nil, fmt.Errorf("parameter with empty key")
		}
		c.parameters[k] = p
	}
	for _, s := range specs {
		if err := c.add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(s ProductSpec) error {
	k := textnorm.Key(s.Name)
	if k == "" {
		return fmt.Errorf("product with empty name")
	}
	if _, dup := c.products[k]; dup {
		return fmt.Errorf("duplicate product %q", s.Name)
	}
	p := &Product{
		name:       s.Name,
		critical:   make(map[string]struct{}),
		parameters: make(map[string]Parameter, len(c.parameters)+len(s.Parameters)),
		sheet:      NewSpecSheet(s.Specs),
	}
	for _, r := range s.Required {
		if r = strings.TrimSpace(r); r != "" {
			p.required = append(p.required, r)
		}
	}
	critical := s.Critical
	if critical == nil {
		critical = p.required
	}
	for _, r := range critical {
		if ck := textnorm.Key(r); ck != "" {
			p.critical[ck] = struct{}{}
		}
	}
	for pk, def := range c.parameters {
		p.parameters[pk] = def
	}
	for _, def := range s.Parameters {
		p.parameters[textnorm.Key(def.Key)] = def
	}
	c.products[k] = p
	c.order = append(c.order, s.Name)
	return nil
}

// Product returns a product by name; lookup is normalization-insensitive.
func (c *Catalog) Product(name string) (*Product, bool) {
	p, ok := c.products[textnorm.Key(name)]
	return p, ok
}

// Products lists product names in definition order.
func (c *Catalog) Products() []string {
	return append([]string(nil), c.order...)
}

// Parameter returns the catalog-wide definition for key.
func (c *Catalog) Parameter(key string) (Parameter, bool) {
	p, ok := c.parameters[textnorm.Key(key)]
	return p, ok
}

// DetectionLimit is the largest "< n" reading accepted against a zero-tolerance spec; 0 accepts any.
func (c *Catalog) DetectionLimit() float64 { return c.detectionLimit }

// Detect picks the product for a document from its product and company names:
// the "<product>_<company>" key first, then the product keyword alone.
func (c *Catalog) Detect(productName, companyName string) (*Product, bool) {
	full, short := ProductKeys(productName, companyName, c.keywords)
	if full != "" {
		if p, ok := c.Product(full); ok {
			return p, true
		}
	}
	if short != "" {
		if p, ok := c.Product(short); ok {
			return p, true
		}
	}
	return nil, false
}

// ProductKeys derives the product_company and product-only lookup keys.
func ProductKeys(productName, companyName string, keywords []string) (full, short string) {
	productName = strings.TrimSpace(productName)
	companyName = strings.TrimSpace(companyName)

	lower := strings.ToLower(productName)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			short = kw
			break
		}
	}
	if short == "" {
		if fields := strings.Fields(productName); len(fields) > 0 {
			short = fields[0]
		}
	}
	if short == "" {
		return "", ""
	}
	short = keyPart(short)
	if fields := strings.Fields(companyName); len(fields) > 0 {
		full = short + "_" + keyPart(fields[0])
	}
	return full, short
}

var keyReplacer = strings.NewReplacer(" ", "_", "-", "_")

func keyPart(s string) string {
	return strings.ToLower(keyReplacer.Replace(strings.Trim(strings.TrimSpace(s), `"'`)))
}
