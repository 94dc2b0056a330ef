package models

import "strings"

// Product is a deliverable item. The name is what gets stored on an entry.
type Product string

const (
	WholeMilk   Product = "Whole Milk"
	LowFatMilk  Product = "Low-fat Milk"
	SkimMilk    Product = "Skim Milk"
	OrganicMilk Product = "Organic Milk"
)

var DefaultProducts = []Product{WholeMilk, LowFatMilk, SkimMilk, OrganicMilk}

// Catalog is the set of products an entry may reference. It always contains
// DefaultProducts and can be extended at startup.
type Catalog struct {
	products []Product
	byKey    map[string]Product
}

func NewCatalog(extra ...string) *Catalog {
	c := &Catalog{byKey: make(map[string]Product)}
	for _, p := range DefaultProducts {
		c.add(p)
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			c.add(Product(name))
		}
	}
	return c
}

func (c *Catalog) add(p Product) {
	key := strings.ToLower(string(p))
	if _, ok := c.byKey[key]; ok {
		return
	}
	c.byKey[key] = p
	c.products = append(c.products, p)
}

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup resolves a product name case-insensitively to its canonical spelling.
func (c *Catalog) Lookup(name string) (Product, bool) {
	p, ok := c.byKey[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}
