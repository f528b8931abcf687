package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/pkg/errors"
)

// Category groups products. It carries no derived state.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the category entity
func (c *Category) Validate() error {
	fields := errors.FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(fields) > 0 {
		return errors.NewFieldValidation(fields)
	}
	return nil
}

// NewCategory creates a new category with validation
func NewCategory(name, description string) (*Category, error) {
	now := time.Now().UTC()
	category := &Category{
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	return category, nil
}

// CategoryPatch carries the fields of a partial category update
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Apply copies the set fields of the patch onto the category
func (c *Category) Apply(patch CategoryPatch) {
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	c.UpdatedAt = time.Now().UTC()
}

// Variant is one size/color combination of a product
type Variant struct {
	Size     string
	Color    string
	Quantity int
	SKU      string
}

// Product is a catalog item.
// AvailableQuantity is derived by the inventory reconciler and is never set from client input.
type Product struct {
	ID                string
	Name              string
	Description       string
	CategoryID        string
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	Images            []string
	Variants          []Variant
	AvailableQuantity int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalVariantQuantity sums the quantity of every variant
func (p *Product) TotalVariantQuantity() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Quantity
	}
	return total
}

// Oversold reports whether fulfilled orders consumed more than the variants hold
func (p *Product) Oversold() bool {
	return p.AvailableQuantity < 0
}

// Validate collects every field violation of the product
func (p *Product) Validate() error {
	fields := errors.FieldErrors{}

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(p.Description) == "" {
		fields["description"] = "description is required"
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		fields["category"] = "category is required"
	}
	if p.CostPrice.IsNegative() {
		fields["cost_price"] = "cost_price must not be negative"
	}
	if p.SellingPrice.IsNegative() {
		fields["selling_price"] = "selling_price must not be negative"
	}
	if p.SellingPrice.IsZero() {
		fields["selling_price"] = "selling_price is required"
	}
	if len(p.Images) == 0 {
		fields["images"] = "at least one image is required"
	}
	for i, img := range p.Images {
		if strings.TrimSpace(img) == "" {
			fields[fmt.Sprintf("images[%d]", i)] = "image must not be empty"
		}
	}
	if len(p.Variants) == 0 {
		fields["variants"] = "at least one variant is required"
	}

	seen := make(map[string]int, len(p.Variants))
	for i, v := range p.Variants {
		prefix := fmt.Sprintf("variants[%d].", i)
		if strings.TrimSpace(v.Size) == "" {
			fields[prefix+"size"] = "size is required"
		}
		if strings.TrimSpace(v.Color) == "" {
			fields[prefix+"color"] = "color is required"
		}
		if v.Quantity < 0 {
			fields[prefix+"quantity"] = "quantity must not be negative"
		}
		sku := strings.TrimSpace(v.SKU)
		if sku == "" {
			fields[prefix+"sku"] = "sku is required"
			continue
		}
		if first, dup := seen[sku]; dup {
			fields[prefix+"sku"] = fmt.Sprintf("sku %q duplicates variants[%d]", sku, first)
			continue
		}
		seen[sku] = i
	}

	if len(fields) > 0 {
		return errors.NewFieldValidation(fields)
	}
	return nil
}

// NewProductInput holds the client supplied fields of a new product
type NewProductInput struct {
	Name         string
	Description  string
	CategoryID   string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Images       []string
	Variants     []Variant
}

// NewProduct creates a product with validation.
// No order can reference a new product yet, so its available quantity starts at the variant total.
func NewProduct(in NewProductInput) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		CategoryID:   strings.TrimSpace(in.CategoryID),
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Images:       in.Images,
		Variants:     in.Variants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.AvailableQuantity = product.TotalVariantQuantity()
	return product, nil
}

// ProductPatch carries the fields of a partial product update
type ProductPatch struct {
	Name         *string
	Description  *string
	CategoryID   *string
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	Images       *[]string
	Variants     *[]Variant
}

// VariantsChanged reports whether the patch replaces the variant list
func (p ProductPatch) VariantsChanged() bool {
	return p.Variants != nil
}

// Apply copies the set fields of the patch onto the product
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		p.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.CostPrice != nil {
		p.CostPrice = *patch.CostPrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.Variants != nil {
		p.Variants = *patch.Variants
	}
	p.UpdatedAt = time.Now().UTC()
}
