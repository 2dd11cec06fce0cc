// Package directory keeps the client and product records billing documents
// refer to. Documents only copy display fields out of these records.
package directory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("directory: record not found")
	// ErrDuplicate indicates a record with the same id already exists.
	ErrDuplicate = errors.New("directory: duplicate id")
)

// Address is a postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Client is a customer that documents are addressed to.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   Address   `json:"address"`
	TaxID     string    `json:"taxId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductCategory groups catalog entries.
type ProductCategory string

const (
	CategoryService    ProductCategory = "Service"
	CategoryConsulting ProductCategory = "Consulting"
	CategorySoftware   ProductCategory = "Software"
	CategoryHardware   ProductCategory = "Hardware"
	CategoryMarketing  ProductCategory = "Marketing"
	CategoryDesign     ProductCategory = "Design"
	CategoryOther      ProductCategory = "Other"
)

// Categories lists the categories in display order.
var Categories = []ProductCategory{
	CategoryService,
	CategoryConsulting,
	CategorySoftware,
	CategoryHardware,
	CategoryMarketing,
	CategoryDesign,
	CategoryOther,
}

// Product is a catalog entry. TaxRate is a fraction, 0.10 meaning 10%.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    ProductCategory `json:"category"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Unit        string          `json:"unit"`
}

// ClientPatch is a partial client update.
type ClientPatch struct {
	Name    *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *Address `json:"address,omitempty"`
	TaxID   *string  `json:"taxId,omitempty" validate:"omitempty,max=50"`
}

func (p ClientPatch) apply(c Client) Client {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.TaxID != nil {
		c.TaxID = *p.TaxID
	}
	return c
}

// ProductPatch is a partial product update.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *ProductCategory `json:"category,omitempty" validate:"omitempty,oneof=Service Consulting Software Hardware Marketing Design Other"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	Unit        *string          `json:"unit,omitempty" validate:"omitempty,max=30"`
}

func (p ProductPatch) apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.TaxRate != nil {
		prod.TaxRate = *p.TaxRate
	}
	if p.Unit != nil {
		prod.Unit = *p.Unit
	}
	return prod
}
