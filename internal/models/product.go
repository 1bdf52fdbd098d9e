package models

import "time"

const DefaultProductName = "Product"

type Site = string

const (
  SiteAmazon   Site = "Amazon"
  SiteFlipkart Site = "Flipkart"
  SiteMeesho   Site = "Meesho"
  SiteWestside Site = "Westside"
  SiteHM       Site = "H&M"
)

type Product struct {
  URL        string    `bson:"url" json:"url"`
  Name       string    `bson:"name" json:"name"`
  ImageURL   string    `bson:"image_url" json:"image_url"`
  Price      float64   `bson:"price" json:"price"`
  Site       Site      `bson:"site" json:"site"`
  IsFallback bool      `bson:"is_fallback" json:"is_fallback"`
  ParsedAt   time.Time `bson:"parsed_at" json:"parsed_at"`
}

func (p *Product) SetParsedAt() {
  p.ParsedAt = time.Now()
}

// HasPrice reports whether the product carries a real observed price.
func (p *Product) HasPrice() bool {
  return !p.IsFallback && p.Price > 0
}
