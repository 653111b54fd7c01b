package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/arraiapos/pos/models"
)

type Fixture struct {
	Categories []CategoryFixture  `yaml:"categories"`
	Products   []ProductFixture   `yaml:"products"`
	SiteConfig *SiteConfigFixture `yaml:"site_config"`
}

type CategoryFixture struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type ProductFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Active      *bool  `yaml:"active"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
}

type SiteConfigFixture struct {
	Location        string     `yaml:"location"`
	Attractions     string     `yaml:"attractions"`
	Rules           string     `yaml:"rules"`
	WhatsappLink    string     `yaml:"whatsapp_link"`
	HeroTitle       string     `yaml:"hero_title"`
	HeroDescription string     `yaml:"hero_description"`
	EventDate       *time.Time `yaml:"event_date"`
	PrimaryColor    string     `yaml:"primary_color"`
	SecondaryColor  string     `yaml:"secondary_color"`
}

type Result struct {
	Categories int
	Products   int
	SiteConfig bool
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Apply upserts the fixture in one transaction. Categories and products are
// matched by name, so running it twice leaves the same rows.
func Apply(ctx context.Context, db *gorm.DB, f *Fixture) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryIDs := make(map[string]*models.Category, len(f.Categories))
		for _, c := range f.Categories {
			cat, err := upsertCategory(tx, c)
			if err != nil {
				return err
			}
			categoryIDs[c.Name] = cat
			res.Categories++
		}

		for _, p := range f.Products {
			if err := upsertProduct(tx, p, categoryIDs); err != nil {
				return err
			}
			res.Products++
		}

		if f.SiteConfig != nil {
			if err := upsertSiteConfig(tx, f.SiteConfig); err != nil {
				return err
			}
			res.SiteConfig = true
		}
		return nil
	})
	return res, err
}

func upsertCategory(tx *gorm.DB, c CategoryFixture) (*models.Category, error) {
	if c.Name == "" {
		return nil, errors.New("category without name")
	}
	var cat models.Category
	err := tx.Where("name = ?", c.Name).First(&cat).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find category %s: %w", c.Name, err)
	}
	cat.Name = c.Name
	cat.Icon = optional(c.Icon)
	if err := tx.Save(&cat).Error; err != nil {
		return nil, fmt.Errorf("save category %s: %w", c.Name, err)
	}
	return &cat, nil
}

func upsertProduct(tx *gorm.DB, p ProductFixture, categories map[string]*models.Category) error {
	if p.Name == "" {
		return errors.New("product without name")
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil || price.IsNegative() {
		return fmt.Errorf("product %s: invalid price %q", p.Name, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s: negative stock", p.Name)
	}

	var product models.Product
	err = tx.Where("name = ?", p.Name).First(&product).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find product %s: %w", p.Name, err)
	}

	product.Name = p.Name
	product.Description = optional(p.Description)
	product.Price = price.Round(2)
	product.Stock = p.Stock
	product.ImageURL = optional(p.ImageURL)
	product.Active = p.Active == nil || *p.Active
	product.CategoryID = nil
	if p.Category != "" {
		cat, ok := categories[p.Category]
		if !ok {
			return fmt.Errorf("product %s: unknown category %s", p.Name, p.Category)
		}
		product.CategoryID = &cat.ID
	}

	if err := tx.Omit("Category").Save(&product).Error; err != nil {
		return fmt.Errorf("save product %s: %w", p.Name, err)
	}
	return nil
}

func upsertSiteConfig(tx *gorm.DB, c *SiteConfigFixture) error {
	var cfg models.SiteConfig
	err := tx.First(&cfg).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find site config: %w", err)
	}

	cfg.Location = c.Location
	cfg.Attractions = c.Attractions
	cfg.Rules = c.Rules
	cfg.WhatsappLink = c.WhatsappLink
	cfg.HeroTitle = c.HeroTitle
	cfg.HeroDescription = c.HeroDescription
	cfg.EventDate = c.EventDate
	cfg.PrimaryColor = c.PrimaryColor
	cfg.SecondaryColor = c.SecondaryColor

	if err := tx.Save(&cfg).Error; err != nil {
		return fmt.Errorf("save site config: %w", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
