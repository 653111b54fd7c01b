package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteConfig is the singleton row driving the landing page.
type SiteConfig struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Location        string     `json:"location"`
	Attractions     string     `json:"attractions"`
	Rules           string     `json:"rules"`
	WhatsappLink    string     `json:"whatsapp_link"`
	HeroTitle       string     `json:"hero_title"`
	HeroDescription string     `json:"hero_description"`
	EventDate       *time.Time `json:"event_date"`
	PrimaryColor    string     `json:"primary_color"`
	SecondaryColor  string     `json:"secondary_color"`
}

func (c *SiteConfig) TableName() string {
	return "site_config"
}

func (c *SiteConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
