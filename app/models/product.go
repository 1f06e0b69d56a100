package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Product struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Slug                 string         `gorm:"type:varchar(191);uniqueIndex;not null" json:"slug" validate:"required,min=1,max=191"`
	Title                string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description          string         `gorm:"type:text" json:"description"`
	FulfillmentProductID string         `gorm:"type:varchar(191);not null;index" json:"fulfillment_product_id" validate:"required"`
	FulfillmentVariantID int64          `gorm:"not null;default:0" json:"fulfillment_variant_id"`
	PriceCents           int64          `gorm:"not null;default:0" json:"price_cents" validate:"gte=0"`
	Currency             string         `gorm:"type:varchar(3);not null" json:"currency" validate:"required,len=3"`
	Theme                string         `gorm:"type:varchar(50);not null;default:'default'" json:"theme"`
	Published            bool           `gorm:"default:false;index" json:"published"`
	ImageURL             string         `gorm:"type:varchar(512)" json:"image_url"`
	MetadataJSON         string         `gorm:"type:text" json:"metadata_json"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// Metadata decodes the free-form key-value metadata stored on the product.
func (p *Product) Metadata() map[string]string {
	md := map[string]string{}
	if p.MetadataJSON == "" {
		return md
	}
	_ = json.Unmarshal([]byte(p.MetadataJSON), &md)
	return md
}

func (p *Product) SetMetadata(md map[string]string) error {
	raw, err := json.Marshal(md)
	if err != nil {
		return err
	}
	p.MetadataJSON = string(raw)
	return nil
}

