package models

import "time"

const (
	CredentialProviderStripe   = "stripe"
	CredentialProviderPrintful = "printful"
)

// Credential stores an operator-set API key for an external provider. Rows
// are written by the CLI and read once at service startup; they override
// values from the environment.
type Credential struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Provider  string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"provider"`
	SecretKey string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
