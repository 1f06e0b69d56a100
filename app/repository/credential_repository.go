package repository

import (
	"github.com/linkmint/linkmint/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// credentialRepository implements the CredentialRepository interface
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository instance
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Set upserts the secret key for a provider
func (r *credentialRepository) Set(provider, secretKey string) error {
	cred := &models.Credential{
		Provider:  provider,
		SecretKey: secretKey,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret_key", "updated_at"}),
	}).Create(cred).Error
}

// Get retrieves the credential for a provider
func (r *credentialRepository) Get(provider string) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.Where("provider = ?", provider).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// All retrieves all stored credentials
func (r *credentialRepository) All() ([]models.Credential, error) {
	var creds []models.Credential
	err := r.db.Find(&creds).Error
	return creds, err
}
