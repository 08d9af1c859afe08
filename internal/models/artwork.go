package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ArtworkMetadata describes the asset behind a vault: title, artist and media
// links, referenced by the original NFT mint. Vaults point at artworks by
// mint only; there is no containment in either direction.
type ArtworkMetadata struct {
	ID          uint      `gorm:"primarykey;autoIncrement" json:"id"`
	Mint        string    `gorm:"size:64;uniqueIndex;not null" json:"mint"`
	Name        string    `gorm:"size:128" json:"name"`
	Artist      string    `gorm:"size:128" json:"artist"`
	Description string    `gorm:"size:512" json:"description"`
	Image       string    `gorm:"size:255" json:"image"`
	ExternalURL string    `gorm:"size:255" json:"external_url"`
	SourceData  JSONB     `gorm:"type:jsonb" json:"source_data"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ArtworkMetadata) TableName() string {
	return "artwork_metadata"
}

// JSONB is a custom type to handle JSONB data
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}
