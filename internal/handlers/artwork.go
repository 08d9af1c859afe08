package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"artvault/internal/models"
	dbconfig "artvault/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// ArtworkMetadataRequest is the request body for artwork metadata upserts.
type ArtworkMetadataRequest struct {
	Mint        string  `json:"mint" binding:"required"`
	Name        *string `json:"name"`
	Artist      *string `json:"artist"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	ExternalURL *string `json:"external_url"`
}

// sanitizeString removes null bytes and ensures valid UTF-8.
func sanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for _, r := range s {
		if r == utf8.RuneError {
			continue
		}
		v = append(v, r)
	}
	return string(v)
}

// sanitizeURL keeps only parseable http(s) URLs.
func sanitizeURL(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// UpsertArtworkMetadata creates or updates the metadata row for a mint.
func UpsertArtworkMetadata(c *gin.Context) {
	var req ArtworkMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := models.ArtworkMetadata{Mint: req.Mint}
	if req.Name != nil {
		meta.Name = sanitizeString(*req.Name)
	}
	if req.Artist != nil {
		meta.Artist = sanitizeString(*req.Artist)
	}
	if req.Description != nil {
		meta.Description = sanitizeString(*req.Description)
	}
	if req.Image != nil {
		meta.Image = sanitizeURL(*req.Image)
	}
	if req.ExternalURL != nil {
		meta.ExternalURL = sanitizeURL(*req.ExternalURL)
	}

	err := dbconfig.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "artist", "description", "image", "external_url", "updated_at",
		}),
	}).Create(&meta).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// GetArtworkMetadata returns the metadata row for a mint.
func GetArtworkMetadata(c *gin.Context) {
	mint := c.Param("mint")
	var meta models.ArtworkMetadata
	if err := dbconfig.DB.Where("mint = ?", mint).First(&meta).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// ListArtworkMetadata returns all metadata rows.
func ListArtworkMetadata(c *gin.Context) {
	var metas []models.ArtworkMetadata
	if err := dbconfig.DB.Find(&metas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metas)
}
