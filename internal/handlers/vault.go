package handlers

import (
	"net/http"
	"strconv"

	"artvault/internal/handlers/business"
	"artvault/internal/models"
	dbconfig "artvault/pkg/config"

	"github.com/gin-gonic/gin"
)

// FractionalizeRequest is the request body for locking an artwork token and
// opening a fraction sale.
type FractionalizeRequest struct {
	Creator               string `json:"creator" binding:"required"`
	OriginalNftMint       string `json:"original_nft_mint" binding:"required"`
	CreatorPaymentAccount string `json:"creator_payment_account" binding:"required"`
	TotalFractions        uint64 `json:"total_fractions"`
	PricePerFraction      uint64 `json:"price_per_fraction"`
}

// BuyFractionsRequest is the request body for a fraction purchase.
type BuyFractionsRequest struct {
	Buyer           string `json:"buyer" binding:"required"`
	OriginalNftMint string `json:"original_nft_mint" binding:"required"`
	Amount          uint64 `json:"amount"`
}

// RedeemRequest is the request body for redeeming the artwork token.
type RedeemRequest struct {
	Redeemer        string `json:"redeemer" binding:"required"`
	OriginalNftMint string `json:"original_nft_mint" binding:"required"`
}

// FractionalizeVault locks the artwork token in custody and opens the sale.
func FractionalizeVault(c *gin.Context) {
	var req FractionalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vault, err := vaultEngine.Fractionalize(c.Request.Context(), business.FractionalizeParams{
		Creator:               req.Creator,
		OriginalNftMint:       req.OriginalNftMint,
		CreatorPaymentAccount: req.CreatorPaymentAccount,
		TotalFractions:        req.TotalFractions,
		PricePerFraction:      req.PricePerFraction,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vault)
}

// BuyFractions sells fractions to a compliant buyer.
func BuyFractions(c *gin.Context) {
	var req BuyFractionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := vaultEngine.BuyFractions(c.Request.Context(), business.BuyParams{
		Buyer:           req.Buyer,
		OriginalNftMint: req.OriginalNftMint,
		Amount:          req.Amount,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// RedeemVault burns the full fraction supply and releases the artwork token.
func RedeemVault(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vault, err := vaultEngine.Redeem(c.Request.Context(), business.RedeemParams{
		Redeemer:        req.Redeemer,
		OriginalNftMint: req.OriginalNftMint,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, vault)
}

// ListVaults returns all vaults.
func ListVaults(c *gin.Context) {
	var vaults []models.Vault
	if err := dbconfig.DB.Find(&vaults).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, vaults)
}

// ListVaultsSlice returns a paginated slice of vaults.
func ListVaultsSlice(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("page_size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	orderField := c.DefaultQuery("order_field", "created_at")
	orderType := c.DefaultQuery("order_type", "desc")

	allowedFields := map[string]bool{
		"id":                 true,
		"creator":            true,
		"original_nft_mint":  true,
		"total_fractions":    true,
		"price_per_fraction": true,
		"fractions_sold":     true,
		"is_sale_active":     true,
		"created_at":         true,
		"updated_at":         true,
	}
	if !allowedFields[orderField] {
		orderField = "created_at"
	}
	if orderType != "asc" && orderType != "desc" {
		orderType = "desc"
	}

	query := dbconfig.DB.Model(&models.Vault{})
	if active := c.Query("is_sale_active"); active != "" {
		query = query.Where("is_sale_active = ?", active == "true")
	}
	if creator := c.Query("creator"); creator != "" {
		query = query.Where("creator = ?", creator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var vaults []models.Vault
	if err := query.Order(orderField + " " + orderType).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&vaults).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      vaults,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetVault returns a vault by its artwork token mint.
func GetVault(c *gin.Context) {
	mint := c.Param("mint")
	var vault models.Vault
	if err := dbconfig.DB.Where("original_nft_mint = ?", mint).First(&vault).Error; err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, vault)
}

// GetVaultOwnership reports a holder's fraction balance and ownership share.
func GetVaultOwnership(c *gin.Context) {
	mint := c.Param("mint")
	holder := c.Query("holder")
	if holder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "holder is required"})
		return
	}

	balance, percent, err := vaultEngine.Ownership(c.Request.Context(), mint, holder)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mint":                 mint,
		"holder":               holder,
		"balance":              balance,
		"ownership_percentage": percent,
	})
}

// ListVaultPurchases returns the purchase history of a vault.
func ListVaultPurchases(c *gin.Context) {
	mint := c.Param("mint")
	var vault models.Vault
	if err := dbconfig.DB.Where("original_nft_mint = ?", mint).First(&vault).Error; err != nil {
		abortWithError(c, err)
		return
	}

	var records []models.PurchaseRecord
	if err := dbconfig.DB.Where("vault_id = ?", vault.ID).Order("created_at desc").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
