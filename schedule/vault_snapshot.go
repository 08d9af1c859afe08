package schedule

import (
	"artvault/internal/models"
	dbconfig "artvault/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// RecordVaultSnapshots writes a sale progress row for every vault with an
// active sale.
func RecordVaultSnapshots() error {
	var vaults []models.Vault
	if err := dbconfig.DB.Where("is_sale_active = ?", true).Find(&vaults).Error; err != nil {
		logger.Errorf("vault snapshot query failed: %v", err)
		return err
	}

	for _, vault := range vaults {
		soldValue, err := vault.SoldValue()
		if err != nil {
			logger.Errorf("vault %d sold value overflow, skipping snapshot", vault.ID)
			continue
		}
		snapshot := models.VaultSaleSnapshot{
			VaultID:        vault.ID,
			FractionsSold:  vault.FractionsSold,
			TotalFractions: vault.TotalFractions,
			SoldValue:      soldValue,
			IsSaleActive:   vault.IsSaleActive,
		}
		if err := dbconfig.DB.Create(&snapshot).Error; err != nil {
			logger.Errorf("vault %d snapshot write failed: %v", vault.ID, err)
		}
	}

	logger.Infof("recorded %d vault sale snapshots", len(vaults))
	return nil
}

// Start registers the periodic jobs and starts the scheduler. The returned
// cron can be stopped by the caller on shutdown.
func Start(complianceJob func() error) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	// Snapshots every 15 minutes.
	if _, err := c.AddFunc("0 */15 * * * *", func() {
		if err := RecordVaultSnapshots(); err != nil {
			logger.Errorf("vault snapshot job failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	// Expiry sweep once an hour.
	if _, err := c.AddFunc("0 0 * * * *", func() {
		if err := complianceJob(); err != nil {
			logger.Errorf("kyc expiry job failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
