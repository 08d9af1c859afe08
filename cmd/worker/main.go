package main

import (
	"encoding/json"
	"os"

	"artvault/internal/handlers/business"
	"artvault/internal/models"
	"artvault/pkg/chain"
	"artvault/pkg/config"
	"artvault/schedule"

	logrus "github.com/sirupsen/logrus"
)

// startCustodyMonitors subscribes to the custody accounts of every vault with
// an active sale and logs observed balance changes.
func startCustodyMonitors() {
	manager, err := chain.NewCustodyMonitorManager()
	if err != nil {
		logrus.Warnf("Custody monitoring disabled: %v", err)
		return
	}

	var vaults []models.Vault
	if err := config.DB.Where("is_sale_active = ?", true).Find(&vaults).Error; err != nil {
		logrus.Errorf("Failed to load active vaults for monitoring: %v", err)
		return
	}

	for _, vault := range vaults {
		nftMint := vault.OriginalNftMint
		err := manager.StartMonitoring(vault.CustodyAuthority, func(update *chain.CustodyUpdate) {
			logrus.WithFields(logrus.Fields{
				"nft_mint": nftMint,
				"account":  update.Account,
				"balance":  update.Balance,
				"slot":     update.Slot,
			}).Info("Custody balance changed")
		})
		if err != nil {
			logrus.Errorf("Failed to monitor custody account %s: %v", vault.CustodyAuthority, err)
		}
	}
	logrus.Infof("Monitoring custody accounts for %d active vaults", len(vaults))
}

// KycResultMessage is the payload providers push onto the kyc_results queue.
type KycResultMessage struct {
	User           string                 `json:"user"`
	VerificationID string                 `json:"verification_id"`
	Verified       bool                   `json:"verified"`
	RiskScore      *uint8                 `json:"risk_score"`
	Flags          models.ComplianceFlags `json:"flags"`
	Metadata       *string                `json:"metadata"`
}

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	compliance := business.DefaultComplianceEngine(chain.NewMemoryLedger())

	// Watch custody accounts of active vaults when a websocket endpoint is
	// configured.
	if os.Getenv("DEFAULT_SOLANA_WS") != "" {
		startCustodyMonitors()
	}

	// Start the periodic jobs: sale snapshots and the KYC expiry sweep.
	cronRunner, err := schedule.Start(func() error {
		return schedule.SweepExpiredKyc(compliance)
	})
	if err != nil {
		logrus.Fatal("Failed to start scheduler: ", err)
	}
	defer cronRunner.Stop()

	// Create consumer for provider verification results
	msgConsumer, err := config.NewConsumer(config.QueueKycResults)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("KYC result worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var result KycResultMessage
		if err := json.Unmarshal(msg, &result); err != nil {
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return err
		}

		record, err := compliance.ApplyVerificationResult(business.ProcessResultParams{
			User:           result.User,
			VerificationID: result.VerificationID,
			Verified:       result.Verified,
			RiskScore:      result.RiskScore,
			Flags:          result.Flags,
			Metadata:       result.Metadata,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user":            result.User,
				"verification_id": result.VerificationID,
			}).Errorf("Failed to apply verification result: %v", err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"user":   record.User,
			"status": record.Status,
		}).Info("Verification result applied")
		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer stopped: ", err)
	}
}
