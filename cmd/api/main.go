package main

import (
	"log"
	"os"

	"artvault/internal/handlers"
	"artvault/internal/handlers/business"
	"artvault/internal/routes"
	"artvault/pkg/chain"
	"artvault/pkg/config"
)

func buildLedger() chain.Ledger {
	// LEDGER_BACKEND=memory keeps everything in-process for local
	// development; anything else talks to the configured RPC node.
	if os.Getenv("LEDGER_BACKEND") == "memory" {
		log.Println("Using in-memory ledger backend")
		return chain.NewMemoryLedger()
	}

	feePayer, err := chain.NewKeystore().LoadFeePayer()
	if err != nil {
		log.Fatal("Failed to load fee payer key:", err)
	}
	ledger, err := chain.NewSplLedger(feePayer)
	if err != nil {
		log.Fatal("Failed to initialize ledger:", err)
	}
	return ledger
}

func main() {
	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ (optional, will log warning if not configured)
	var publisher business.SettlementPublisher
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		pub, err := config.NewPublisher()
		if err != nil {
			log.Fatal("Failed to create publisher:", err)
		}
		defer pub.Close()
		publisher = pub
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	ledger := buildLedger()
	paymentMint := os.Getenv("PAYMENT_TOKEN_MINT")

	compliance := business.DefaultComplianceEngine(ledger)
	vault := business.DefaultVaultEngine(ledger, compliance, publisher, paymentMint)
	platform := business.DefaultPlatformEngine(ledger)
	handlers.Init(vault, compliance, platform)

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
