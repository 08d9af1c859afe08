package main

import (
	"fmt"
	"log"
	"os"

	"artvault/pkg/chain"
)

// Generates a fee payer key pair and writes its encrypted keystore entry.
// Usage: go run scripts/generate_operator_key.go <password>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: generate_operator_key <password>")
	}
	password := os.Args[1]

	ks := chain.NewKeystore()
	account, err := ks.GenerateOperatorKey()
	if err != nil {
		log.Fatal("Failed to generate key: ", err)
	}

	if err := ks.SaveEntry(account, password); err != nil {
		log.Fatal("Failed to save keystore entry: ", err)
	}

	fmt.Println("Operator key generated")
	fmt.Println("Address:", account.PublicKey.ToBase58())
	fmt.Println("Set FEE_PAYER_ADDRESS to this address to use it as the fee payer.")
}
