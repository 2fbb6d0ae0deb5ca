// Computes a valid gateway callback signature for local testing:
//
//	go run ./cmd/tools/signcallback -order order_123 -payment pay_456
//
// The secret comes from GATEWAY_KEY_SECRET (or .env).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/devta181281/flexfit/internal/modules/payments"
)

func main() {
	orderID := flag.String("order", "", "gateway order id")
	paymentID := flag.String("payment", "", "gateway payment id")
	flag.Parse()

	if *orderID == "" || *paymentID == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	secret := os.Getenv("GATEWAY_KEY_SECRET")
	if secret == "" {
		log.Fatal("GATEWAY_KEY_SECRET is required")
	}

	fmt.Println(payments.Sign(secret, *orderID, *paymentID))
}
