package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rehearsal/attendance/internal/session"
)

func main() {
	// Flags for customization
	secret := flag.String("secret", "dev_demo_secret_change_me", "Session signing secret")
	userID := flag.String("user", "user:dev", "User record ID for the token")
	role := flag.String("role", "user", "Role for the token (user or admin)")
	issuer := flag.String("issuer", "rehearsal", "Token issuer")
	expMins := flag.Int("exp", 60*24, "Token expiration in minutes (default: 24 hours)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	sessions, err := session.NewManager(session.ManagerConfig{
		Secret: []byte(*secret),
		Issuer: *issuer,
		TTL:    time.Duration(*expMins) * time.Minute,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session manager: %v\n", err)
		os.Exit(1)
	}

	token, expiresAt, err := sessions.Issue(*userID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		output := map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"user_id":      *userID,
			"role":         *role,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
	} else {
		fmt.Println("Session Token Generated")
		fmt.Println("=======================")
		fmt.Printf("User ID:  %s\n", *userID)
		fmt.Printf("Role:     %s\n", *role)
		fmt.Printf("Expires:  %s\n", expiresAt.Format(time.RFC3339))
		fmt.Println()
		fmt.Println("Token:")
		fmt.Println(token)
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Printf("  curl -X POST -H 'Authorization: Bearer <token>' http://localhost:8080/v1/workshops/{workshopId}/ticket\n")
	}
}
