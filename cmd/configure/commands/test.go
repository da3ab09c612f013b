package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mindtide/mindtide/internal/config"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test auth configuration",
		Long:  "Test the configured auth issuer by probing its discovery and JWKS endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("Testing auth configuration\n")
			fmt.Printf("Issuer: %s\n", cfg.AuthIssuer)

			client := &http.Client{Timeout: 10 * time.Second}

			// Test issuer discovery endpoint
			discoveryURL := cfg.AuthIssuer + "/.well-known/openid-configuration"
			fmt.Printf("\nTesting discovery endpoint: %s\n", discoveryURL)
			if err := probe(client, discoveryURL); err != nil {
				return fmt.Errorf("discovery endpoint: %w", err)
			}
			fmt.Println("✓ Discovery endpoint is accessible")

			// Test JWKS endpoint
			fmt.Printf("\nTesting JWKS endpoint: %s\n", cfg.AuthJWKSURL)
			if err := probe(client, cfg.AuthJWKSURL); err != nil {
				return fmt.Errorf("JWKS endpoint: %w", err)
			}
			fmt.Println("✓ JWKS endpoint is accessible")

			fmt.Println("\n✓ Auth configuration test passed")
			return nil
		},
	}

	return cmd
}

func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to reach endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
