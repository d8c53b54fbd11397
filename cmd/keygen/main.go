package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/arnavshah/dutyboard-api-go/pkg/auth"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keygen <clientID>",
	Short: "Generate an HMAC-signed API key for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := args[0]
		if strings.Contains(clientID, ".") {
			return fmt.Errorf("client id %q must not contain '.'", clientID)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.MasterSecret == "" {
			return fmt.Errorf("API_MASTER_SECRET not found in environment or .env")
		}

		key := auth.New(cfg).GenerateHMACKey(clientID)
		fmt.Printf("Generated Key for %s:\n", color.CyanString(clientID))
		color.New(color.FgGreen, color.Bold).Println(key)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
