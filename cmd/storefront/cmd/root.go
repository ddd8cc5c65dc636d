// Package cmd provides the CLI commands for the storefront client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - terminal client for the shop API",
	Long: `Storefront is a terminal client for the shop REST API: browse the
catalog, manage a persistent shopping cart, and place orders.

Quick start:
  1. storefront config init
  2. storefront register --username jane --email jane@example.com
  3. storefront products list
  4. storefront cart add 1 --qty 2
  5. storefront checkout --address "1 Main St"

Configuration:
  Config is loaded from storefront.yaml in the current directory,
  $HOME/.storefront/, or /etc/storefront/.

  Environment variables can override config values with the STOREFRONT_ prefix.
  Example: STOREFRONT_API_BASE_URL=https://shop.example.com/api

The cart and login session persist in a local state file between runs.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./storefront.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
