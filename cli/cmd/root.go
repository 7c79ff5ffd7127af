package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gavelworks/gavel-stack/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "Gavel Stack CLI",
	Long: `gavel is the command-line interface for the Gavel auction platform.

List, create and manage auctions, query the search index, mint dev
tokens and seed demo data from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.gavel/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().Bool("json", false, "output raw JSON instead of tables")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}
}

func profileFor(cmd *cobra.Command) (*config.Profile, error) {
	name, _ := cmd.Flags().GetString("profile")
	return cfg.GetProfile(name)
}

func jsonOutput(cmd *cobra.Command) bool {
	json, _ := cmd.Flags().GetBool("json")
	return json
}
