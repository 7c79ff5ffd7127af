package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gavelworks/gavel-stack/auction/pkg/tokens"
	"github.com/gavelworks/gavel-stack/cli/pkg/output"
)

var tokenCmd = &cobra.Command{
	Use:   "token <seller>",
	Short: "Mint a dev token for a seller",
	Long: `Mint an HS256 token locally using the profile's jwt_secret.
The secret must match the auction service's auth.jwt_secret.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileName, _ := cmd.Flags().GetString("profile")
		p, err := cfg.GetProfile(profileName)
		if err != nil {
			return err
		}

		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			secret = p.JWTSecret
		}
		if secret == "" {
			return fmt.Errorf("no secret: set jwt_secret on the profile or pass --secret")
		}

		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := tokens.NewTokenGenerator(secret, ttl).Generate(args[0])
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		save, _ := cmd.Flags().GetBool("save")
		if save {
			if err := cfg.SaveToken(profileName, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			output.Success("Token for %q saved to profile", args[0])
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", "", "signing secret (overrides profile)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	tokenCmd.Flags().Bool("save", true, "save the token to the profile")
	rootCmd.AddCommand(tokenCmd)
}
