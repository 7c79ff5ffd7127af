package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gavelworks/gavel-stack/cli/internal/client"
	"github.com/gavelworks/gavel-stack/cli/internal/seeder"
	"github.com/gavelworks/gavel-stack/cli/pkg/output"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo auctions",
	Long:  "Generate realistic auction listings and create them through the write-side API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}
		if p.Token == "" {
			return fmt.Errorf("no token on profile, run 'gavel token' first")
		}

		count, _ := cmd.Flags().GetInt("count")
		auctions := client.NewAuctionClient(p.AuctionURL)

		err = seeder.Run(auctions, p.Token, count, func(i int, req *client.CreateAuctionRequest) {
			output.Info("[%d/%d] %d %s %s", i, count, req.Year, req.Make, req.Model)
		})
		if err != nil {
			return err
		}

		output.Success("Seeded %d auctions", count)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("count", 10, "number of auctions to create")
	rootCmd.AddCommand(seedCmd)
}
