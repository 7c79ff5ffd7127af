package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gavelworks/gavel-stack/cli/internal/client"
	"github.com/gavelworks/gavel-stack/cli/pkg/output"
	"github.com/gavelworks/gavel-stack/common/events"
)

var auctionsCmd = &cobra.Command{
	Use:   "auctions",
	Short: "Manage auction listings",
}

var auctionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all auctions",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}

		snaps, err := client.NewAuctionClient(p.AuctionURL).List()
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return output.JSON(snaps)
		}
		renderAuctions(snaps)
		return nil
	},
}

var auctionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}

		snap, err := client.NewAuctionClient(p.AuctionURL).Get(args[0])
		if err != nil {
			return err
		}
		return output.JSON(snap)
	},
}

var auctionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an auction",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}
		if p.Token == "" {
			return fmt.Errorf("no token on profile, run 'gavel token' first")
		}

		req := &client.CreateAuctionRequest{}
		req.Make, _ = cmd.Flags().GetString("make")
		req.Model, _ = cmd.Flags().GetString("model")
		req.Year, _ = cmd.Flags().GetInt("year")
		req.Color, _ = cmd.Flags().GetString("color")
		req.Mileage, _ = cmd.Flags().GetInt("mileage")
		req.ReservePrice, _ = cmd.Flags().GetInt("reserve-price")

		days, _ := cmd.Flags().GetInt("days")
		req.AuctionEnd = time.Now().Add(time.Duration(days) * 24 * time.Hour)

		snap, err := client.NewAuctionClient(p.AuctionURL).Create(p.Token, req)
		if err != nil {
			return err
		}

		output.Success("Created auction %s", snap.ID)
		return output.JSON(snap)
	},
}

var auctionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an auction (only flags you set are changed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}
		if p.Token == "" {
			return fmt.Errorf("no token on profile, run 'gavel token' first")
		}

		req := &client.UpdateAuctionRequest{}
		if cmd.Flags().Changed("make") {
			v, _ := cmd.Flags().GetString("make")
			req.Make = &v
		}
		if cmd.Flags().Changed("model") {
			v, _ := cmd.Flags().GetString("model")
			req.Model = &v
		}
		if cmd.Flags().Changed("year") {
			v, _ := cmd.Flags().GetInt("year")
			req.Year = &v
		}
		if cmd.Flags().Changed("color") {
			v, _ := cmd.Flags().GetString("color")
			req.Color = &v
		}
		if cmd.Flags().Changed("mileage") {
			v, _ := cmd.Flags().GetInt("mileage")
			req.Mileage = &v
		}

		snap, err := client.NewAuctionClient(p.AuctionURL).Update(p.Token, args[0], req)
		if err != nil {
			return err
		}

		output.Success("Updated auction %s", snap.ID)
		return output.JSON(snap)
	},
}

var auctionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}
		if p.Token == "" {
			return fmt.Errorf("no token on profile, run 'gavel token' first")
		}

		if err := client.NewAuctionClient(p.AuctionURL).Delete(p.Token, args[0]); err != nil {
			return err
		}

		output.Success("Deleted auction %s", args[0])
		return nil
	},
}

func renderAuctions(snaps []*events.AuctionSnapshot) {
	table := output.NewTable("ID", "SELLER", "MAKE", "MODEL", "YEAR", "STATUS", "ENDS")
	for _, snap := range snaps {
		table.AddRow(
			snap.ID,
			snap.Seller,
			snap.Make,
			snap.Model,
			strconv.Itoa(snap.Year),
			snap.Status,
			snap.AuctionEnd.Format("2006-01-02"),
		)
	}
	table.Render()
}

func init() {
	auctionsCreateCmd.Flags().String("make", "", "vehicle make (required)")
	auctionsCreateCmd.Flags().String("model", "", "vehicle model")
	auctionsCreateCmd.Flags().Int("year", time.Now().Year(), "vehicle year")
	auctionsCreateCmd.Flags().String("color", "", "vehicle color")
	auctionsCreateCmd.Flags().Int("mileage", 0, "vehicle mileage")
	auctionsCreateCmd.Flags().Int("reserve-price", 0, "reserve price")
	auctionsCreateCmd.Flags().Int("days", 7, "days until the auction ends")

	auctionsUpdateCmd.Flags().String("make", "", "vehicle make")
	auctionsUpdateCmd.Flags().String("model", "", "vehicle model")
	auctionsUpdateCmd.Flags().Int("year", 0, "vehicle year")
	auctionsUpdateCmd.Flags().String("color", "", "vehicle color")
	auctionsUpdateCmd.Flags().Int("mileage", 0, "vehicle mileage")

	auctionsCmd.AddCommand(auctionsListCmd, auctionsGetCmd, auctionsCreateCmd,
		auctionsUpdateCmd, auctionsDeleteCmd)
	rootCmd.AddCommand(auctionsCmd)
}
