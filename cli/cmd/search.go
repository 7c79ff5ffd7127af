package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gavelworks/gavel-stack/cli/internal/client"
	"github.com/gavelworks/gavel-stack/cli/pkg/output"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search auctions",
	Long:  "Full-text search over make, model and color, with seller filter and ordering.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profileFor(cmd)
		if err != nil {
			return err
		}

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		seller, _ := cmd.Flags().GetString("seller")
		orderBy, _ := cmd.Flags().GetString("order-by")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := client.NewSearchClient(p.SearchURL).Search(query, seller, orderBy, page, limit)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return output.JSON(result)
		}

		table := output.NewTable("ID", "SELLER", "MAKE", "MODEL", "YEAR", "COLOR", "STATUS")
		for _, item := range result.Results {
			table.AddRow(
				item.ID,
				item.Seller,
				item.Make,
				item.Model,
				strconv.Itoa(item.Year),
				item.Color,
				item.Status,
			)
		}
		table.Render()
		output.Info("Page %d of %d (%d total)",
			result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("seller", "", "filter by seller")
	searchCmd.Flags().String("order-by", "", "sort order: make or new")
	searchCmd.Flags().Int("page", 1, "page number")
	searchCmd.Flags().Int("limit", 0, "page size")
	rootCmd.AddCommand(searchCmd)
}
