package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pantrylog/pantrylog/internal/cli"
)

func purchasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchases",
		Short: "Inspect recorded purchases",
	}

	cmd.AddCommand(purchasesListCmd())
	cmd.AddCommand(purchasesDeleteCmd())

	return cmd
}

func purchasesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List purchases, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backendClient()
			if err != nil {
				return err
			}
			purchases, err := client.ListPurchases(cmd.Context())
			if err != nil {
				return err
			}
			if len(purchases) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No purchases recorded"))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d purchase(s)", len(purchases))))
			for _, p := range purchases {
				line := fmt.Sprintf("  #%-4d %s  user %d  shop %d  %d item(s)  %s",
					p.ID, p.Date, p.UserID, p.ShopID, len(p.Items),
					cli.BoldStyle.Render(p.TotalAmount.StringFixed(2)))
				fmt.Println(line)
			}
			return nil
		},
	}
}

func purchasesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a purchase and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid purchase id: %s", args[0])
			}
			client, err := backendClient()
			if err != nil {
				return err
			}
			if err := client.DeletePurchase(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Purchase %d deleted", id)))
			return nil
		},
	}
}
