package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pantrylog/pantrylog/internal/cli"
	"github.com/pantrylog/pantrylog/internal/compose"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which categories a draft would create",
		RunE:  runPlan,
	}

	cmd.Flags().StringP("file", "f", "", "draft JSON file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")

	draft, err := loadDraft(file)
	if err != nil {
		return err
	}

	plan := compose.PlanCategories(draft.Items)
	pending := plan.Pending()
	if len(pending) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No new categories needed"))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d categor(ies) to create", len(pending))))
	for _, category := range pending {
		fmt.Printf("  %s (%d item(s))\n", category.Name, category.ItemCount)
	}
	return nil
}
