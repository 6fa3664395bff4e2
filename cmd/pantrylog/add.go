package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pantrylog/pantrylog/internal/api"
	"github.com/pantrylog/pantrylog/internal/cli"
	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/compose"
	"github.com/pantrylog/pantrylog/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a purchase draft",
		Long: `Submit a purchase draft from a JSON file.

Every reference in the draft is either {"id": N} for an existing
entity or {"new": {...}} describing one to create. New categories
with the same name (ignoring case and surrounding spaces) are
created once and shared across items.`,
		RunE: runAdd,
	}

	cmd.Flags().StringP("file", "f", "", "draft JSON file (required)")
	cmd.Flags().Int64("update", 0, "replace the purchase with this id instead of creating")
	cmd.Flags().BoolP("dry-run", "d", false, "validate and preview without submitting")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func loadDraft(path string) (*model.PurchaseDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft file: %w", err)
	}
	var draft model.PurchaseDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft file: %w", err)
	}
	return &draft, nil
}

func backendClient() (*api.Client, error) {
	url := viper.GetString("server.url")
	if url == "" {
		return nil, fmt.Errorf("%w: server.url", common.ErrMissingConfig)
	}
	return api.NewClient(url), nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	updateID, _ := cmd.Flags().GetInt64("update")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	draft, err := loadDraft(file)
	if err != nil {
		return err
	}

	if dryRun {
		return previewDraft(draft)
	}

	client, err := backendClient()
	if err != nil {
		return err
	}
	composer := compose.New(client)

	var purchase *model.Purchase
	if updateID > 0 {
		purchase, err = composer.Update(cmd.Context(), updateID, draft)
	} else {
		purchase, err = composer.Submit(cmd.Context(), draft)
	}
	if err != nil {
		return common.NewUserError("could not save purchase", err)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Purchase %d saved", purchase.ID)))
	fmt.Printf("  %s at shop %d, %d item(s), total %s\n",
		purchase.Date, purchase.ShopID, len(purchase.Items), purchase.TotalAmount.StringFixed(2))
	return nil
}

// previewDraft validates the draft and shows what resolution would
// create, without touching the backend.
func previewDraft(draft *model.PurchaseDraft) error {
	if err := compose.Validate(draft); err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render("Draft is valid"))

	if draft.User.IsNew() {
		fmt.Printf("  new user: %s\n", draft.User.Fields().Name)
	}
	if draft.Shop.IsNew() {
		fmt.Printf("  new shop: %s\n", draft.Shop.Fields().Name)
	}

	plan := compose.PlanCategories(draft.Items)
	for _, pending := range plan.Pending() {
		fmt.Printf("  new category: %s (%d item(s))\n", pending.Name, pending.ItemCount)
	}

	newProducts := 0
	for _, item := range draft.Items {
		if item.Product.IsNew() {
			newProducts++
		}
	}
	fmt.Printf("  %d item(s), %d new product(s)\n", len(draft.Items), newProducts)
	return nil
}
