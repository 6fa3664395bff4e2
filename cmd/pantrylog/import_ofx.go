package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pantrylog/pantrylog/internal/cli"
	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/compose"
	"github.com/pantrylog/pantrylog/internal/ofx"
	"github.com/pantrylog/pantrylog/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import purchases from OFX/QFX bank statements",
		Long: `Import outgoing charges from OFX or QFX (Quicken) files exported
from your bank. Each charge becomes a one-item purchase for the given
user: the merchant is matched against known shops and products by
name, and anything unknown is created during submission.

Examples:
  # Import a single file
  pantrylog import-ofx --user 1 ~/Downloads/chase_jan_2024.qfx

  # Import everything in a directory
  pantrylog import-ofx --user 1 ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().Int64("user", 0, "id of the user the purchases belong to (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	if userID <= 0 {
		return fmt.Errorf("invalid user id: %d", userID)
	}

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(allFiles), "dry_run", dryRun)

	parser := ofx.NewParser()
	var allCharges []ofx.Charge

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		charges, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}
		if len(charges) == 0 {
			slog.Warn("No charges found in file", "file", filepath.Base(filePath))
			continue
		}
		allCharges = append(allCharges, charges...)
	}

	if len(allCharges) == 0 {
		slog.Warn("No charges found in any file")
		return nil
	}

	client, err := backendClient()
	if err != nil {
		return err
	}
	if err := client.RefreshReferenceData(ctx); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	// The client's caches grow as submissions create shops and products,
	// so repeat merchants later in the run resolve to existing entities.
	builder := ofx.NewDraftBuilder(userID, client)

	if dryRun {
		fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d charge(s) found", len(allCharges))))
		unique := 0
		for _, charge := range allCharges {
			draft, ok := builder.Build(charge)
			if !ok {
				continue
			}
			unique++
			marker := "known shop"
			if draft.Shop.IsNew() {
				marker = "new shop"
			}
			fmt.Printf("  %s  %-30s %10s  (%s)\n",
				draft.Date, charge.Payee, charge.Amount.StringFixed(2), marker)
		}
		fmt.Println(cli.WarningStyle.Render(
			fmt.Sprintf("%d unique, %d duplicate(s); nothing saved", unique, len(allCharges)-unique)))
		return nil
	}

	composer := compose.New(client)
	bar := progressbar.Default(int64(len(allCharges)), "importing")

	imported := 0
	skipped := 0
	for _, charge := range allCharges {
		draft, ok := builder.Build(charge)
		if !ok {
			skipped++
			_ = bar.Add(1)
			continue
		}
		// Resolved references survive across attempts, so a retried
		// submission never re-creates entities it already made.
		err := common.WithRetry(ctx, func() error {
			_, submitErr := composer.Submit(ctx, &draft)
			return submitErr
		}, service.RetryOptions{MaxAttempts: 3})
		if err != nil {
			return fmt.Errorf("failed to import charge from %s on %s: %w",
				charge.Payee, draft.Date, err)
		}
		imported++
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Println(cli.SuccessStyle.Render(
		fmt.Sprintf("Imported %d purchase(s), skipped %d duplicate(s)", imported, skipped)))
	return nil
}
