package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compsight/server/internal/comps"
	"compsight/server/internal/ingest"
	"compsight/server/internal/models"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		subjectPath    string
		candidatesPath string
		maxComps       int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a comp analysis for a subject property",
		Long:  "Score candidate properties against a subject, apply adjustments, and print the valuation. Subject and candidates are JSON files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), subjectPath, candidatesPath, maxComps)
		},
	}

	cmd.Flags().StringVar(&subjectPath, "subject", "", "path to subject property JSON file (required)")
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "path to candidate properties JSON file (required)")
	cmd.Flags().IntVar(&maxComps, "max-comps", 0, "maximum comps to return (default from config)")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("candidates")

	return cmd
}

func runAnalyze(ctx context.Context, subjectPath, candidatesPath string, maxComps int) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openGuidelines(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(subjectPath)
	if err != nil {
		return fmt.Errorf("failed to read subject file: %w", err)
	}
	var subject models.Property
	if err := json.Unmarshal(data, &subject); err != nil {
		return fmt.Errorf("failed to parse subject file: %w", err)
	}

	source := ingest.NewFileSource(candidatesPath)
	candidates, err := source.FetchCandidates(ctx, ingest.SearchCriteria{})
	if err != nil {
		return err
	}

	scoringCfg := store.Apply(cfg.ScoringConfig())
	candidates = store.FilterCandidates(&subject, candidates)

	analyzer := comps.NewAnalyzer(scoringCfg, logger)
	result := analyzer.FindComps(&subject, candidates, maxComps)

	if isJSON() {
		return printJSON(result)
	}
	printResult(result)
	return nil
}

func printResult(result models.CompResult) {
	fmt.Printf("Comparable properties: %d\n", len(result.ComparableProperties))
	for i, comp := range result.ComparableProperties {
		fmt.Printf("\n%d. %s, %s (MLS %s)\n", i+1, comp.Property.Address, comp.Property.City, comp.Property.MLSNumber)
		fmt.Printf("   Similarity: %.2f", comp.SimilarityScore)
		if comp.DistanceMiles != nil {
			fmt.Printf("   Distance: %.2f mi", *comp.DistanceMiles)
		}
		fmt.Println()
		for _, reason := range comp.MatchReasons {
			fmt.Printf("   - %s\n", reason)
		}
		for _, adj := range comp.Adjustments {
			fmt.Printf("   Adjustment [%s]: $%.0f (%s)\n", adj.Category, adj.Amount, adj.Reason)
		}
		if comp.AdjustedPrice != nil {
			fmt.Printf("   Adjusted price: $%.0f\n", *comp.AdjustedPrice)
		}
	}

	fmt.Println()
	if result.AveragePrice != nil {
		fmt.Printf("Average comp price:    $%.0f\n", *result.AveragePrice)
	}
	if result.AveragePricePerSqft != nil {
		fmt.Printf("Average price/sqft:    $%.2f\n", *result.AveragePricePerSqft)
	}
	if result.EstimatedValue != nil {
		fmt.Printf("Estimated value:       $%.0f\n", *result.EstimatedValue)
	}
	fmt.Printf("Confidence:            %.2f\n", result.ConfidenceScore)
}
