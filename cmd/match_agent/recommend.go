package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/founder-match/internal/observability"
	"github.com/jonathan/founder-match/internal/recommend"
	"github.com/jonathan/founder-match/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get recommendations for a member",
	Long:  "Run the recommendation flow for one member and print the result. The cache is used unless --refresh is set.",
	RunE:  runRecommend,
}

var (
	recommendSubject string
	recommendRefresh bool
	recommendOffline bool
	recommendJSON    bool
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendSubject, "subject", "s", "", "Profile ID to recommend for (required)")
	recommendCmd.Flags().BoolVar(&recommendRefresh, "refresh", false, "Discard cached recommendations and generate a new set")
	recommendCmd.Flags().BoolVar(&recommendOffline, "offline", false, "Do not call the scoring model; use the fallback ranking")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print the API response body instead of a summary")

	if err := recommendCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	subjectID, err := uuid.Parse(recommendSubject)
	if err != nil {
		return fmt.Errorf("invalid subject ID %q: %w", recommendSubject, err)
	}

	ctx := cmd.Context()
	comps, err := buildComponents(ctx, cfg, recommendOffline)
	if err != nil {
		return err
	}
	defer comps.Close()

	result, err := comps.service.GetRecommendations(ctx, subjectID, recommendRefresh)
	if err != nil {
		return err
	}

	var subject *types.Profile
	if !recommendJSON {
		// Display only; the orchestrator already loaded the profile successfully.
		subject, _ = comps.db.GetProfile(ctx, subjectID)
	}
	return writeRecommendations(cmd.OutOrStdout(), subject, result, recommendJSON)
}

// writeRecommendations prints result as the API JSON body or as boxed text.
func writeRecommendations(w io.Writer, subject *types.Profile, result *recommend.Result, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(result.Response(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal recommendations: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	printer := observability.NewPrinter(w)
	printer.PrintSubject(subject)
	printer.PrintRecommendations(result.Recommendations, result.Cached, result.Message)
	return nil
}
