package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/founder-match/internal/server"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a member",
	Long:  "Sign a JWT whose user_id claim is the given profile ID, for local testing of the API.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Profile ID to issue the token for (required)")
	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	subjectID, err := uuid.Parse(tokenSubject)
	if err != nil {
		return fmt.Errorf("invalid subject ID %q: %w", tokenSubject, err)
	}
	if err := cfg.JWT.Validate(); err != nil {
		return err
	}

	token, err := server.NewJWTService(&cfg.JWT).GenerateToken(subjectID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
