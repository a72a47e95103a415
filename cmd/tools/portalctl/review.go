package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/common/validation"
	rrd "admission-portal/internal/workers/admission/record-review-decision"
)

var reviewFlags struct {
	status   string
	comments string
	reviewer string
}

var reviewCmd = &cobra.Command{
	Use:   "review <applicationId>",
	Short: "Record a review decision for a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := &rrd.Input{
			ApplicationID: args[0],
			Decision:      reviewFlags.status,
			Comments:      reviewFlags.comments,
			Reviewer:      reviewFlags.reviewer,
		}
		if fields := validation.ValidateStruct(input); len(fields) > 0 {
			return errors.NewInvalidPayloadError(fields)
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		handler := rrd.NewHandler(rrd.LoadConfig(), s.backends.Submissions, s.obs, s.log)
		out, err := handler.Execute(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", input.ApplicationID, out.PreviousStatus, out.Status)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewFlags.status, "status", "s", "", "New status: review, accepted or rejected (required)")
	reviewCmd.Flags().StringVarP(&reviewFlags.comments, "comments", "m", "", "Reviewer comments")
	reviewCmd.Flags().StringVar(&reviewFlags.reviewer, "reviewer", "portalctl", "Reviewer name")
	_ = reviewCmd.MarkFlagRequired("status")
}
