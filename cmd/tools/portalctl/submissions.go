package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
	"admission-portal/internal/store"
)

var submissionsFlags struct {
	user    string
	status  string
	faculty string
	limit   int
	offset  int
}

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Aliases: []string{"subs"},
	Short:   "Inspect submitted applications",
}

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.SubmissionStatus(submissionsFlags.status)
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", submissionsFlags.status)
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		subs, err := s.backends.Submissions.List(cmd.Context(), models.SubmissionFilter{
			UserKey: submissionsFlags.user,
			Status:  status,
			Limit:   submissionsFlags.limit,
			Offset:  submissionsFlags.offset,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "APPLICATION\tTYPE\tSTATUS\tPROGRAMME\tSUBMITTED")
		for _, sub := range subs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				sub.ApplicationID, sub.ApplicationType, sub.Status, sub.ProgramTitle,
				sub.SubmittedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var submissionsShowCmd = &cobra.Command{
	Use:   "show <applicationId>",
	Short: "Show one submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		sub, err := s.backends.Submissions.GetByApplicationID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rootFlags.output, sub)
	},
}

var submissionsSearchCmd = &cobra.Command{
	Use:   "search [text...]",
	Short: "Full-text search over the submissions index",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if s.backends.Index == nil {
			return errors.NewPreconditionError("search", "Elasticsearch is not configured")
		}
		res, err := s.backends.Index.Search(cmd.Context(), store.SearchQuery{
			Text:    strings.Join(args, " "),
			Status:  submissionsFlags.status,
			Faculty: submissionsFlags.faculty,
			From:    submissionsFlags.offset,
			Size:    submissionsFlags.limit,
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rootFlags.output, res)
	},
}

var submissionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.backends.Submissions.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rootFlags.output, stats)
	},
}

var applicationsFlags struct {
	user string
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List a user's draft and submissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		apps, err := store.ListApplications(cmd.Context(), s.backends.Drafts, s.backends.Submissions, applicationsFlags.user)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tPROGRAMME\tCOMPLETE\tUPDATED")
		for _, a := range apps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
				a.ID, a.Kind, a.Status, a.ProgramTitle, a.CompletionPercentage,
				a.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	submissionsCmd.PersistentFlags().StringVar(&submissionsFlags.status, "status", "", "Filter by status")
	submissionsCmd.PersistentFlags().IntVar(&submissionsFlags.limit, "limit", 50, "Maximum rows")
	submissionsCmd.PersistentFlags().IntVar(&submissionsFlags.offset, "offset", 0, "Rows to skip")
	submissionsListCmd.Flags().StringVarP(&submissionsFlags.user, "user", "u", "", "Filter by applicant user key")
	submissionsSearchCmd.Flags().StringVar(&submissionsFlags.faculty, "faculty", "", "Filter by faculty")

	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsShowCmd)
	submissionsCmd.AddCommand(submissionsSearchCmd)
	submissionsCmd.AddCommand(submissionsStatsCmd)

	applicationsCmd.Flags().StringVarP(&applicationsFlags.user, "user", "u", "", "Applicant user key (required)")
	_ = applicationsCmd.MarkFlagRequired("user")
}
