package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
	"admission-portal/internal/wizard"
)

var draftFlags struct {
	user     string
	file     string
	draftID  string
	noReview bool
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Save, show and submit application drafts",
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a YAML application record as the user's draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(draftFlags.file)
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		w := s.newWizard(draftFlags.user)
		// Keep the existing draft id so the save overwrites it.
		if _, err := w.LoadDraft(cmd.Context()); err != nil {
			return err
		}
		if rec.DraftID == "" {
			rec.DraftID = w.Record().DraftID
		}
		w.Restore(rec)

		draft, err := w.SaveDraft(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "saved %s (%s, %d%% complete)\n", draft.ID, draft.ListStatus(), draft.CompletionPercentage)
		printStepValidity(out, w)
		return nil
	},
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the user's draft, or a draft by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		var draft *models.Draft
		if draftFlags.draftID != "" {
			draft, err = s.backends.Drafts.LoadByID(cmd.Context(), draftFlags.draftID)
			if err == nil && draft != nil && draft.UserKey != draftFlags.user {
				draft = nil
			}
		} else {
			draft, err = s.backends.Drafts.Load(cmd.Context(), draftFlags.user)
		}
		if err != nil {
			return errors.NewDraftLoadFailedError(err)
		}
		if draft == nil {
			id := draftFlags.draftID
			if id == "" {
				id = "for user " + draftFlags.user
			}
			return errors.NewDraftNotFoundError(id)
		}
		return render(cmd.OutOrStdout(), rootFlags.output, draft)
	},
}

var draftSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate every step of the user's draft and submit it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		var opts []wizard.Option
		if !draftFlags.noReview {
			starter, closeStarter := s.reviewStarter()
			defer closeStarter()
			if starter != nil {
				opts = append(opts, wizard.WithSubmissionHook(starter))
			}
		}

		w := s.newWizard(draftFlags.user, opts...)
		found, err := w.LoadDraft(cmd.Context())
		if err != nil {
			return err
		}
		if !found {
			return errors.NewDraftNotFoundError("for user " + draftFlags.user)
		}

		out := cmd.OutOrStdout()
		if err := walkSteps(out, w); err != nil {
			return err
		}

		sub, err := w.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "submitted %s (%s, %s)\n", sub.ApplicationID, sub.ProgramTitle, sub.Faculty)
		return nil
	},
}

func init() {
	draftCmd.PersistentFlags().StringVarP(&draftFlags.user, "user", "u", "", "Applicant user key (required)")
	_ = draftCmd.MarkPersistentFlagRequired("user")

	draftSaveCmd.Flags().StringVarP(&draftFlags.file, "file", "f", "", "YAML record file, or - for stdin (required)")
	_ = draftSaveCmd.MarkFlagRequired("file")
	draftShowCmd.Flags().StringVar(&draftFlags.draftID, "id", "", "Draft id (default: the user's draft)")
	draftSubmitCmd.Flags().BoolVar(&draftFlags.noReview, "no-review", false, "Do not start the review process")

	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftSubmitCmd)
}

func (s *session) newWizard(userKey string, extra ...wizard.Option) *wizard.Wizard {
	identity := models.Identity{UserKey: userKey, Authenticated: userKey != ""}
	opts := []wizard.Option{
		wizard.WithPolicy(wizard.PolicyFromConfig(s.cfg.Wizard)),
		wizard.WithLogger(s.log),
		wizard.WithIDGenerator(s.backends.IDs),
		wizard.WithObserver(s.obs),
	}
	opts = append(opts, extra...)
	return wizard.New(identity, s.backends.Drafts, s.backends.Submissions, opts...)
}

func printStepValidity(out io.Writer, w *wizard.Wizard) {
	for n := 1; n <= w.TotalSteps(); n++ {
		mark := "ok"
		if !w.IsStepValid(n) {
			mark = "incomplete"
		}
		fmt.Fprintf(out, "  %d. %-30s %s\n", n, w.StepTitle(n), mark)
	}
}

// walkSteps advances from the draft's current step to the last one, the way
// the applicant would, and stops at the first step that does not validate.
func walkSteps(out io.Writer, w *wizard.Wizard) error {
	if w.TotalSteps() == 0 {
		return errors.NewPreconditionError("submit", "Select an application type first")
	}
	for w.CurrentStep() < w.TotalSteps() {
		n := w.CurrentStep()
		if err := w.Advance(); err != nil {
			if se, ok := errors.AsStandard(err); ok && len(se.Fields) > 0 {
				fmt.Fprintf(out, "step %d (%s) is incomplete:\n%s\n", n, w.StepTitle(n), formatFieldErrors(se.Fields))
			}
			return err
		}
	}
	return nil
}
