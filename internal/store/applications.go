package store

import (
	"context"
	"sort"

	"admission-portal/internal/models"
)

// ListApplications merges the user's open draft with their submissions,
// most recently touched first.
func ListApplications(ctx context.Context, drafts DraftReader, subs SubmissionRepository, userKey string) ([]models.ApplicationSummary, error) {
	out := []models.ApplicationSummary{}

	draft, err := drafts.Load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		out = append(out, models.ApplicationSummary{
			ID:                   draft.ID,
			Kind:                 "draft",
			ApplicationType:      draft.ApplicationType,
			ProgramTitle:         draft.ProgramTitle,
			Faculty:              draft.Faculty,
			Status:               draft.ListStatus(),
			CompletionPercentage: draft.CompletionPercentage,
			UpdatedAt:            draft.LastSavedAt,
		})
	}

	submitted, err := subs.List(ctx, models.SubmissionFilter{UserKey: userKey, Limit: 500})
	if err != nil {
		return nil, err
	}
	for _, s := range submitted {
		out = append(out, models.ApplicationSummary{
			ID:                   s.ApplicationID,
			Kind:                 "submission",
			ApplicationType:      s.ApplicationType,
			ProgramTitle:         s.ProgramTitle,
			Faculty:              s.Faculty,
			Status:               string(s.Status),
			CompletionPercentage: 100,
			UpdatedAt:            s.UpdatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
