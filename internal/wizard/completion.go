package wizard

import (
	"math"
	"strings"

	"admission-portal/internal/models"
)

// CompletionPercentage estimates how much of rec is filled in. It is a
// progress hint for the applicant's list, not a validity check.
func CompletionPercentage(rec models.ApplicationRecord) int {
	sections := []bool{
		rec.ApplicationType.Valid(),
		filled(rec.Personal.FirstName) && filled(rec.Personal.Surname) && filled(rec.Personal.EmailAddress),
		filled(rec.Program.FirstChoice),
	}
	if rec.ApplicationType == models.ApplicationTypePostgraduate {
		m := rec.WorkAndMotivation.Motivation
		sections = append(sections, filled(m.Essay) || (m.UploadNote && m.Note != nil))
	}
	hasReferee := false
	for _, r := range rec.Referees {
		if filled(r.Name) && filled(r.Email) {
			hasReferee = true
			break
		}
	}
	sections = append(sections, hasReferee)

	done := 0
	for _, ok := range sections {
		if ok {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(sections))))
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}
