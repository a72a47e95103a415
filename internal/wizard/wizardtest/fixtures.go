// Package wizardtest provides application records for tests outside the
// wizard package.
package wizardtest

import (
	"strings"

	"admission-portal/internal/models"
)

// Words returns a text of n words.
func Words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

// UndergraduateRecord passes every undergraduate step for an applicant born
// in 2004.
func UndergraduateRecord() models.ApplicationRecord {
	rec := models.NewApplicationRecord()
	rec.ApplicationType = models.ApplicationTypeUndergraduate
	rec.CurrentStep = 4
	rec.Personal = models.PersonalInfo{
		Title:                 "Ms",
		Surname:               "Banda",
		FirstName:             "Amina",
		DateOfBirth:           "2004-05-12",
		Nationality:           "Malawian",
		CountryOfResidence:    "Malawi",
		Gender:                "Female",
		CorrespondenceAddress: "P.O. Box 5196, Limbe",
		TelephoneNumbers:      "+265 999 123 456",
		EmailAddress:          "amina@example.com",
		PassportPhoto:         &models.Attachment{Name: "me.jpg", Size: 120_000, ContentType: "image/jpeg", Ref: "uploads/me.jpg"},
	}
	rec.Program = models.ProgramInfo{LevelOfStudy: "Undergraduate", FirstChoice: "Bachelor of Science in Computer Systems and Security"}
	rec.Education.Secondary = models.SecondaryEducation{
		SchoolName:      "Blantyre Secondary School",
		FromDate:        "2018-01-10",
		ToDate:          "2022-07-20",
		SubjectsStudied: "Mathematics, Physics, Chemistry, English",
		ExaminationYear: "2022",
		ResultsYear:     "2022",
		GradesAchieved:  "6 points",
	}
	rec.Referees = []models.Referee{
		{Name: "Mr Phiri", Position: "Head Teacher", Institution: "Blantyre Secondary School", Address: "P.O. Box 1, Blantyre", Email: "phiri@example.com"},
		{Name: "Mrs Mwale", Position: "Teacher", Institution: "Blantyre Secondary School", Address: "P.O. Box 1, Blantyre", Email: "mwale@example.com"},
	}
	rec.Declaration = models.Declaration{
		Agreed:               true,
		FullName:             "Amina Banda",
		Date:                 "2026-10-17",
		AllSectionsCompleted: true,
		AllDocumentsUploaded: true,
		DepositSlipAttached:  true,
	}
	return rec
}

// PostgraduateRecord passes every postgraduate step.
func PostgraduateRecord() models.ApplicationRecord {
	rec := UndergraduateRecord()
	rec.ApplicationType = models.ApplicationTypePostgraduate
	rec.CurrentStep = 5
	rec.Education.Secondary = models.SecondaryEducation{}
	rec.Program = models.ProgramInfo{LevelOfStudy: "Postgraduate", FirstChoice: "Master of Science in Climate Change"}
	rec.Education.University = models.UniversityEducation{
		Institution:   "University of Malawi",
		FromDate:      "2019-09-01",
		ToDate:        "2023-07-30",
		Programme:     "BSc Environmental Science",
		Qualification: "Bachelor of Science",
		DateOfAward:   "2023-12-01",
		ClassOfAward:  "Upper Second",
	}
	rec.WorkAndMotivation.Motivation.Essay = Words(350)
	return rec
}

// Submission wraps rec the way the wizard does on submit.
func Submission(applicationID, userKey string, rec models.ApplicationRecord) *models.Submission {
	first := rec.Program.FirstChoice
	return &models.Submission{
		ApplicationID:   applicationID,
		UserKey:         userKey,
		ApplicationType: rec.ApplicationType,
		Record:          rec,
		Status:          models.StatusSubmitted,
		ProgramTitle:    first,
		ProgramSlug:     models.ProgramSlug(first),
		Faculty:         models.FacultyForProgram(first),
	}
}
