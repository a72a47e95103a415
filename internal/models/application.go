// internal/models/application.go
package models

import (
	"strings"
	"time"
)

type ApplicationType string

const (
	ApplicationTypeUnset         ApplicationType = ""
	ApplicationTypeUndergraduate ApplicationType = "undergraduate"
	ApplicationTypePostgraduate  ApplicationType = "postgraduate"
)

func (t ApplicationType) Valid() bool {
	return t == ApplicationTypeUndergraduate || t == ApplicationTypePostgraduate
}

// Attachment is the metadata kept for an uploaded file. The bytes live with
// the upload collaborator; Ref is its opaque handle.
type Attachment struct {
	Name        string `json:"name" yaml:"name"`
	Size        int64  `json:"size" yaml:"size"`
	ContentType string `json:"contentType" yaml:"contentType"`
	Ref         string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

type PersonalInfo struct {
	Title                 string      `json:"title" yaml:"title"`
	Surname               string      `json:"surname" yaml:"surname"`
	FirstName             string      `json:"firstName" yaml:"firstName"`
	OtherNames            string      `json:"otherNames,omitempty" yaml:"otherNames,omitempty"`
	MaritalStatus         string      `json:"maritalStatus,omitempty" yaml:"maritalStatus,omitempty"`
	MaidenName            string      `json:"maidenName,omitempty" yaml:"maidenName,omitempty"`
	DateOfBirth           string      `json:"dateOfBirth" yaml:"dateOfBirth"`
	PlaceOfBirth          string      `json:"placeOfBirth,omitempty" yaml:"placeOfBirth,omitempty"`
	Nationality           string      `json:"nationality" yaml:"nationality"`
	CountryOfResidence    string      `json:"countryOfResidence" yaml:"countryOfResidence"`
	Gender                string      `json:"gender" yaml:"gender"`
	PassportPhoto         *Attachment `json:"passportPhoto,omitempty" yaml:"passportPhoto,omitempty"`
	CorrespondenceAddress string      `json:"correspondenceAddress" yaml:"correspondenceAddress"`
	TelephoneNumbers      string      `json:"telephoneNumbers" yaml:"telephoneNumbers"`
	EmailAddress          string      `json:"emailAddress" yaml:"emailAddress"`
	ShowPermanentAddress  bool        `json:"showPermanentAddress" yaml:"showPermanentAddress"`
	PermanentAddress      string      `json:"permanentAddress,omitempty" yaml:"permanentAddress,omitempty"`
}

// ProgramInfo holds up to four ranked programme choices.
type ProgramInfo struct {
	LevelOfStudy  string `json:"levelOfStudy" yaml:"levelOfStudy"`
	FirstChoice   string `json:"firstChoice" yaml:"firstChoice"`
	SecondChoice  string `json:"secondChoice,omitempty" yaml:"secondChoice,omitempty"`
	ThirdChoice   string `json:"thirdChoice,omitempty" yaml:"thirdChoice,omitempty"`
	FourthChoice  string `json:"fourthChoice,omitempty" yaml:"fourthChoice,omitempty"`
	MethodOfStudy string `json:"methodOfStudy,omitempty" yaml:"methodOfStudy,omitempty"`
}

// Choices returns the non-empty choices in rank order.
func (p ProgramInfo) Choices() []string {
	var out []string
	for _, c := range []string{p.FirstChoice, p.SecondChoice, p.ThirdChoice, p.FourthChoice} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

type SecondaryEducation struct {
	SchoolName      string      `json:"schoolName" yaml:"schoolName"`
	FromDate        string      `json:"fromDate" yaml:"fromDate"`
	ToDate          string      `json:"toDate" yaml:"toDate"`
	SubjectsStudied string      `json:"subjectsStudied" yaml:"subjectsStudied"`
	ExaminationYear string      `json:"examinationYear" yaml:"examinationYear"`
	ResultsYear     string      `json:"resultsYear" yaml:"resultsYear"`
	GradesAchieved  string      `json:"gradesAchieved" yaml:"gradesAchieved"`
	Certificate     *Attachment `json:"certificate,omitempty" yaml:"certificate,omitempty"`
}

type UniversityEducation struct {
	Institution   string      `json:"institution" yaml:"institution"`
	FromDate      string      `json:"fromDate" yaml:"fromDate"`
	ToDate        string      `json:"toDate" yaml:"toDate"`
	Programme     string      `json:"programme" yaml:"programme"`
	Qualification string      `json:"qualification" yaml:"qualification"`
	DateOfAward   string      `json:"dateOfAward" yaml:"dateOfAward"`
	ClassOfAward  string      `json:"classOfAward" yaml:"classOfAward"`
	Transcript    *Attachment `json:"transcript,omitempty" yaml:"transcript,omitempty"`
}

// Education keeps both branches; only the one matching the application type
// is edited, validated and submitted.
type Education struct {
	Secondary  SecondaryEducation  `json:"secondary" yaml:"secondary"`
	University UniversityEducation `json:"university" yaml:"university"`
}

type WorkExperience struct {
	FromDate     string `json:"fromDate" yaml:"fromDate"`
	ToDate       string `json:"toDate" yaml:"toDate"`
	Organization string `json:"organization" yaml:"organization"`
	Position     string `json:"position" yaml:"position"`
}

func (w WorkExperience) IsEmpty() bool {
	return w == WorkExperience{}
}

type Motivation struct {
	Essay      string      `json:"essay" yaml:"essay"`
	UploadNote bool        `json:"uploadNote" yaml:"uploadNote"`
	Note       *Attachment `json:"note,omitempty" yaml:"note,omitempty"`
}

type WorkAndMotivation struct {
	WorkExperience []WorkExperience `json:"workExperience" yaml:"workExperience"`
	Motivation     Motivation       `json:"motivation" yaml:"motivation"`
}

type SpecialNeeds struct {
	HasDisability bool   `json:"hasDisability" yaml:"hasDisability"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Referee struct {
	Name        string `json:"name" yaml:"name"`
	Position    string `json:"position" yaml:"position"`
	Institution string `json:"institution" yaml:"institution"`
	Address     string `json:"address" yaml:"address"`
	Email       string `json:"email" yaml:"email"`
}

// IsComplete reports whether all five contact fields are filled. Blank
// values do not count.
func (r Referee) IsComplete() bool {
	for _, v := range []string{r.Name, r.Position, r.Institution, r.Address, r.Email} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

type Declaration struct {
	Agreed               bool   `json:"agreed" yaml:"agreed"`
	FullName             string `json:"fullName" yaml:"fullName"`
	Date                 string `json:"date" yaml:"date"`
	AllSectionsCompleted bool   `json:"allSectionsCompleted" yaml:"allSectionsCompleted"`
	AllDocumentsUploaded bool   `json:"allDocumentsUploaded" yaml:"allDocumentsUploaded"`
	DepositSlipAttached  bool   `json:"depositSlipAttached" yaml:"depositSlipAttached"`
}

const (
	MinReferees = 2
	MaxReferees = 3
)

// ApplicationRecord is the aggregate edited by the wizard.
type ApplicationRecord struct {
	DraftID           string            `json:"draftId,omitempty" yaml:"draftId,omitempty"`
	ApplicationType   ApplicationType   `json:"applicationType" yaml:"applicationType"`
	Personal          PersonalInfo      `json:"personal" yaml:"personal"`
	Program           ProgramInfo       `json:"program" yaml:"program"`
	Education         Education         `json:"education" yaml:"education"`
	WorkAndMotivation WorkAndMotivation `json:"workAndMotivation" yaml:"workAndMotivation"`
	SpecialNeeds      SpecialNeeds      `json:"specialNeeds" yaml:"specialNeeds"`
	Referees          []Referee         `json:"referees" yaml:"referees"`
	Declaration       Declaration       `json:"declaration" yaml:"declaration"`
	CurrentStep       int               `json:"currentStep" yaml:"currentStep"`
	LastSavedAt       *time.Time        `json:"lastSavedAt,omitempty" yaml:"lastSavedAt,omitempty"`
}

// NewApplicationRecord returns the empty record a new application starts from.
func NewApplicationRecord() ApplicationRecord {
	return ApplicationRecord{
		Referees: make([]Referee, MinReferees),
		WorkAndMotivation: WorkAndMotivation{
			WorkExperience: []WorkExperience{},
		},
	}
}

// HasStepData reports whether anything beyond the type choice has been entered.
func (r ApplicationRecord) HasStepData() bool {
	empty := NewApplicationRecord()
	if r.Personal != empty.Personal || r.Program != empty.Program ||
		r.Education != empty.Education || r.SpecialNeeds != empty.SpecialNeeds ||
		r.Declaration != empty.Declaration {
		return true
	}
	if r.WorkAndMotivation.Motivation != empty.WorkAndMotivation.Motivation {
		return true
	}
	for _, w := range r.WorkAndMotivation.WorkExperience {
		if !w.IsEmpty() {
			return true
		}
	}
	for _, ref := range r.Referees {
		if ref != (Referee{}) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; slices and attachments are not shared.
func (r ApplicationRecord) Clone() ApplicationRecord {
	out := r
	out.Personal.PassportPhoto = cloneAttachment(r.Personal.PassportPhoto)
	out.Education.Secondary.Certificate = cloneAttachment(r.Education.Secondary.Certificate)
	out.Education.University.Transcript = cloneAttachment(r.Education.University.Transcript)
	out.WorkAndMotivation.Motivation.Note = cloneAttachment(r.WorkAndMotivation.Motivation.Note)

	out.WorkAndMotivation.WorkExperience = append([]WorkExperience{}, r.WorkAndMotivation.WorkExperience...)
	out.Referees = append([]Referee{}, r.Referees...)

	if r.LastSavedAt != nil {
		t := *r.LastSavedAt
		out.LastSavedAt = &t
	}
	return out
}

func cloneAttachment(a *Attachment) *Attachment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
