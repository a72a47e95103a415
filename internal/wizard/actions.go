package wizard

import (
	"fmt"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
)

// Action is one user intent applied to the record by Reduce.
type Action interface {
	name() string
}

type (
	SelectType struct{ Type models.ApplicationType }
	Reset      struct{}
	Advance    struct{}
	Retreat    struct{}

	SetPersonal            struct{ Personal models.PersonalInfo }
	SetProgram             struct{ Program models.ProgramInfo }
	SetSecondaryEducation  struct{ Secondary models.SecondaryEducation }
	SetUniversityEducation struct{ University models.UniversityEducation }
	SetMotivation          struct{ Motivation models.Motivation }
	SetSpecialNeeds        struct{ SpecialNeeds models.SpecialNeeds }
	SetDeclaration         struct{ Declaration models.Declaration }

	AddWorkExperience    struct{}
	UpdateWorkExperience struct {
		Index int
		Entry models.WorkExperience
	}
	RemoveWorkExperience struct{ Index int }

	AddReferee    struct{}
	UpdateReferee struct {
		Index   int
		Referee models.Referee
	}
	RemoveReferee struct{ Index int }

	Attach struct {
		Slot       Slot
		Attachment models.Attachment
	}
	Detach struct{ Slot Slot }
)

func (SelectType) name() string             { return "select_type" }
func (Reset) name() string                  { return "reset" }
func (Advance) name() string                { return "advance" }
func (Retreat) name() string                { return "retreat" }
func (SetPersonal) name() string            { return "set_personal" }
func (SetProgram) name() string             { return "set_program" }
func (SetSecondaryEducation) name() string  { return "set_secondary_education" }
func (SetUniversityEducation) name() string { return "set_university_education" }
func (SetMotivation) name() string          { return "set_motivation" }
func (SetSpecialNeeds) name() string        { return "set_special_needs" }
func (SetDeclaration) name() string         { return "set_declaration" }
func (AddWorkExperience) name() string      { return "add_work_experience" }
func (UpdateWorkExperience) name() string   { return "update_work_experience" }
func (RemoveWorkExperience) name() string   { return "remove_work_experience" }
func (AddReferee) name() string             { return "add_referee" }
func (UpdateReferee) name() string          { return "update_referee" }
func (RemoveReferee) name() string          { return "remove_referee" }
func (Attach) name() string                 { return "attach" }
func (Detach) name() string                 { return "detach" }

// Reduce applies action to rec and returns the new record. rec itself is
// never modified; on error the returned record equals rec.
func Reduce(rec models.ApplicationRecord, action Action, env Env) (models.ApplicationRecord, error) {
	next := rec.Clone()
	if err := apply(&next, action, env); err != nil {
		return rec, err
	}
	return next, nil
}

func apply(rec *models.ApplicationRecord, action Action, env Env) error {
	switch a := action.(type) {
	case SelectType:
		return selectType(rec, a.Type)
	case Reset:
		fresh := models.NewApplicationRecord()
		fresh.DraftID = rec.DraftID
		fresh.LastSavedAt = rec.LastSavedAt
		*rec = fresh
		return nil
	case Advance:
		return advance(rec, env)
	case Retreat:
		if rec.CurrentStep > 1 {
			rec.CurrentStep--
		}
		return nil
	}

	if !rec.ApplicationType.Valid() {
		return errors.NewPreconditionError(action.name(), "Select an application type first")
	}

	switch a := action.(type) {
	case SetPersonal:
		a.Personal.PassportPhoto = rec.Personal.PassportPhoto
		if !a.Personal.ShowPermanentAddress {
			a.Personal.PermanentAddress = ""
		}
		rec.Personal = a.Personal
	case SetProgram:
		rec.Program = a.Program
	case SetSecondaryEducation:
		if rec.ApplicationType != models.ApplicationTypeUndergraduate {
			return errors.NewPreconditionError(action.name(), "Secondary education applies to undergraduate applications only")
		}
		a.Secondary.Certificate = rec.Education.Secondary.Certificate
		rec.Education.Secondary = a.Secondary
	case SetUniversityEducation:
		if rec.ApplicationType != models.ApplicationTypePostgraduate {
			return errors.NewPreconditionError(action.name(), "University education applies to postgraduate applications only")
		}
		a.University.Transcript = rec.Education.University.Transcript
		rec.Education.University = a.University
	case SetMotivation:
		if rec.ApplicationType != models.ApplicationTypePostgraduate {
			return errors.NewPreconditionError(action.name(), "Motivation applies to postgraduate applications only")
		}
		a.Motivation.Note = rec.WorkAndMotivation.Motivation.Note
		rec.WorkAndMotivation.Motivation = a.Motivation
	case SetSpecialNeeds:
		if !a.SpecialNeeds.HasDisability {
			a.SpecialNeeds.Description = ""
		}
		rec.SpecialNeeds = a.SpecialNeeds
	case SetDeclaration:
		rec.Declaration = a.Declaration
	case AddWorkExperience:
		if rec.ApplicationType != models.ApplicationTypePostgraduate {
			return errors.NewPreconditionError(action.name(), "Work experience applies to postgraduate applications only")
		}
		rec.WorkAndMotivation.WorkExperience = append(rec.WorkAndMotivation.WorkExperience, models.WorkExperience{})
	case UpdateWorkExperience:
		if err := checkIndex(action, a.Index, len(rec.WorkAndMotivation.WorkExperience)); err != nil {
			return err
		}
		rec.WorkAndMotivation.WorkExperience[a.Index] = a.Entry
	case RemoveWorkExperience:
		if err := checkIndex(action, a.Index, len(rec.WorkAndMotivation.WorkExperience)); err != nil {
			return err
		}
		entries := rec.WorkAndMotivation.WorkExperience
		rec.WorkAndMotivation.WorkExperience = append(entries[:a.Index:a.Index], entries[a.Index+1:]...)
	case AddReferee:
		if len(rec.Referees) >= models.MaxReferees {
			return errors.NewPreconditionError(action.name(), fmt.Sprintf("No more than %d referees can be added", models.MaxReferees))
		}
		rec.Referees = append(rec.Referees, models.Referee{})
	case UpdateReferee:
		if err := checkIndex(action, a.Index, len(rec.Referees)); err != nil {
			return err
		}
		rec.Referees[a.Index] = a.Referee
	case RemoveReferee:
		if len(rec.Referees) <= models.MinReferees {
			return errors.NewPreconditionError(action.name(), fmt.Sprintf("At least %d referees are required", models.MinReferees))
		}
		if err := checkIndex(action, a.Index, len(rec.Referees)); err != nil {
			return err
		}
		rec.Referees = append(rec.Referees[:a.Index:a.Index], rec.Referees[a.Index+1:]...)
	case Attach:
		target, ok := attachmentTarget(rec, a.Slot)
		if target == nil || !ok {
			return errors.NewAttachmentRejectedError(string(a.Slot), "slot does not apply to this application")
		}
		if err := CheckAttachment(a.Slot, a.Attachment, env.Policy); err != nil {
			return err
		}
		att := a.Attachment
		*target = &att
	case Detach:
		target, _ := attachmentTarget(rec, a.Slot)
		if target == nil {
			return errors.NewAttachmentRejectedError(string(a.Slot), "unknown attachment slot")
		}
		*target = nil
	default:
		return errors.NewPreconditionError(action.name(), "unsupported action")
	}
	return nil
}

func selectType(rec *models.ApplicationRecord, t models.ApplicationType) error {
	if !t.Valid() {
		return errors.NewPreconditionError("select_type", fmt.Sprintf("unknown application type %q", t))
	}
	if rec.ApplicationType == t {
		return nil
	}
	if rec.HasStepData() {
		return errors.NewPreconditionError("select_type", "Reset the application before changing its type")
	}
	rec.ApplicationType = t
	rec.CurrentStep = 1
	return nil
}

func advance(rec *models.ApplicationRecord, env Env) error {
	if !rec.ApplicationType.Valid() {
		return errors.NewPreconditionError("advance", "Select an application type first")
	}
	step, ok := StepAt(rec.ApplicationType, rec.CurrentStep)
	if !ok {
		return errors.NewPreconditionError("advance", fmt.Sprintf("step %d is out of range", rec.CurrentStep))
	}
	if fields := ValidateStep(*rec, step, env); len(fields) > 0 {
		return errors.NewValidationFailedError(string(step), fields)
	}
	if rec.CurrentStep < TotalSteps(rec.ApplicationType) {
		rec.CurrentStep++
	}
	return nil
}

func checkIndex(action Action, i, n int) error {
	if i < 0 || i >= n {
		return errors.NewPreconditionError(action.name(), fmt.Sprintf("index %d is out of range", i))
	}
	return nil
}
