// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sync"

	"admission-portal/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

const attachmentSchema = `{
  "type": ["object", "null"],
  "required": ["name", "size", "contentType"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "size": {"type": "integer", "minimum": 0},
    "contentType": {"type": "string", "minLength": 1},
    "ref": {"type": "string"}
  }
}`

// draftSchema describes the JSON form of an application record. It checks
// shape only; step rules are applied by the wizard.
var draftSchema = fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["applicationType", "referees", "currentStep"],
  "properties": {
    "draftId": {"type": "string"},
    "applicationType": {"enum": ["", "undergraduate", "postgraduate"]},
    "currentStep": {"type": "integer", "minimum": 0, "maximum": 5},
    "personal": {
      "type": "object",
      "properties": {
        "dateOfBirth": {"type": "string"},
        "emailAddress": {"type": "string"},
        "showPermanentAddress": {"type": "boolean"},
        "passportPhoto": %[1]s
      }
    },
    "program": {"type": "object"},
    "education": {
      "type": "object",
      "properties": {
        "secondary": {"type": "object", "properties": {"certificate": %[1]s}},
        "university": {"type": "object", "properties": {"transcript": %[1]s}}
      }
    },
    "workAndMotivation": {
      "type": "object",
      "properties": {
        "workExperience": {
          "type": ["array", "null"],
          "items": {
            "type": "object",
            "properties": {
              "fromDate": {"type": "string"},
              "toDate": {"type": "string"},
              "organization": {"type": "string"},
              "position": {"type": "string"}
            }
          }
        },
        "motivation": {
          "type": "object",
          "properties": {
            "essay": {"type": "string"},
            "uploadNote": {"type": "boolean"},
            "note": %[1]s
          }
        }
      }
    },
    "specialNeeds": {
      "type": "object",
      "properties": {
        "hasDisability": {"type": "boolean"},
        "description": {"type": "string"}
      }
    },
    "referees": {
      "type": "array",
      "minItems": 2,
      "maxItems": 3,
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "position": {"type": "string"},
          "institution": {"type": "string"},
          "address": {"type": "string"},
          "email": {"type": "string"}
        }
      }
    },
    "declaration": {
      "type": "object",
      "properties": {
        "agreed": {"type": "boolean"},
        "allSectionsCompleted": {"type": "boolean"},
        "allDocumentsUploaded": {"type": "boolean"},
        "depositSlipAttached": {"type": "boolean"}
      }
    }
  }
}`, attachmentSchema)

var (
	compiledDraftSchema *gojsonschema.Schema
	compileOnce         sync.Once
	compileErr          error
)

func draftSchemaValidator() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledDraftSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(draftSchema))
	})
	return compiledDraftSchema, compileErr
}

// ValidateDraftPayload checks raw application-record JSON against the draft
// schema. It returns nil for a well-formed payload.
func ValidateDraftPayload(payload []byte) error {
	schema, err := draftSchemaValidator()
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("compile draft schema: %w", err))
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewInvalidPayloadError([]errors.FieldError{{
			Field:   "(root)",
			Code:    CodeInvalidFormat,
			Message: err.Error(),
		}})
	}
	if result.Valid() {
		return nil
	}

	fields := make([]errors.FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		fields = append(fields, errors.FieldError{
			Field:   re.Field(),
			Code:    schemaErrorCode(re.Type()),
			Message: re.Description(),
		})
	}
	return errors.NewInvalidPayloadError(fields)
}

func schemaErrorCode(t string) string {
	switch t {
	case "required":
		return CodeMissingRequired
	case "array_min_items", "array_max_items", "number_gte", "number_lte":
		return CodeOutOfRange
	default:
		return CodeInvalidFormat
	}
}
