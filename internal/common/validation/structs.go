// internal/common/validation/structs.go
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"admission-portal/internal/common/errors"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names so errors line up with job variables.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct applies `validate` tags and converts failures to field errors.
func ValidateStruct(s interface{}) []errors.FieldError {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return []errors.FieldError{{Code: CodeInvalidInput, Message: err.Error()}}
	}

	out := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errors.FieldError{
			Field:   fe.Field(),
			Code:    tagCode(fe.Tag()),
			Message: tagMessage(fe),
		})
	}
	return out
}

func tagCode(tag string) string {
	switch tag {
	case "required", "required_if":
		return CodeMissingRequired
	case "oneof", "email", "uuid":
		return CodeInvalidFormat
	default:
		return CodeInvalidInput
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
