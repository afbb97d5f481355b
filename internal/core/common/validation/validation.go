package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	errors "github.com/frahmantamala/employee-management/internal"
)

const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Enter a valid email address."
	MsgInvalidDate  = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var tagValidator = validator.New(validator.WithRequiredStructEnabled())

type ValidatorFunc func(interface{}) *errors.ValidationError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.ValidationError {
	return &errors.ValidationError{Field: fv.FieldName, Message: message, Code: string(code)}
}

// stringValue unwraps string and *string; ok is false for a nil pointer or
// any other type.
func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return fv.fail(MsgRequired, errors.ErrCodeRequired)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return fv.fail(MsgRequired, errors.ErrCodeRequired)
			}
		case int64:
			if v == 0 {
				return fv.fail(MsgRequired, errors.ErrCodeRequired)
			}
		case *int64:
			if v == nil {
				return fv.fail(MsgRequired, errors.ErrCodeRequired)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if s, ok := stringValue(value); ok && utf8.RuneCountInString(s) > max {
			return fv.fail(fmt.Sprintf("Ensure this field has no more than %d characters.", max), errors.ErrCodeMaxLength)
		}
		return nil
	})
	return fv
}

// Matches rejects non-empty values that do not match re.
func (fv *FieldValidator) Matches(re *regexp.Regexp, message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if s, ok := stringValue(value); ok && s != "" && !re.MatchString(s) {
			return fv.fail(message, errors.ErrCodeInvalid)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if s, ok := stringValue(value); ok && s != "" && !IsEmail(s) {
			return fv.fail(MsgInvalidEmail, errors.ErrCodeInvalid)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(choices ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		s, ok := stringValue(value)
		if !ok || s == "" {
			return nil
		}
		for _, c := range choices {
			if s == c {
				return nil
			}
		}
		return fv.fail(fmt.Sprintf("%q is not a valid choice.", s), errors.ErrCodeInvalidChoice)
	})
	return fv
}

// Date rejects non-empty values that are not YYYY-MM-DD.
func (fv *FieldValidator) Date() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.ValidationError {
		if s, ok := stringValue(value); ok && s != "" {
			if _, err := time.Parse(DateLayout, s); err != nil {
				return fv.fail(MsgInvalidDate, errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(fn func(interface{}) *errors.ValidationError) *FieldValidator {
	fv.Validators = append(fv.Validators, fn)
	return fv
}

// Validate runs every field and reports the first failure per field.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var details errors.ValidationErrors
	for _, field := range v.fields {
		for _, fn := range field.Validators {
			if fe := fn(field.Value); fe != nil {
				details.Errors = append(details.Errors, *fe)
				break
			}
		}
	}
	if details.HasErrors() {
		return errors.NewValidationErrors(details)
	}
	return nil
}

func IsEmail(s string) bool {
	return tagValidator.Var(s, "email") == nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Merge folds several validation results into one; nil when all are nil.
func Merge(errs ...*errors.AppError) *errors.AppError {
	var details errors.ValidationErrors
	for _, e := range errs {
		if e == nil {
			continue
		}
		if d, ok := e.Details.(errors.ValidationErrors); ok {
			details.Errors = append(details.Errors, d.Errors...)
		}
	}
	if details.HasErrors() {
		return errors.NewValidationErrors(details)
	}
	return nil
}
