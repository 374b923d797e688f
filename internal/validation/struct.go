package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()

	branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)
)

func init() {
	// Report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterValidation("branch", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || validBranchName(value)
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register branch validation: %v", err))
	}
}

// ValidateStruct checks a request DTO against its `validate` tags and reports
// failures as *ValidationErrors.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	v := New()
	for _, fe := range fieldErrs {
		v.errs.add(fe.Field(), fieldMessage(fe))
	}
	return v.Validate()
}

func validBranchName(name string) bool {
	return branchNamePattern.MatchString(name) && !strings.Contains(name, "..")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "branch":
		return fmt.Sprintf("%s must be a valid branch name", fe.Field())
	case "hexadecimal":
		return fmt.Sprintf("%s must be a commit hash", fe.Field())
	default:
		return fmt.Sprintf("%s failed on the '%s' tag", fe.Field(), fe.Tag())
	}
}
