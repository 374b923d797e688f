package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	httpGitURLPattern = regexp.MustCompile(`^https?://[^/]+/.+$`)
	sshGitURLPattern  = regexp.MustCompile(`^git@[^:]+:.+$|^ssh://git@[^/]+/.+$`)
)

// ValidationError is a single failed field check
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed check of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return ve.Errors[0].Message
	}
	return fmt.Sprintf("validation failed with %d errors", len(ve.Errors))
}

func (ve *ValidationErrors) add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// Validator checks query parameters and values that struct tags cannot
// express. Checks chain and failures accumulate until Validate.
type Validator struct {
	errs ValidationErrors
}

func New() *Validator {
	return &Validator{errs: ValidationErrors{Errors: []ValidationError{}}}
}

// GitURL accepts http(s) remotes and scp-style or ssh:// remotes
func (v *Validator) GitURL(field, value string) *Validator {
	if value == "" {
		return v
	}
	if !httpGitURLPattern.MatchString(value) && !sshGitURLPattern.MatchString(value) {
		v.errs.add(field, fmt.Sprintf("%s must be a valid Git repository URL (HTTP(S) or SSH)", field))
	}
	return v
}

// Branch applies the same rule as the "branch" struct tag
func (v *Validator) Branch(field, value string) *Validator {
	if value != "" && !validBranchName(value) {
		v.errs.add(field, fmt.Sprintf("%s must be a valid branch name", field))
	}
	return v
}

// Fraction requires 0 < value <= 1
func (v *Validator) Fraction(field string, value float64) *Validator {
	if value <= 0 || value > 1 {
		v.errs.add(field, fmt.Sprintf("%s must be a number in (0, 1]", field))
	}
	return v
}

func (v *Validator) InRange(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errs.add(field, fmt.Sprintf("%s must be between %d and %d", field, min, max))
	}
	return v
}

func (v *Validator) GreaterThan(field string, value, min int) *Validator {
	if value <= min {
		v.errs.add(field, fmt.Sprintf("%s must be greater than %d", field, min))
	}
	return v
}

func (v *Validator) GreaterThanOrEqual(field string, value, min int) *Validator {
	if value < min {
		v.errs.add(field, fmt.Sprintf("%s must be greater than or equal to %d", field, min))
	}
	return v
}

// OneOf ignores empty values; callers apply their default first
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errs.add(field, fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")))
	return v
}

// Custom records fn's error, if any, against field
func (v *Validator) Custom(field string, fn func() error) *Validator {
	if err := fn(); err != nil {
		v.errs.add(field, err.Error())
	}
	return v
}

// Validate returns *ValidationErrors when any check failed
func (v *Validator) Validate() error {
	if len(v.errs.Errors) > 0 {
		return &v.errs
	}
	return nil
}
