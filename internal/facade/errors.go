package facade

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// InputError wraps a validation or resolution failure that is the
// caller's fault: a malformed request, or neither an identifier nor a
// description supplied.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("facade: invalid input %q: %s", e.Field, e.Reason)
}

// DataSourceError wraps an unreachable reference store or curve.
type DataSourceError struct {
	Source string
	Cause  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("facade: data source %q unavailable: %v", e.Source, e.Cause)
}
func (e *DataSourceError) Unwrap() error { return e.Cause }

// ErrUnresolved means the resolver could not produce a BondSpec at all.
var ErrUnresolved = errors.New("facade: could not resolve a bond from the supplied identifier/description")

var validate = validator.New()

// validateStruct runs go-playground/validator and translates the first
// failing field into an *InputError, the way abdoElHodaky/tradSys's
// HTTP layer turns validator.ValidationErrors into a single client-
// facing message rather than exposing the raw error stack.
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &InputError{Field: fe.Field(), Reason: "failed validation: " + fe.Tag()}
		}
		return &InputError{Field: "request", Reason: err.Error()}
	}
	return nil
}
