package trial

import "github.com/copyleftdev/trialcore/internal/errors"

const component = "trial"

// Error kinds returned by this package. Select on them with errors.Is.
var (
	ErrValidation error = errors.KindValidation
	ErrType       error = errors.KindType
	ErrValue      error = errors.KindValue
)

func validationError(op, format string, args ...interface{}) error {
	return errors.Validation(op, format, args...).WithComponent(component)
}

func typeError(op, format string, args ...interface{}) error {
	return errors.Type(op, format, args...).WithComponent(component)
}

func valueError(op, format string, args ...interface{}) error {
	return errors.Value(op, format, args...).WithComponent(component)
}
