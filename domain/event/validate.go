package event

import (
	"conference-lab/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate rejects events missing a field required to apply them.
// The returned error wraps errors.ErrMalformedEvent.
func Validate(e Event) error {
	if e == nil {
		return fmt.Errorf("%w: nil event", errors.ErrMalformedEvent)
	}
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrMalformedEvent, e.Kind(), err)
	}
	return nil
}
