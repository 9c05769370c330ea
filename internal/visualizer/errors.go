package visualizer

import "errors"

// InputError marks a client-input problem detected before any external call:
// missing files, unknown material ids, violated mode invariants. Handlers map
// it to HTTP 400; everything else is a processing failure and maps to 500.
type InputError struct {
	Message string
	Details map[string]any
}

func (e *InputError) Error() string {
	return e.Message
}

// AsInputError unwraps err into an *InputError when it is one.
func AsInputError(err error) (*InputError, bool) {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// ErrNoOutput reports that the provider answered but produced nothing usable.
var ErrNoOutput = errors.New("no output generated")
