package errs

import (
	"github.com/cockroachdb/errors/withstack"
)

// PublicError carries a message that can be shown to API clients as is.
// The wrapped error still decides the response status.
type PublicError struct {
	err     error
	message string
}

func (p *PublicError) Error() string {
	return p.err.Error()
}

func (p *PublicError) Message() string {
	return p.message
}

func (p *PublicError) Unwrap() error {
	return p.err
}

// WithPublicMessage attaches a client facing message to err. A nil err stays nil.
func WithPublicMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: message}, 1)
}
