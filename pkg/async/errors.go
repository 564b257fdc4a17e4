package async

import "errors"

var ErrPanic = errors.New("async: function panicked")

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
