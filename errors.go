package imgcore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the bytes are not a recognised
	// image and the file name does not name an image type either.
	ErrUnsupportedFormat = errors.New("imgcore: unsupported format")

	// ErrInvalidSource is returned when the provided data source cannot be read.
	ErrInvalidSource = errors.New("imgcore: invalid source")

	// ErrInvalidParams is returned for render parameters that cannot be used.
	ErrInvalidParams = errors.New("imgcore: invalid render parameters")

	// ErrInvalidTransport is returned when a transport string is malformed.
	ErrInvalidTransport = errors.New("imgcore: invalid transport string")
)

func errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
