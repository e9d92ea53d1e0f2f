package formats

import "errors"

var (
	// ErrInvalidData indicates malformed or incomplete format data.
	ErrInvalidData = errors.New("formats: invalid data")

	// ErrNoEXIF is returned when a container carries no EXIF block.
	ErrNoEXIF = errors.New("formats: no EXIF data")
)
