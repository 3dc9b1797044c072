package omr

import (
	"errors"

	"github.com/ironsheep/omr-scorer/internal/detection"
)

// Errors returned by the pipeline. All are terminal for the request; wrap
// checks use errors.Is.
var (
	// ErrUnreadableImage: the input bytes are not a decodable image.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrGridNotFound: too few bubble-like shapes to locate the answer field.
	ErrGridNotFound = detection.ErrGridNotFound

	// ErrMisalignedGrid: the detected bubble count does not fill the grid
	// exactly. Only returned in strict mode; otherwise assignment is
	// best-effort and the mismatch is reported as a warning.
	ErrMisalignedGrid = errors.New("misaligned bubble grid")

	// ErrInvalidLayout: a Layout failed validation.
	ErrInvalidLayout = errors.New("invalid layout")
)
