package silhouette

import "errors"

var (
	// ErrEmptyMask is returned for a mask with no pixels.
	ErrEmptyMask = errors.New("silhouette: empty mask")

	// ErrShape is returned when mask dimensions and data disagree.
	ErrShape = errors.New("silhouette: mask shape mismatch")
)
