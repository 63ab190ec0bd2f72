package pose

import "errors"

var (
	// ErrDegeneratePose is returned when the conic eigenstructure or the
	// back-projected circle centres do not determine a pose. The frame
	// should skip rendering for that marker.
	ErrDegeneratePose = errors.New("degenerate pose")

	// ErrInvalidPlacement is returned for a placement outside {0, 1}.
	ErrInvalidPlacement = errors.New("invalid marker placement")

	// ErrInvalidRadius is returned for a non-positive physical radius.
	ErrInvalidRadius = errors.New("invalid marker radius")
)
