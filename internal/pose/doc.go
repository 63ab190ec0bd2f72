// Package pose recovers the camera pose relative to a circular marker.
//
// A circle of known radius seen by a calibrated camera images as an ellipse.
// Lifted into the intrinsics-normalized frame, the ellipse becomes the cone
// of rays through the circle, and the eigenstructure of that cone's 3×3
// matrix fixes the circle's supporting plane up to a two-way ambiguity. The
// marker's Placement picks one branch. A second, offset circle fixes the
// in-plane axis.
//
// # Frames
//
//   - Camera frame: X toward the top of the image, Y toward the right, Z
//     along the optical axis. Intrinsics.Matrix maps it to pixels.
//   - Eye frame: X right, Y up, looking down −Z, as a renderer expects.
//     CameraPose is expressed in this frame and ModelView packs it
//     column-major.
//
// Frustum gives the matching perspective projection so that geometry drawn
// under ModelView lands on the marker's image.
//
// # Failures
//
// Every failure wraps ErrDegeneratePose, ErrInvalidPlacement or
// ErrInvalidRadius. None of them is fatal: a frame loop skips rendering for
// the affected marker and carries on.
package pose
