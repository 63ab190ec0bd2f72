// Package imaging turns image files into the inputs of marker detection and
// renders detections back onto images.
//
// EdgeMap and BoundaryMap produce [y][x] edge grids that
// detection.TraceContours walks into ordered contours. The overlay helpers
// draw discs, lines, polylines and small numeric labels with clipping, and
// EncodeImage packs results as base64 PNG for the MCP server.
//
// Pixel coordinates are 0-based with the origin at the top-left, X to the
// right and Y downward. ImageCache is safe for concurrent use; the other
// functions are stateless.
package imaging
