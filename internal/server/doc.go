// Package server implements the MCP (Model Context Protocol) server for the
// circular marker tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the marker
// detection and pose estimation pipeline through the MCP protocol, so an
// MCP client can inspect still frames the same way the live viewer does.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_edge_detect: Canny edge map
//
// Marker Detection:
//   - marker_detect_contours: Closed edge contours
//   - marker_detect_ellipses: Filtered ellipse fits with a rejection report
//   - marker_detect_markers: Nested ellipse pairs
//   - marker_estimate_pose: Camera pose and model-view matrix per marker
//   - marker_detect_squares: Near-rectangular quadrilaterals
//
// Rendering:
//   - marker_overlay: Frame annotated with markers, outlines and axes
//   - marker_crop: Zoomed region around one marker
//
// Session:
//   - marker_settings: Active configuration
//
// Marker tools accept an optional placement that overrides the configured
// one for that call only.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// consecutive tools on the same frame decode it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A frame without a marker is not an error: detection tools report
// found=false with a message.
//
// # Usage
//
//	srv := server.New(cfg, server.WithDebug(debug))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
