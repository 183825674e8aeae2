// Package server implements the MCP (Model Context Protocol) server for mirror
// reflection analysis.
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client annotate
// reflections in a photograph of a mirror and ask whether the lines fit a
// planar or a spherical mirror.
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
// Session:
//   - mirror_load_image: Load an image and start a fresh session
//   - mirror_reset: Clear annotations, optionally switching hypothesis
//
// Annotation:
//   - mirror_add_segment: Add a segment to the open line collection
//   - mirror_undo_segment: Remove the last segment of the open collection
//   - mirror_start_group: Open a new line collection
//   - mirror_state: Current image, collections and fitted circle
//   - mirror_fit_circle: Fit and edge-refine the rim circle (spherical)
//
// Analysis:
//   - mirror_analyze: Rank cluster counts (planar) or measure center distances (spherical)
//   - mirror_render_overlay: Image with annotations as base64 PNG
//   - mirror_plot_candidates: Chart of the analysis as base64 PNG
//   - mirror_sample_intensity: Intensity the edge refiner sees at a pixel
//
// # Session
//
// A server holds exactly one session. Loading an image or switching the
// hypothesis discards all annotations. Analysis reports are cached until the
// next change to the annotations.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"type": <error kind>, "detail": <error string>}
//
// # Usage
//
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
