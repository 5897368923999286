// Package server implements the MCP (Model Context Protocol) server for one
// image editing session.
//
// The server exposes the editing surface as MCP tools: loading an image,
// switching the task tab, feeding pointer events into the mask drawing layer,
// exporting the binary mask and submitting work to the remote processing
// service. A browser front-end or an agent drives it; the server owns the
// session state.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// When a processing job finishes the server sends a notifications/message
// with the job id, task and final state.
//
// # Available Tools
//
// Image Input:
//   - image_load: Load the session image from a path or base64 upload
//   - image_dimensions: Get width and height
//
// Session State:
//   - session_set_tab: Select outpainting, inpainting or superresolution
//   - mask_set_mode: Select draw or erase
//
// Mask Drawing:
//   - pointer_map: Map a client position into image space
//   - pointer_event: Feed a mouse or touch down/move/up/leave event
//   - mask_stroke: Draw a polyline in image coordinates
//   - mask_clear: Erase the whole drawing layer
//   - mask_export: Export the binary mask as PNG
//   - mask_sample: Read drawing layer pixels
//   - canvas_composite: Render the image with the drawing overlaid
//
// Outpainting:
//   - outpaint_pixels: Convert direction and percentage to pixel counts
//   - outpaint_preview: Render the expanded canvas and its mask
//
// Processing:
//   - image_process: Submit the session to the processing service
//   - image_process_status: Report job state, optionally with the result
//   - image_use_result: Load the last result as the session image
//   - image_save_result: Write the last result as a PNG file
//
// Service:
//   - service_health: Query the processing service health
//   - service_models: List the tasks and models the service offers
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.Options{Service: remote.NewClient(endpoint)})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
