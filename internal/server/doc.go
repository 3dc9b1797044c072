// Package server implements the MCP (Model Context Protocol) server for sheet scoring.
//
// This package provides a JSON-RPC 2.0 server that exposes the scoring
// pipeline, the answer-key store and the results ledger as MCP tools.
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
// Sheet Operations:
//   - omr_upload: File a photo by set, student and roll number
//   - omr_score: Detect and score a sheet, optionally recording the result
//   - omr_detect: Detect marked answers without scoring
//   - omr_standardize: Return the canonical canvas as PNG
//   - omr_annotate: Return the canvas with detections drawn on it
//
// Answer Keys:
//   - answer_key_create: Parse a pasted block and store it for a set
//   - answer_key_exists: Check for a stored key
//   - answer_key_sets: List stored sets
//
// Results:
//   - results_list: Read recorded results
//   - results_create_csv: Start a new ledger file
//   - results_csv_files: List ledger files
//
// # Image Caching
//
// Sheet photos are cached by path and reused across tool calls, so scoring
// and then annotating the same photo decodes it once. Re-uploading a sheet
// evicts the old entry.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
