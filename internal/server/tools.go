package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sheetProperties are shared by every tool that reads a sheet photo.
func sheetProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the sheet photo. Optional when student_name, roll_number and set identify an uploaded sheet",
		},
		"student_name": map[string]interface{}{
			"type":        "string",
			"description": "Student name",
		},
		"roll_number": map[string]interface{}{
			"type":        "string",
			"description": "Student roll number",
		},
		"set": map[string]interface{}{
			"type":        "string",
			"description": "Question-paper set name (e.g. A, B)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	scoreProps := sheetProperties()
	scoreProps["csv_filename"] = map[string]interface{}{
		"type":        "string",
		"description": "Ledger CSV in the upload directory. Default scores.csv",
	}
	scoreProps["record"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Append the result to the ledger. Default true when student_name is given",
	}

	return []Tool{
		// Sheet Operations
		{
			Name:        "omr_upload",
			Description: "File a sheet photo under the upload directory by set, student name and roll number so it can be scored by name later.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the photo to file",
					},
					"student_name": map[string]interface{}{
						"type":        "string",
						"description": "Student name",
					},
					"roll_number": map[string]interface{}{
						"type":        "string",
						"description": "Student roll number",
					},
					"set": map[string]interface{}{
						"type":        "string",
						"description": "Question-paper set name",
					},
				},
				"required": []string{"source_path", "student_name", "roll_number", "set"},
			},
		},
		{
			Name:        "omr_score",
			Description: "Detect the marked answers on a bubble-sheet photo and score them against the stored answer key for the set. Returns per-section scores, the total and the detected answers. Records the result when a student name is given.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scoreProps,
				"required":   []string{"set"},
			},
		},
		{
			Name:        "omr_detect",
			Description: "Detect the marked answers on a bubble-sheet photo without scoring. Returns section-wise answers and detection diagnostics (shape count, bubble count, warnings).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sheetProperties(),
			},
		},
		{
			Name:        "omr_standardize",
			Description: "Locate the bubble field in a photo and return it cropped and scaled onto the canonical canvas as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sheetProperties(),
			},
		},
		{
			Name:        "omr_annotate",
			Description: "Return the canonical canvas with every detected bubble outlined in its section colour, filled bubbles shaded and question numbers labelled. Use this to check why a sheet scored unexpectedly.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sheetProperties(),
			},
		},

		// Answer Keys
		{
			Name:        "answer_key_create",
			Description: "Parse a pasted answer-key block (section headers followed by lines like '1. a' or '2 - b, c') and store it for a set, replacing any existing key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"set": map[string]interface{}{
						"type":        "string",
						"description": "Question-paper set name",
					},
					"block": map[string]interface{}{
						"type":        "string",
						"description": "Answer-key text, one section header or answer per line",
					},
				},
				"required": []string{"set", "block"},
			},
		},
		{
			Name:        "answer_key_exists",
			Description: "Check whether an answer key is stored for a set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"set": map[string]interface{}{
						"type":        "string",
						"description": "Question-paper set name",
					},
				},
				"required": []string{"set"},
			},
		},
		{
			Name:        "answer_key_sets",
			Description: "List the sets that have a stored answer key.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Results
		{
			Name:        "results_list",
			Description: "List recorded results from the ledger.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"csv_filename": map[string]interface{}{
						"type":        "string",
						"description": "Ledger CSV to read. Default scores.csv",
					},
				},
			},
		},
		{
			Name:        "results_create_csv",
			Description: "Create a new, empty ledger CSV with the header row. Fails if the file exists.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "File name; .csv is appended when missing",
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "results_csv_files",
			Description: "List the ledger CSV files in the upload directory.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
