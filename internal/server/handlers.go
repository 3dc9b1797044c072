package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/ironsheep/omr-scorer/internal/answerkey"
	"github.com/ironsheep/omr-scorer/internal/imaging"
	"github.com/ironsheep/omr-scorer/internal/ledger"
	"github.com/ironsheep/omr-scorer/internal/omr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_score", "answer_key_create").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.cfg.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Sheet Operations
	case "omr_upload":
		return s.handleUpload(args)
	case "omr_score":
		return s.handleScore(ctx, args)
	case "omr_detect":
		return s.handleDetect(ctx, args)
	case "omr_standardize":
		return s.handleStandardize(args)
	case "omr_annotate":
		return s.handleAnnotate(ctx, args)

	// Answer Keys
	case "answer_key_create":
		return s.handleAnswerKeyCreate(args)
	case "answer_key_exists":
		return s.handleAnswerKeyExists(args)
	case "answer_key_sets":
		return s.handleAnswerKeySets()

	// Results
	case "results_list":
		return s.handleResultsList(ctx, args)
	case "results_create_csv":
		return s.handleResultsCreateCSV(args)
	case "results_csv_files":
		return s.handleResultsCSVFiles()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// ledgerFor returns the configured database ledger, or the CSV file named
// csvName in the upload directory.
func (s *Server) ledgerFor(csvName string) (ledger.Ledger, string) {
	if s.db != nil {
		return s.db, "database"
	}
	path := s.cfg.ResultsPath(csvName)
	return ledger.NewCSV(path, s.cfg.Layout.SectionNames()), filepath.Base(path)
}

// === Sheet Handlers ===

type uploadArgs struct {
	SourcePath  string `json:"source_path"`
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	Set         string `json:"set"`
}

func (s *Server) handleUpload(args json.RawMessage) (interface{}, error) {
	var a uploadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := os.Open(a.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	path, err := s.uploads.Save(a.StudentName, a.RollNumber, a.Set, filepath.Ext(a.SourcePath), f)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	return map[string]interface{}{
		"omr_path": path,
		"filename": filepath.Base(path),
	}, nil
}

// sheetArgs locates a sheet either by path or by student, roll and set.
type sheetArgs struct {
	Path        string `json:"path"`
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	Set         string `json:"set"`
}

func (s *Server) resolvePath(a sheetArgs) (string, error) {
	if a.Path != "" {
		return a.Path, nil
	}
	if a.StudentName == "" || a.RollNumber == "" || a.Set == "" {
		return "", errors.New("either path or student_name, roll_number and set are required")
	}
	return s.uploads.Find(a.StudentName, a.RollNumber, a.Set)
}

// sheetImage resolves and decodes a sheet through the cache.
func (s *Server) sheetImage(a sheetArgs) (image.Image, error) {
	path, err := s.resolvePath(a)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		if errors.Is(err, imaging.ErrUndecodable) {
			return nil, fmt.Errorf("%w: %v", omr.ErrUnreadableImage, err)
		}
		return nil, err
	}
	return img, nil
}

func (s *Server) detect(ctx context.Context, a sheetArgs) (*omr.Detection, error) {
	img, err := s.sheetImage(a)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Detect(ctx, img)
}

type scoreArgs struct {
	sheetArgs
	CSVFilename string `json:"csv_filename"`
	// Record defaults to true when a student name is given.
	Record *bool `json:"record"`
}

func (s *Server) handleScore(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scoreArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	set, err := answerkey.CanonicalSet(a.Set)
	if err != nil {
		return nil, err
	}
	key, err := s.keys.Load(set)
	if err != nil {
		return nil, err
	}

	det, err := s.detect(ctx, a.sheetArgs)
	if err != nil {
		return nil, err
	}
	report := omr.Score(det.Answers, key, s.pipeline.Layout())

	out := map[string]interface{}{
		"name":           a.StudentName,
		"roll_no":        a.RollNumber,
		"set":            set,
		"score":          report.Total,
		"section_scores": report.Map(),
		"percentage":     report.Percentage(),
		"answers":        det.Answers,
		"diagnostics":    det.Diagnostics,
	}

	record := a.StudentName != ""
	if a.Record != nil {
		record = *a.Record && a.StudentName != ""
	}
	if record {
		l, name := s.ledgerFor(a.CSVFilename)
		if err := l.Append(ctx, ledger.NewRow(a.StudentName, a.RollNumber, set, report)); err != nil {
			return nil, fmt.Errorf("scored but failed to record result: %w", err)
		}
		out["csv_file"] = name
	}
	return out, nil
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.detect(ctx, a)
}

func (s *Server) handleStandardize(args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.sheetImage(a)
	if err != nil {
		return nil, err
	}
	std, err := s.pipeline.Standardize(img)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(std.Image)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image":     enc,
		"shapes":    std.Shapes,
		"extent":    std.Extent,
		"placement": std.Placement,
	}, nil
}

func (s *Server) handleAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sheetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	det, err := s.detect(ctx, a)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(det.Annotate())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image":       enc,
		"diagnostics": det.Diagnostics,
	}, nil
}

// === Answer Key Handlers ===

type answerKeyCreateArgs struct {
	Set   string `json:"set"`
	Block string `json:"block"`
}

func (s *Server) handleAnswerKeyCreate(args json.RawMessage) (interface{}, error) {
	var a answerKeyCreateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	set, err := answerkey.CanonicalSet(a.Set)
	if err != nil {
		return nil, err
	}
	key, err := answerkey.Parse(a.Block, s.pipeline.Layout())
	if err != nil {
		return nil, fmt.Errorf("%w, check formatting", err)
	}
	n, err := s.keys.Save(set, key)
	if err != nil {
		return nil, err
	}
	sections := make([]string, 0, len(key))
	for _, name := range s.cfg.Layout.SectionNames() {
		if _, ok := key[name]; ok {
			sections = append(sections, name)
		}
	}
	return map[string]interface{}{
		"message":   fmt.Sprintf("Saved sectionwise key for set %s (%d questions).", set, n),
		"set":       set,
		"questions": n,
		"sections":  sections,
	}, nil
}

type setArgs struct {
	Set string `json:"set"`
}

func (s *Server) handleAnswerKeyExists(args json.RawMessage) (interface{}, error) {
	var a setArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{"exists": s.keys.Exists(a.Set)}, nil
}

func (s *Server) handleAnswerKeySets() (interface{}, error) {
	sets, err := s.keys.Sets()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"sets":      sets,
		"directory": s.keys.Dir(),
	}, nil
}

// === Results Handlers ===

type resultsArgs struct {
	CSVFilename string `json:"csv_filename"`
}

func (s *Server) handleResultsList(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a resultsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	l, _ := s.ledgerFor(a.CSVFilename)
	return l.List(ctx)
}

type createCSVArgs struct {
	Filename string `json:"filename"`
}

func (s *Server) handleResultsCreateCSV(args json.RawMessage) (interface{}, error) {
	var a createCSVArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	name, err := ledger.CreateCSV(s.uploads.Dir(), a.Filename, s.cfg.Layout.SectionNames())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message":  fmt.Sprintf("CSV file '%s' created successfully!", name),
		"filename": name,
	}, nil
}

func (s *Server) handleResultsCSVFiles() (interface{}, error) {
	files, err := ledger.ListCSV(s.uploads.Dir())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"files":     files,
		"directory": s.uploads.Dir(),
	}, nil
}
