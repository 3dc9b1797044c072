// Package omr turns a photographed bubble sheet into section scores.
//
// The pipeline is a fixed chain of stages, each a plain function so it can
// be tested on its own:
//
//  1. Standardize: locate the bubble field in the photo and re-project it
//     onto a fixed canvas (see detection.Standardize)
//  2. Detect: find bubble-shaped contours on the canvas
//  3. Assign: cluster bubbles into (column, row, option) cells
//  4. Classify: decide which bubbles are filled
//  5. Score: compare detected answers with an answer key per section
//
// Pipeline wires the stages together. Layout carries every constant the
// stages need (grid size, option letters, sections, thresholds), so an
// alternate sheet design is a different Layout value.
//
// # Question Numbering
//
// Questions are numbered down each column: column c, row r holds question
// c*RowsPerColumn + r + 1. Answer sets key every question as "Q<n>" inside
// its section; Lookup also accepts a bare "<n>".
//
// # Multi-select
//
// A question with several filled bubbles is detected as the letters joined
// with "," (for example "a,c"). Scoring normalises both sides to sorted
// letters, so it matches a key of "a,c" or "c, a" but not "a".
//
// # Thread Safety
//
// Pipeline is immutable and safe for concurrent use. Stage functions keep no
// state between calls.
package omr
