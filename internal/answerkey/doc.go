// Package answerkey parses pasted answer-key blocks and stores keys per
// question-paper set.
//
// A block looks like:
//
//	Python
//	1. a
//	2 - b, c
//	Power BI
//	61. d
//
// Stored keys are JSON files of the form {"Python": {"Q1": "a", ...}, ...},
// one per set, named answers_<SET>.json.
package answerkey
