package bridge

import "fmt"

// BreakpointRecord describes one host breakpoint
type BreakpointRecord struct {
	// File is the source path; empty when the host has no file for the breakpoint
	File string `json:"file"`

	// Line is 1-based and only meaningful together with File
	Line int `json:"line"`

	Enabled bool `json:"enabled"`
}

// HasLocation reports whether the record points at a source line
func (r BreakpointRecord) HasLocation() bool {
	return r.File != "" && r.Line >= 1
}

// String renders the record as "File Line Enabled"
func (r BreakpointRecord) String() string {
	enabled := "False"
	if r.Enabled {
		enabled = "True"
	}
	return fmt.Sprintf("%s %d %s", r.File, r.Line, enabled)
}
