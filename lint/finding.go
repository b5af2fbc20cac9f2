// Copyright © 2024 The cstlint authors

package lint

import (
	"encoding/json"
	"fmt"
)

// Severity indicates the severity level of a finding.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
	// Offset is the 0-based byte offset of the location in the file.
	Offset int `json:"offset"`
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Fix is a suggested replacement for the blamed code.
type Fix struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Finding is a single reported problem.
type Finding struct {
	Pos      Position `json:"pos"`
	Message  string   `json:"message"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	// Blame is the source text the finding is about.
	Blame string   `json:"blame,omitempty"`
	Notes []string `json:"notes,omitempty"`
	Fix   *Fix     `json:"fix,omitempty"`
	// ToolError marks a finding that reports a failure of the rule itself
	// rather than a problem in the code.
	ToolError bool `json:"tool_error,omitempty"`
}

// String returns the finding in go vet style: file:line:col: message (rule)
// with optional note lines appended.
func (f Finding) String() string {
	s := fmt.Sprintf("%s: %s (%s)", f.Pos, f.Message, f.Rule)
	for _, n := range f.Notes {
		s += "\n  = note: " + n
	}
	return s
}
