// Package diagnostics defines the structured messages pushed to status clients.
package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

const (
	CodeStatus         = "STATUS"
	CodeLoadFailed     = "FRAME.LOAD_FAILED"
	CodeControlError   = "CONTROL.ERROR"
	CodeControlUnknown = "CONTROL.UNKNOWN"
	CodeCatalogReload  = "CATALOG.RELOAD"
	CodeTestRunning    = "TEST.RUNNING"
	CodeTestDone       = "TEST.DONE"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	At             time.Time      `json:"at"`
}

// Status wraps a player status line.
func Status(text string) Diagnostic {
	return Diagnostic{Severity: Info, Code: CodeStatus, Summary: text, At: time.Now()}
}

// LoadFailed reports a frame that could not be fetched or decoded.
func LoadFailed(path string, err error) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     CodeLoadFailed,
		Summary:  "Frame failed to load",
		Detail:   err.Error(),
		LikelyCauses: []string{
			"frame file missing under the frames root",
			"unsupported cloud format",
		},
		Evidence: map[string]any{"path": path},
		At:       time.Now(),
	}
}

// ControlError reports a rejected control command.
func ControlError(cmd string, err error) Diagnostic {
	return Diagnostic{
		Severity: Warn,
		Code:     CodeControlError,
		Summary:  "Command " + cmd + " failed",
		Detail:   err.Error(),
		Evidence: map[string]any{"cmd": cmd},
		At:       time.Now(),
	}
}

func ControlUnknown(cmd string) Diagnostic {
	return Diagnostic{
		Severity:       Warn,
		Code:           CodeControlUnknown,
		Summary:        "Unknown command " + cmd,
		SuggestedFixes: []string{"use one of load, load_frame, play, pause, next, prev, reset, pattern, state"},
		Evidence:       map[string]any{"cmd": cmd},
		At:             time.Now(),
	}
}
