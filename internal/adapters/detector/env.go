// Package detector picks the log format from the environment.
package detector

import (
	"os"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// LogFormat is how log records are rendered.
type LogFormat int

const (
	// FormatPretty renders coloured, human oriented lines.
	FormatPretty LogFormat = iota
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// Flag values accepted by ResolveLogFormat.
const (
	FlagAuto   = "auto"
	FlagPretty = "pretty"
	FlagJSON   = "json"
)

// String returns the flag spelling of the format.
func (f LogFormat) String() string {
	if f == FormatJSON {
		return FlagJSON
	}
	return FlagPretty
}

// DetectLogFormat returns JSON when stderr is not a terminal on a CI runner,
// where logs are collected by machines, and pretty output otherwise.
func DetectLogFormat() LogFormat {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) LogFormat {
	isCI := ci == "true" || ci == "1"
	if !isTTY && isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveLogFormat applies the --log-format flag to the detected format.
func ResolveLogFormat(detected LogFormat, flag string) (LogFormat, error) {
	switch flag {
	case FlagAuto, "":
		return detected, nil
	case FlagPretty:
		return FormatPretty, nil
	case FlagJSON:
		return FormatJSON, nil
	default:
		return detected, zerr.With(domain.ErrInvalidLogFormat, "format", flag)
	}
}
