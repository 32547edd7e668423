package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// messager is implemented by zerr errors: Message returns the layer's own
// text without the wrapped chain.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one layer of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks err outermost first. The walk stops at the first
// error that is not a zerr layer, whose full text becomes the last entry.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error()})
			break
		}
		entry := ErrorEntry{Message: m.Message()}
		if md, ok := current.(metadataer); ok {
			entry.Metadata = md.Metadata()
		}
		entries = append(entries, entry)
		current = errors.Unwrap(current)
	}
	return entries
}

const (
	mainIndent  = "       "
	causeIndent = "      "
)

func formatErrorEntries(entries []ErrorEntry) string {
	lines := make([]string, 0, len(entries)*2)
	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			lines = appendIndented(lines, mainIndent, msgLines[1:])
			lines = appendIndented(lines, mainIndent, metadataLines(entry.Metadata))
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		lines = appendIndented(lines, causeIndent, msgLines[1:])
		lines = appendIndented(lines, causeIndent, metadataLines(entry.Metadata))
	}
	return strings.Join(lines, "\n")
}

func appendIndented(lines []string, indent string, extra []string) []string {
	for _, line := range extra {
		lines = append(lines, indent+line)
	}
	return lines
}

func metadataLines(md map[string]any) []string {
	keys := slices.Sorted(maps.Keys(md))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %v", k, md[k]))
	}
	return out
}
