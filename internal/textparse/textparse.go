// Package textparse turns the line-oriented output of virsh and qemu-img
// into maps and rows.
//
// Parsers take lines with trailing newlines already stripped and return
// string values. Callers that want typed values run them through
// ConvertScalar.
package textparse

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports output that does not match the expected shape.
type FormatError struct {
	// Line is the offending line, empty when the input as a whole is wrong.
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == "" {
		return "unexpected output: " + e.Reason
	}
	return fmt.Sprintf("unexpected output: %s: %q", e.Reason, e.Line)
}

// SplitOutput splits stdout into lines, dropping one trailing empty line.
func SplitOutput(stdout string) []string {
	if stdout == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(stdout, "\r\n", "\n"), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// NormalizeKey lower-cases key, trims it, replaces spaces with underscores
// and removes parentheses: "CPU(s)" becomes "cpus", "Max memory" becomes
// "max_memory".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "(", "", ")", "").Replace(key)
}

// ParseKeyValueLines parses "Key: value" lines. Empty lines are skipped.
// The line is split on its first colon so values may contain colons.
func ParseKeyValueLines(lines []string) (map[string]string, error) {
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &FormatError{Line: line, Reason: "missing ':' separator"}
		}
		out[NormalizeKey(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

// ParseWhitespaceTable parses a whitespace-aligned table. The first line
// names the columns, an optional line of dashes follows, and every other
// non-empty line is a row. Cells are paired with columns by position; when a
// row and the header differ in length the extra cells or columns are
// dropped.
func ParseWhitespaceTable(lines []string) ([]map[string]string, error) {
	if len(lines) == 0 {
		return nil, &FormatError{Reason: "missing table header"}
	}

	header := strings.Fields(strings.ToLower(lines[0]))
	if len(header) == 0 {
		return nil, &FormatError{Line: lines[0], Reason: "empty table header"}
	}

	rows := lines[1:]
	if len(rows) > 0 && isSeparator(rows[0]) {
		rows = rows[1:]
	}

	out := make([]map[string]string, 0, len(rows))
	for _, line := range rows {
		cells := strings.Fields(line)
		if len(cells) == 0 {
			continue
		}
		row := make(map[string]string, len(header))
		for i := 0; i < len(header) && i < len(cells); i++ {
			row[header[i]] = cells[i]
		}
		out = append(out, row)
	}
	return out, nil
}

func isSeparator(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && strings.Trim(line, "-") == ""
}

// ParseStatLines parses "<label> <metric> <value>" lines. With skipLeading
// the first token is a label and the second and third tokens are the key
// and value; otherwise the first two tokens are used.
func ParseStatLines(lines []string, skipLeading bool) (map[string]string, error) {
	k, v := 0, 1
	if skipLeading {
		k, v = 1, 2
	}

	out := make(map[string]string, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) <= v {
			return nil, &FormatError{Line: line, Reason: fmt.Sprintf("expected at least %d fields", v+1)}
		}
		out[fields[k]] = fields[v]
	}
	return out, nil
}

// ParseCPUStats parses "virsh cpu-stats" output. Unindented "CPU0:" or
// "Total:" lines open a section named by the lower-cased label, and the
// tab-indented "param value unit" lines under it become "value unit".
func ParseCPUStats(lines []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	var section map[string]string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, " ") {
			name := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(line), ":"))
			section = make(map[string]string)
			out[name] = section
			continue
		}
		if section == nil {
			return nil, &FormatError{Line: line, Reason: "statistic outside of a section"}
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			section[fields[0]] = fields[1]
		case 3:
			section[fields[0]] = fields[1] + " " + fields[2]
		default:
			return nil, &FormatError{Line: line, Reason: "expected 'param value unit'"}
		}
	}
	return out, nil
}

// ConvertScalar turns "yes" and "no" into booleans and all-digit strings
// into ints. Anything else is returned unchanged.
func ConvertScalar(value string) any {
	value = strings.TrimSpace(value)
	switch value {
	case "yes":
		return true
	case "no":
		return false
	}
	if isDigits(value) {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

// ConvertMap applies ConvertScalar to every value of m.
func ConvertMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = ConvertScalar(v)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
