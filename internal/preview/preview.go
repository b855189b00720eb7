// Package preview splits small delimited text into headers and rows for
// display, without touching storage. It does not handle quoted delimiters or
// embedded newlines.
package preview

import "strings"

// Result is the parsed table. Rows may be ragged.
type Result struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Parse trims text, takes the first line as headers and every following line
// as a row. Fields are split on commas, trimmed, and stripped of all double
// quotes.
func Parse(text string) Result {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	res := Result{
		Headers: splitLine(lines[0]),
		Rows:    make([][]string, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		res.Rows = append(res.Rows, splitLine(line))
	}
	return res
}

func splitLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(strings.TrimSpace(f), `"`, "")
	}
	return fields
}
