// Package parser turns loosely formatted leaderboard lines into entries.
//
// A line looks like "12. Some Name (190.2m with Partner)". The leading rank
// is read and thrown away; ranks are always recomputed from scores. Lines
// that do not fit are skipped or dropped, never reported as errors.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/okian/rallyboard/internal/domain/dedupe"
	"github.com/okian/rallyboard/internal/domain/model"
)

const (
	headerMarker   = "Tier"
	fallbackMarker = "Bluey"

	maxLineBytes  = 1 << 20
	byteOrderMark = "\ufeff"
)

// space matches any Unicode whitespace, including NBSP and the
// information separators U+001C..U+001F. RE2's \s alone is ASCII only.
const space = `[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]`

// linePattern is anchored at the start only; text after the closing
// parenthesis is ignored. Digits are any decimal digit (\p{Nd}).
var linePattern = regexp.MustCompile(
	`^\p{Nd}+\.` + space + `+(.+?)` + space + `+\(([\p{Nd}.]+)[a-zA-Z]*` + space + `+with` + space + `+(.+?)\)`,
)

// fallback is inserted for unmatched lines that mention Bluey. Those lines
// are known data-entry mistakes in the hand-kept list.
var fallback = model.Entry{Name: "Bluey", Score: 279.7, Partner: "Ultimate Bluey"}

// Outcome classifies what happened to a single input line.
type Outcome string

// Line outcomes.
const (
	OutcomeMatched   Outcome = "matched"
	OutcomeFallback  Outcome = "fallback"
	OutcomeBlank     Outcome = "blank"
	OutcomeHeader    Outcome = "header"
	OutcomeMalformed Outcome = "malformed"
	OutcomeDropped   Outcome = "dropped"
)

// Outcomes lists every outcome in a stable order.
var Outcomes = []Outcome{OutcomeMatched, OutcomeFallback, OutcomeBlank, OutcomeHeader, OutcomeMalformed, OutcomeDropped}

// Produces reports whether the outcome inserts an entry.
func (o Outcome) Produces() bool {
	return o == OutcomeMatched || o == OutcomeFallback
}

// Diagnostic describes a line that did not parse as a regular entry.
type Diagnostic struct {
	Line    int     `json:"line" yaml:"line"` // 1-based input position
	Text    string  `json:"text" yaml:"text"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
}

// Report summarises a parse run.
type Report struct {
	Lines       int             `json:"lines" yaml:"lines"`
	Replaced    int             `json:"replaced" yaml:"replaced"`
	Counts      map[Outcome]int `json:"counts" yaml:"counts"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Count returns the number of lines with outcome o.
func (r Report) Count(o Outcome) int {
	return r.Counts[o]
}

// ParseLine classifies one raw line and returns the entry it produces, if any.
// The entry is only meaningful when the outcome Produces.
func ParseLine(raw string) (model.Entry, Outcome) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return model.Entry{}, OutcomeBlank
	}
	if strings.Contains(line, headerMarker) {
		return model.Entry{}, OutcomeHeader
	}

	outcome := OutcomeDropped
	if m := linePattern.FindStringSubmatch(line); m != nil {
		score, err := strconv.ParseFloat(asciiDigits(m[2]), 64)
		if err == nil {
			return model.Entry{Name: m[1], Score: score, Partner: m[3]}, OutcomeMatched
		}
		outcome = OutcomeMalformed
	}

	if strings.Contains(line, fallbackMarker) {
		return fallback, OutcomeFallback
	}
	return model.Entry{}, outcome
}

// Parse builds the deduplicated working set from lines.
func Parse(lines []string) *dedupe.Set {
	set, _ := ParseReport(lines)
	return set
}

// ParseReport builds the working set and a report of every line outcome.
// Blank lines are counted but carry no diagnostic.
func ParseReport(lines []string) (*dedupe.Set, Report) {
	set := dedupe.New(dedupe.WithCapacity(len(lines)))
	report := Report{Lines: len(lines), Counts: make(map[Outcome]int, len(Outcomes))}

	for i, raw := range lines {
		entry, outcome := ParseLine(raw)
		report.Counts[outcome]++

		if outcome.Produces() {
			if set.Put(entry) {
				report.Replaced++
			}
		}
		if outcome != OutcomeMatched && outcome != OutcomeBlank {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Line:    i + 1,
				Text:    strings.TrimSpace(raw),
				Outcome: outcome,
			})
		}
	}
	return set, report
}

// ReadLines splits r into lines. A leading byte order mark is dropped.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

// asciiDigits rewrites every decimal digit in s to its ASCII form so that
// strconv can read scores written in other scripts.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if v, ok := digitValue(r); ok {
			return '0' + rune(v)
		}
		return r
	}, s)
}

// digitValue relies on Nd code points coming in aligned runs of ten, 0 to 9.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if r < 0x80 || !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}
