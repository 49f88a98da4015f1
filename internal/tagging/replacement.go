package tagging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// segment is either a literal run of text or a capture-group reference.
type segment struct {
	literal string
	group   int
}

const literalSegment = -1

// parseReplacement splits a replacement string into literal text and group
// references. `$n` consumes digits only while the resulting group number
// exists in re, so with two groups "$12" is group 1 followed by "2". `${name}`
// selects a named group and a backslash quotes the next character.
func parseReplacement(re *regexp.Regexp, repl string) ([]segment, error) {
	groups := re.NumSubexp()
	var segments []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String(), group: literalSegment})
			lit.Reset()
		}
	}

	for i := 0; i < len(repl); {
		switch c := repl[i]; c {
		case '\\':
			i++
			if i >= len(repl) {
				return nil, fmt.Errorf("character to be escaped is missing at end of %q", repl)
			}
			r, size := utf8.DecodeRuneInString(repl[i:])
			lit.WriteRune(r)
			i += size
		case '$':
			i++
			if i >= len(repl) {
				return nil, fmt.Errorf("illegal group reference: group index is missing at end of %q", repl)
			}
			var ref int
			if repl[i] == '{' {
				end := strings.IndexByte(repl[i+1:], '}')
				if end < 0 {
					return nil, fmt.Errorf("named group reference is missing trailing '}' in %q", repl)
				}
				name := repl[i+1 : i+1+end]
				if name == "" {
					return nil, fmt.Errorf("named group reference has empty name in %q", repl)
				}
				ref = re.SubexpIndex(name)
				if ref < 0 {
					return nil, fmt.Errorf("no group with name {%s}", name)
				}
				i += end + 2
			} else {
				if !isDigit(repl[i]) {
					return nil, fmt.Errorf("illegal group reference %q in %q", "$"+string(repl[i]), repl)
				}
				ref = int(repl[i] - '0')
				i++
				for i < len(repl) && isDigit(repl[i]) {
					next := ref*10 + int(repl[i]-'0')
					if next > groups {
						break
					}
					ref = next
					i++
				}
				if ref > groups {
					return nil, fmt.Errorf("no group %d (pattern has %d)", ref, groups)
				}
			}
			flush()
			segments = append(segments, segment{group: ref})
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return segments, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// expand appends the replacement for one match. match holds submatch index
// pairs as returned by FindStringSubmatchIndex; groups that did not take part
// in the match expand to nothing.
func expand(dst *strings.Builder, segments []segment, input string, match []int) {
	for _, seg := range segments {
		if seg.group == literalSegment {
			dst.WriteString(seg.literal)
			continue
		}
		start, end := match[2*seg.group], match[2*seg.group+1]
		if start >= 0 && end >= 0 {
			dst.WriteString(input[start:end])
		}
	}
}

// Substitute replaces every non-overlapping match of re in input with
// replacement, expanding group references against each match. Unmatched
// input is copied verbatim.
func Substitute(re *regexp.Regexp, input, replacement string) (string, error) {
	segments, err := parseReplacement(re, replacement)
	if err != nil {
		return "", err
	}
	matches := re.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return input, nil
	}
	var out strings.Builder
	out.Grow(len(input) + len(replacement))
	last := 0
	for _, match := range matches {
		out.WriteString(input[last:match[0]])
		expand(&out, segments, input, match)
		last = match[1]
	}
	out.WriteString(input[last:])
	return out.String(), nil
}

// quoteGroupError keeps group numbers readable in configuration errors.
func quoteGroupError(template string, err error) error {
	return fmt.Errorf("tagged replacement %s: %w", strconv.Quote(template), err)
}
