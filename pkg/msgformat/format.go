// Package msgformat formats message templates with numbered placeholders
// such as "Hello, {0}!".
//
// Quoting follows the usual message-format rules: a single quote starts a
// literal section ('{0}' renders as {0}) and two single quotes render one.
package msgformat

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	ErrSyntax   = errors.New("msgformat: invalid template")
	ErrArgCount = errors.New("msgformat: argument count does not match placeholders")
	ErrArgType  = errors.New("msgformat: argument type does not match placeholder")
)

type style int

const (
	stylePlain style = iota
	styleNumber
	styleInteger
	stylePercent
)

type segment struct {
	literal string
	index   int // -1 for literal segments
	style   style
}

// Pattern is a parsed template. It is immutable and safe for concurrent use.
type Pattern struct {
	source   string
	segments []segment
	arity    int
}

// Parse parses tmpl into a Pattern.
func Parse(tmpl string) (*Pattern, error) {
	p := &Pattern{source: tmpl}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{literal: lit.String(), index: -1})
			lit.Reset()
		}
	}

	inQuote := false
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '\'':
			if i+1 < len(tmpl) && tmpl[i+1] == '\'' {
				lit.WriteByte('\'')
				i++
				continue
			}
			inQuote = !inQuote
		case inQuote:
			lit.WriteByte(c)
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated placeholder at offset %d in %q", ErrSyntax, i, tmpl)
			}
			seg, err := parsePlaceholder(tmpl[i+1 : i+1+end])
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, tmpl)
			}
			flush()
			p.segments = append(p.segments, seg)
			if seg.index+1 > p.arity {
				p.arity = seg.index + 1
			}
			i += end + 1
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return p, nil
}

func parsePlaceholder(body string) (segment, error) {
	parts := strings.Split(body, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 {
		return segment{}, fmt.Errorf("%w: bad placeholder index %q", ErrSyntax, parts[0])
	}
	seg := segment{index: idx, style: stylePlain}
	if len(parts) == 1 {
		return seg, nil
	}
	if parts[1] != "number" || len(parts) > 3 {
		return segment{}, fmt.Errorf("%w: unsupported placeholder {%s}", ErrSyntax, body)
	}
	seg.style = styleNumber
	if len(parts) == 3 {
		switch parts[2] {
		case "integer":
			seg.style = styleInteger
		case "percent":
			seg.style = stylePercent
		default:
			return segment{}, fmt.Errorf("%w: unsupported number style %q", ErrSyntax, parts[2])
		}
	}
	return seg, nil
}

// Arity is the number of arguments Format expects: the highest placeholder
// index plus one.
func (p *Pattern) Arity() int { return p.arity }

// String returns the template the pattern was parsed from.
func (p *Pattern) String() string { return p.source }

// Format renders the pattern for tag. len(args) must equal Arity.
func (p *Pattern) Format(tag language.Tag, args ...any) (string, error) {
	if len(args) != p.arity {
		return "", fmt.Errorf("%w: %q wants %d, got %d", ErrArgCount, p.source, p.arity, len(args))
	}
	printer := message.NewPrinter(tag)
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.index < 0 {
			b.WriteString(seg.literal)
			continue
		}
		s, err := formatArg(printer, seg, args[seg.index])
		if err != nil {
			return "", fmt.Errorf("%w in %q", err, p.source)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Format parses tmpl and renders it for tag.
func Format(tag language.Tag, tmpl string, args ...any) (string, error) {
	p, err := Parse(tmpl)
	if err != nil {
		return "", err
	}
	return p.Format(tag, args...)
}

func formatArg(printer *message.Printer, seg segment, arg any) (string, error) {
	numeric := isNumber(arg)
	switch seg.style {
	case stylePlain:
		if numeric {
			return printer.Sprint(number.Decimal(arg)), nil
		}
		return printer.Sprint(arg), nil
	}
	if !numeric {
		return "", fmt.Errorf("%w: placeholder {%d,number} got %T", ErrArgType, seg.index, arg)
	}
	switch seg.style {
	case styleInteger:
		return printer.Sprint(number.Decimal(arg, number.MaxFractionDigits(0))), nil
	case stylePercent:
		return printer.Sprint(number.Percent(arg)), nil
	default:
		return printer.Sprint(number.Decimal(arg)), nil
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case nil, fmt.Stringer, error:
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
