package shell

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrUnclosedQuote    = errors.New("unclosed quote")
	ErrUnfinishedEscape = errors.New("unfinished escape sequence")
)

// Parser splits an input line into words.
type Parser interface {
	Parse(line string) ([]string, error)
}

// DefaultParser splits on whitespace and understands single quotes, double
// quotes and backslash escapes, so paths with spaces can be typed. Where the
// path separator is a backslash, backslashes are ordinary characters and
// quotes are the only way to keep spaces.
type DefaultParser struct {
	newReader func(string) io.RuneReader
	escapes   bool
}

// NewDefaultParser creates a parser for the host platform.
func NewDefaultParser() *DefaultParser {
	return newParser(filepath.Separator != '\\')
}

func newParser(escapes bool) *DefaultParser {
	return &DefaultParser{
		newReader: func(s string) io.RuneReader {
			return strings.NewReader(s)
		},
		escapes: escapes,
	}
}

type parseState int

const (
	stateOutside parseState = iota
	stateSingleQuote
	stateDoubleQuote
)

type tokenBuffer struct {
	b strings.Builder
	// started is set by quotes so that '' yields an empty word.
	started bool
}

func (tb *tokenBuffer) appendRune(r rune) {
	tb.b.WriteRune(r)
	tb.started = true
}

func (tb *tokenBuffer) flush(args []string) []string {
	if !tb.started {
		return args
	}
	args = append(args, tb.b.String())
	tb.b.Reset()
	tb.started = false
	return args
}

// Parse implements Parser
func (p *DefaultParser) Parse(line string) ([]string, error) {
	r := p.newReader(line)
	var tb tokenBuffer

	args := []string{}
	state := stateOutside
	escaped := false

	for {
		ch, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if escaped {
			if state == stateDoubleQuote && ch != '"' && ch != '\\' {
				tb.appendRune('\\')
			}
			tb.appendRune(ch)
			escaped = false
			continue
		}

		switch state {
		case stateOutside:
			switch {
			case unicode.IsSpace(ch):
				args = tb.flush(args)
			case ch == '\'':
				state = stateSingleQuote
				tb.started = true
			case ch == '"':
				state = stateDoubleQuote
				tb.started = true
			case ch == '\\' && p.escapes:
				escaped = true
			default:
				tb.appendRune(ch)
			}

		case stateSingleQuote:
			if ch == '\'' {
				state = stateOutside
			} else {
				tb.appendRune(ch)
			}

		case stateDoubleQuote:
			switch ch {
			case '"':
				state = stateOutside
			case '\\':
				if p.escapes {
					escaped = true
				} else {
					tb.appendRune(ch)
				}
			default:
				tb.appendRune(ch)
			}
		}
	}

	if escaped {
		return nil, ErrUnfinishedEscape
	}
	if state != stateOutside {
		return nil, ErrUnclosedQuote
	}

	return tb.flush(args), nil
}
