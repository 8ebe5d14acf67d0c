package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/threadlane/delegator/internal/events"
)

// ParseError reports a syntax error with the byte offset of the failure.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse reads the surface syntax into an expression tree.
//
//	lang    := thunk ( ',' thunk )*          list of 2+ becomes Splat
//	thunk   := primary ( '|' thunk )?        pipe becomes Map
//	primary := '.' ident | '.' | map(thunk) | '{' entries '}' | get("k")
//	         | set("k") | const(<json>) | default(lang) | join("sep")
//	         | size | flatten | emit_event(<json object>)
func Parse(src string) (Language, error) {
	p := &parser{input: src}
	lang, err := p.parseLang()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing input")
	}
	return lang, nil
}

// MustParse is Parse for expressions known at compile time. Panics on error.
func MustParse(src string) Language {
	lang, err := Parse(src)
	if err != nil {
		panic(fmt.Sprintf("transform.MustParse(%q): %v", src, err))
	}
	return lang
}

// emitEventArgs is the JSON argument shape of emit_event(...).
type emitEventArgs struct {
	OwnerID     *string          `json:"owner_id,omitempty"`
	Topic       events.Topic     `json:"topic"`
	EventType   events.EventType `json:"event_type"`
	ContextID   uuid.UUID        `json:"context_id"`
	PageContext interface{}      `json:"page_context"`
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(prefix string) bool {
	if strings.HasPrefix(p.input[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *parser) expect(ch byte) error {
	if p.eof() || p.input[p.pos] != ch {
		return p.errorf("expected %q", string(ch))
	}
	p.pos++
	return nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (p *parser) parseIdent() (string, error) {
	if p.eof() || !isIdentStart(p.input[p.pos]) {
		return "", p.errorf("expected identifier")
	}
	start := p.pos
	for !p.eof() && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

// parseQuoted reads a double-quoted JSON string, decoding escapes.
func (p *parser) parseQuoted() (string, error) {
	if p.peek() != '"' {
		return "", p.errorf("expected string")
	}
	start := p.pos
	p.pos++
	for !p.eof() {
		switch p.input[p.pos] {
		case '\\':
			p.pos += 2
		case '"':
			p.pos++
			var decoded string
			if err := json.Unmarshal([]byte(p.input[start:p.pos]), &decoded); err != nil {
				return "", &ParseError{Pos: start, Msg: fmt.Sprintf("invalid string: %v", err)}
			}
			return decoded, nil
		default:
			p.pos++
		}
	}
	return "", &ParseError{Pos: start, Msg: "unterminated string"}
}

// parseJSON reads one JSON value starting at the current position.
func (p *parser) parseJSON() (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(p.input[p.pos:]))
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, p.errorf("invalid JSON literal: %v", err)
	}
	p.pos += int(dec.InputOffset())
	return value, nil
}

func (p *parser) parseLang() (Language, error) {
	first, err := p.parseThunk()
	if err != nil {
		return nil, err
	}
	terms := []Language{first}
	for {
		p.skipSpace()
		if p.peek() != ',' {
			break
		}
		p.pos++
		next, err := p.parseThunk()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &Splat{Terms: terms}, nil
}

func (p *parser) parseThunk() (Language, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '|' {
		p.pos++
		rest, err := p.parseThunk()
		if err != nil {
			return nil, err
		}
		return &Map{First: left, Second: rest}, nil
	}
	return left, nil
}

func (p *parser) parsePrimary() (Language, error) {
	p.skipSpace()
	switch {
	case p.peek() == '.':
		p.pos++
		if !p.eof() && isIdentStart(p.input[p.pos]) {
			key, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			return &At{Key: key}, nil
		}
		return &Identity{}, nil

	case p.peek() == '{':
		return p.parseObject()

	case p.consume("map("):
		inner, err := p.parseThunk()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Array{Next: inner}, nil

	case p.consume("get("):
		name, err := p.parseCallString()
		if err != nil {
			return nil, err
		}
		return &Get{Name: name}, nil

	case p.consume("set("):
		name, err := p.parseCallString()
		if err != nil {
			return nil, err
		}
		return &Set{Name: name}, nil

	case p.consume("const("):
		p.skipSpace()
		value, err := p.parseJSON()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Const{Value: value}, nil

	case p.consume("default("):
		inner, err := p.parseLang()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &Default{Next: inner}, nil

	case p.consume("join("):
		sep, err := p.parseCallString()
		if err != nil {
			return nil, err
		}
		return &Join{Sep: sep}, nil

	case p.consume("emit_event("):
		p.skipSpace()
		start := p.pos
		raw, err := p.parseJSON()
		if err != nil {
			return nil, err
		}
		if _, ok := raw.(map[string]interface{}); !ok {
			return nil, &ParseError{Pos: start, Msg: "emit_event takes a JSON object"}
		}
		encoded, _ := json.Marshal(raw)
		var args emitEventArgs
		if err := json.Unmarshal(encoded, &args); err != nil {
			return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid emit_event arguments: %v", err)}
		}
		p.skipSpace()
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &EmitEvent{
			OwnerID:     args.OwnerID,
			Topic:       args.Topic,
			EventType:   args.EventType,
			ContextID:   args.ContextID,
			PageContext: args.PageContext,
		}, nil

	case p.matchKeyword("size"):
		return &Length{}, nil

	case p.matchKeyword("flatten"):
		return &Flatten{}, nil
	}

	return nil, p.errorf("expected expression")
}

// parseCallString reads the `"<str>")` tail of get/set/join calls.
func (p *parser) parseCallString() (string, error) {
	p.skipSpace()
	value, err := p.parseQuoted()
	if err != nil {
		return "", err
	}
	p.skipSpace()
	if err := p.expect(')'); err != nil {
		return "", err
	}
	return value, nil
}

// matchKeyword consumes word only when it is not a prefix of a longer
// identifier.
func (p *parser) matchKeyword(word string) bool {
	if !strings.HasPrefix(p.input[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.input) && isIdentChar(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *parser) parseObject() (Language, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return &Object{}, nil
	}
	var entries []Entry
	for {
		p.skipSpace()
		key, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		value, err := p.parseThunk()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Value: value})
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return &Object{Entries: entries}, nil
	}
}
