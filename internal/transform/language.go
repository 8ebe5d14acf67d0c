// Package transform implements the expression language applied between
// cryptogram steps. A poor man's jq: every node denotes a function from one
// JSON value to another, evaluated against a shared per-evaluation scratchpad.
package transform

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/threadlane/delegator/internal/events"
)

// Language is a node of the transform expression tree. Implementations are
// the variant structs below; Eval drives them against a JSON value.
type Language interface {
	fmt.Stringer
	isLanguage()
}

// At projects a field of a JSON object. Absent keys are an error carrying
// the keys that were available.
type At struct {
	Key string
}

// Array applies Next to every element of a JSON array.
type Array struct {
	Next Language
}

// Entry is one key/value pair of an Object node.
type Entry struct {
	Key   string
	Value Language
}

// Object builds a JSON object, evaluating every entry against the same
// input. Entry order is preserved; repeated keys resolve to the last value.
type Object struct {
	Entries []Entry
}

// Splat evaluates each term in order against the same input and yields the
// last result. The sequencing vehicle for Set and EmitEvent side effects.
type Splat struct {
	Terms []Language
}

// Set stores the current value in the scratchpad and passes it through.
type Set struct {
	Name string
}

// Get replaces the current value with the scratchpad entry under Name.
// A missing entry is an error.
type Get struct {
	Name string
}

// Const ignores its input and yields a literal JSON value.
type Const struct {
	Value interface{}
}

// Identity yields its input unchanged.
type Identity struct{}

// Map pipes the output of First into Second.
type Map struct {
	First  Language
	Second Language
}

// Length yields the element count of an array or object as a number.
// Any other input yields null with a warning.
type Length struct{}

// Join concatenates the string elements of an array with Sep. Non-string
// elements are skipped with a warning; a non-array input is an error.
type Join struct {
	Sep string
}

// Default evaluates Next against null when the input is null, and passes
// any other input through.
type Default struct {
	Next Language
}

// Flatten concatenates an array of arrays into one array.
type Flatten struct{}

// EmitEvent ships the current value to the event sink as a user-action
// event and passes it through. The only impure node besides Set.
type EmitEvent struct {
	OwnerID     *string
	Topic       events.Topic
	EventType   events.EventType
	ContextID   uuid.UUID
	PageContext interface{}
}

func (*At) isLanguage()        {}
func (*Array) isLanguage()     {}
func (*Object) isLanguage()    {}
func (*Splat) isLanguage()     {}
func (*Set) isLanguage()       {}
func (*Get) isLanguage()       {}
func (*Const) isLanguage()     {}
func (*Identity) isLanguage()  {}
func (*Map) isLanguage()       {}
func (*Length) isLanguage()    {}
func (*Join) isLanguage()      {}
func (*Default) isLanguage()   {}
func (*Flatten) isLanguage()   {}
func (*EmitEvent) isLanguage() {}

// Pipe chains terms left to right, right-nesting the Map nodes the way the
// parser does. Pipe(a) is a; Pipe(a, b, c) is Map(a, Map(b, c)).
func Pipe(terms ...Language) Language {
	if len(terms) == 0 {
		return &Identity{}
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &Map{First: terms[0], Second: Pipe(terms[1:]...)}
}

// StepError records a transform failure. History is the path of node
// identifiers from the root of the expression down to the failing node;
// Choices optionally lists the object keys available at the failure point.
type StepError struct {
	History []string
	Choices interface{}
}

func newStepError(root string) *StepError {
	return &StepError{History: []string{root}}
}

func (e *StepError) prependHistory(before string) *StepError {
	e.History = append([]string{before}, e.History...)
	return e
}

func (e *StepError) Error() string {
	choices := "[]"
	if e.Choices != nil {
		choices = fmt.Sprintf("%v", e.Choices)
	}
	return fmt.Sprintf("StepError(%s, %s)", strings.Join(e.History, ", "), choices)
}
