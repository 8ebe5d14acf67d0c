package transform

import (
	"encoding/json"
	"fmt"
)

// Program wraps an expression for embedding in JSON documents. The wire
// form is the surface-syntax string; cryptogram steps carry their preflight
// and postflight transforms this way.
type Program struct {
	Root Language
}

// NewProgram wraps an expression tree.
func NewProgram(root Language) *Program {
	return &Program{Root: root}
}

func (p *Program) String() string {
	if p == nil || p.Root == nil {
		return "."
	}
	return p.Root.String()
}

// MarshalJSON encodes the program as its surface-syntax string.
func (p Program) MarshalJSON() ([]byte, error) {
	if p.Root == nil {
		return nil, fmt.Errorf("cannot encode empty program")
	}
	return json.Marshal(p.Root.String())
}

// UnmarshalJSON decodes a surface-syntax string into an expression tree.
func (p *Program) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err != nil {
		return fmt.Errorf("program must be a string: %w", err)
	}
	root, err := Parse(src)
	if err != nil {
		return err
	}
	p.Root = root
	return nil
}
