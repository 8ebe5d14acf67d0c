package transform

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String renders the canonical surface syntax. Parsing the result of String
// yields an equal expression for every node the grammar can express.

func (n *At) String() string { return "." + n.Key }

func (n *Array) String() string { return fmt.Sprintf("map(%s)", n.Next) }

func (n *Object) String() string {
	if len(n.Entries) == 0 {
		return "{}"
	}
	parts := make([]string, len(n.Entries))
	for i, entry := range n.Entries {
		parts[i] = fmt.Sprintf("%s: %s", quoteString(entry.Key), entry.Value)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (n *Splat) String() string {
	parts := make([]string, len(n.Terms))
	for i, term := range n.Terms {
		parts[i] = term.String()
	}
	return strings.Join(parts, ", ")
}

func (n *Set) String() string { return fmt.Sprintf("set(%s)", quoteString(n.Name)) }

func (n *Get) String() string { return fmt.Sprintf("get(%s)", quoteString(n.Name)) }

func (n *Const) String() string {
	encoded, err := json.Marshal(n.Value)
	if err != nil {
		return "const(null)"
	}
	return fmt.Sprintf("const(%s)", encoded)
}

func (n *Identity) String() string { return "." }

func (n *Map) String() string { return fmt.Sprintf("%s | %s", n.First, n.Second) }

func (n *Length) String() string { return "size" }

func (n *Join) String() string { return fmt.Sprintf("join(%s)", quoteString(n.Sep)) }

func (n *Default) String() string { return fmt.Sprintf("default(%s)", n.Next) }

func (n *Flatten) String() string { return "flatten" }

func (n *EmitEvent) String() string {
	encoded, err := json.Marshal(emitEventArgs{
		OwnerID:     n.OwnerID,
		Topic:       n.Topic,
		EventType:   n.EventType,
		ContextID:   n.ContextID,
		PageContext: n.PageContext,
	})
	if err != nil {
		return "emit_event({})"
	}
	return fmt.Sprintf("emit_event(%s)", encoded)
}

func quoteString(s string) string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(encoded)
}
