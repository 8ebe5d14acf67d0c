package transform

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadlane/delegator/internal/events"
)

func TestParseAt(t *testing.T) {
	lang, err := Parse(".foo")
	require.NoError(t, err)
	assert.Equal(t, &At{Key: "foo"}, lang)
}

func TestParseFocus(t *testing.T) {
	lang, err := Parse(".foo | .bar")
	require.NoError(t, err)
	assert.Equal(t, &Map{First: &At{Key: "foo"}, Second: &At{Key: "bar"}}, lang)
}

func TestParseMap(t *testing.T) {
	lang, err := Parse("map(.foo)")
	require.NoError(t, err)
	assert.Equal(t, &Array{Next: &At{Key: "foo"}}, lang)
}

func TestParseIdentity(t *testing.T) {
	lang, err := Parse(".")
	require.NoError(t, err)
	assert.Equal(t, &Identity{}, lang)
}

func TestParseObject(t *testing.T) {
	lang, err := Parse(`{ "foo" : map(.foo) , "bar" : .bar }`)
	require.NoError(t, err)
	assert.Equal(t, &Object{Entries: []Entry{
		{Key: "foo", Value: &Array{Next: &At{Key: "foo"}}},
		{Key: "bar", Value: &At{Key: "bar"}},
	}}, lang)
}

func TestParseSetGet(t *testing.T) {
	lang, err := Parse(`.foo | set("foo"), { "bar": .bar, "foo": get("foo") }`)
	require.NoError(t, err)
	assert.Equal(t, &Splat{Terms: []Language{
		&Map{First: &At{Key: "foo"}, Second: &Set{Name: "foo"}},
		&Object{Entries: []Entry{
			{Key: "bar", Value: &At{Key: "bar"}},
			{Key: "foo", Value: &Get{Name: "foo"}},
		}},
	}}, lang)
}

func TestParseConst(t *testing.T) {
	lang, err := Parse(`const({"product_variants": [1, 2]})`)
	require.NoError(t, err)
	konst, ok := lang.(*Const)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{
		"product_variants": []interface{}{float64(1), float64(2)},
	}, konst.Value)
}

func TestParsePipeAfterAnyPrimary(t *testing.T) {
	lang, err := Parse(`get("items") | size`)
	require.NoError(t, err)
	assert.Equal(t, &Map{First: &Get{Name: "items"}, Second: &Length{}}, lang)
}

func TestParseKeywordTerms(t *testing.T) {
	tests := []struct {
		src      string
		expected Language
	}{
		{src: "size", expected: &Length{}},
		{src: "flatten", expected: &Flatten{}},
		{src: `join(", ")`, expected: &Join{Sep: ", "}},
		{src: `default(const([]))`, expected: &Default{Next: &Const{Value: []interface{}{}}}},
		{src: ".items | flatten | size", expected: &Map{
			First:  &At{Key: "items"},
			Second: &Map{First: &Flatten{}, Second: &Length{}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			lang, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lang)
		})
	}
}

func TestParseEmitEvent(t *testing.T) {
	src := `emit_event({"owner_id": "u-1", "topic": {"queue_url": "https://q.example"}, ` +
		`"event_type": "search", "context_id": "12313bb7-6068-4ec9-ac49-3e834181f127", ` +
		`"page_context": {"page": 1}})`
	lang, err := Parse(src)
	require.NoError(t, err)

	emit, ok := lang.(*EmitEvent)
	require.True(t, ok)
	require.NotNil(t, emit.OwnerID)
	assert.Equal(t, "u-1", *emit.OwnerID)
	assert.Equal(t, "https://q.example", emit.Topic.QueueURL)
	assert.Equal(t, events.EventTypeSearch, emit.EventType)
	assert.Equal(t, uuid.MustParse("12313bb7-6068-4ec9-ac49-3e834181f127"), emit.ContextID)
	assert.Equal(t, map[string]interface{}{"page": float64(1)}, emit.PageContext)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty input", src: ""},
		{name: "bare pipe", src: "|"},
		{name: "unterminated object", src: `{ "a": .a`},
		{name: "unterminated string", src: `set("a`},
		{name: "trailing garbage", src: ".foo .bar"},
		{name: "missing close paren", src: "map(.foo"},
		{name: "emit_event non-object", src: "emit_event([1])"},
		{name: "keyword prefix of identifier", src: "sizeable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Pos, 0)
		})
	}
}

func TestParsePrintRoundTrip(t *testing.T) {
	owner := "u-9"
	exprs := []Language{
		&At{Key: "foo"},
		&Identity{},
		&Array{Next: &At{Key: "id"}},
		&Map{First: &At{Key: "a"}, Second: &Map{First: &At{Key: "b"}, Second: &At{Key: "c"}}},
		&Object{Entries: []Entry{
			{Key: "ids", Value: &Array{Next: &At{Key: "product_variant_id"}}},
			{Key: "count", Value: &Length{}},
		}},
		&Splat{Terms: []Language{
			&Map{First: &At{Key: "next_start"}, Second: &Set{Name: "next_start"}},
			&Object{Entries: []Entry{{Key: "next", Value: &Get{Name: "next_start"}}}},
		}},
		&Const{Value: map[string]interface{}{"a": float64(1), "b": []interface{}{"x"}}},
		&Join{Sep: ", "},
		&Default{Next: &Const{Value: []interface{}{}}},
		&Flatten{},
		&Map{First: &Get{Name: "items"}, Second: &Length{}},
		&EmitEvent{
			OwnerID:     &owner,
			Topic:       events.Topic{QueueURL: "https://q.example/user-action"},
			EventType:   events.EventTypeSearchResult,
			ContextID:   uuid.MustParse("12313bb7-6068-4ec9-ac49-3e834181f127"),
			PageContext: map[string]interface{}{"page": float64(2)},
		},
	}

	for _, expr := range exprs {
		printed := expr.String()
		t.Run(printed, func(t *testing.T) {
			reparsed, err := Parse(printed)
			require.NoError(t, err)
			assert.Equal(t, expr, reparsed)
		})
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	var prog Program
	require.NoError(t, prog.UnmarshalJSON([]byte(`".results | { \"ids\": map(.product_variant_id) }"`)))

	expected := &Map{
		First: &At{Key: "results"},
		Second: &Object{Entries: []Entry{
			{Key: "ids", Value: &Array{Next: &At{Key: "product_variant_id"}}},
		}},
	}
	assert.Equal(t, expected, prog.Root)

	encoded, err := prog.MarshalJSON()
	require.NoError(t, err)

	var again Program
	require.NoError(t, again.UnmarshalJSON(encoded))
	assert.Equal(t, prog.Root, again.Root)
}

func TestProgramRejectsNonString(t *testing.T) {
	var prog Program
	require.Error(t, prog.UnmarshalJSON([]byte(`{"not": "a string"}`)))
}
