package cryptogram

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadlane/delegator/internal/transform"
)

func TestFromJSON(t *testing.T) {
	raw := `{
		"steps": [
			{
				"service": "catalog",
				"method": "search",
				"payload": {"q": "boots"},
				"postflight": ".results | { \"ids\": map(.product_variant_id) }",
				"memoization_prefix": "u1-",
				"headers": [["X-Features", "beta"]]
			},
			{
				"postflight": "{ \"results\": .ids }"
			}
		]
	}`

	c, err := FromJSON([]byte(raw))
	require.NoError(t, err)
	require.Len(t, c.Steps, 2)

	first := c.Steps[0]
	require.NotNil(t, first.Service)
	assert.Equal(t, "catalog", *first.Service)
	require.NotNil(t, first.Method)
	assert.Equal(t, "search", *first.Method)
	assert.Equal(t, map[string]interface{}{"q": "boots"}, first.Payload)
	require.NotNil(t, first.Postflight)
	require.NotNil(t, first.MemoizationPrefix)
	assert.Equal(t, "u1-", *first.MemoizationPrefix)
	assert.Equal(t, []Header{{Name: "X-Features", Value: "beta"}}, first.Headers)

	second := c.Steps[1]
	assert.Nil(t, second.Service)
	assert.Nil(t, second.Method)
	require.NotNil(t, second.Postflight)
}

func TestJSONRoundTrip(t *testing.T) {
	c := New(
		Build("catalog", "search").
			Payload(map[string]interface{}{"q": "Foo"}).
			Postflight(transform.MustParse(`.results | { "ids": map(.product_variant_id) }`)).
			MemoizationPrefix("u1-").
			Header("X-Features", "beta").
			Finish(),
		Inert().
			Postflight(transform.MustParse(`{ "results": .ids }`)).
			Finish(),
	)

	encoded, err := c.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(encoded)
	require.NoError(t, err)
	assert.Equal(t, c.Steps, decoded.Steps)
}

func TestHeaderEncodesAsPair(t *testing.T) {
	encoded, err := json.Marshal(Header{Name: "X-Request-Id", Value: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `["X-Request-Id", "abc"]`, string(encoded))
}

func TestBuilder(t *testing.T) {
	step := Build("pricing", "resale").
		Payload(nil).
		Preflight(transform.MustParse(`{ "brand": .brand }`)).
		Headers([]Header{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}).
		Finish()

	require.NotNil(t, step.Service)
	assert.Equal(t, "pricing", *step.Service)
	require.NotNil(t, step.Method)
	assert.Equal(t, "resale", *step.Method)
	require.NotNil(t, step.Preflight)
	assert.Nil(t, step.Postflight)
	assert.Len(t, step.Headers, 2)
}

func TestBindRequestBodyRunsAndClearsPreflight(t *testing.T) {
	c := New(
		Build("catalog", "search").
			Payload(nil).
			Preflight(transform.MustParse(`{ "q": .query }`)).
			Finish(),
	)

	serr := c.BindRequestBody(
		context.Background(),
		transform.NoopContext(),
		map[string]interface{}{"query": "boots"},
		transform.NewState(),
	)
	require.Nil(t, serr)
	assert.Nil(t, c.Steps[0].Preflight)
	assert.Equal(t, map[string]interface{}{"q": "boots"}, c.Steps[0].Payload)
}

func TestBindRequestBodyPreflightFailure(t *testing.T) {
	c := New(
		Build("catalog", "search").
			Payload(nil).
			Preflight(transform.MustParse(`.missing`)).
			Finish(),
	)

	serr := c.BindRequestBody(
		context.Background(),
		transform.NoopContext(),
		map[string]interface{}{"query": "boots"},
		transform.NewState(),
	)
	require.NotNil(t, serr)
	assert.Equal(t, []string{"missing"}, serr.History)
}

func TestBindRequestBodyDefaultsPayload(t *testing.T) {
	c := New(Build("catalog", "search").Payload(nil).Finish())

	body := map[string]interface{}{"q": "boots"}
	serr := c.BindRequestBody(context.Background(), transform.NoopContext(), body, transform.NewState())
	require.Nil(t, serr)
	assert.Equal(t, body, c.Steps[0].Payload)
}
