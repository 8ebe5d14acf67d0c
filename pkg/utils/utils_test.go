package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadlane/delegator/pkg/logger"
)

func TestGetEnvOrError(t *testing.T) {
	t.Setenv("DELEGATOR_TEST_VAR", "value")

	value, err := GetEnvOrError("DELEGATOR_TEST_VAR")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	_, err = GetEnvOrError("DELEGATOR_TEST_VAR_MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DELEGATOR_TEST_VAR_MISSING")
}

func TestDeepCopyValue(t *testing.T) {
	original := map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{"id": "pv-1"},
		},
	}

	copied := DeepCopyValue(context.Background(), original, logger.NewTestLogger())

	copied.(map[string]interface{})["results"].([]interface{})[0].(map[string]interface{})["id"] = "pv-2"
	assert.Equal(t, "pv-1", original["results"].([]interface{})[0].(map[string]interface{})["id"])
}

func TestDeepCopyValueNil(t *testing.T) {
	assert.Nil(t, DeepCopyValue(context.Background(), nil, logger.NewTestLogger()))
}

func TestGetNestedValue(t *testing.T) {
	m := map[string]interface{}{
		"results": map[string]interface{}{
			"page": map[string]interface{}{"next_start": "cursor-2"},
		},
	}

	value, ok := GetNestedValue(m, "results.page.next_start")
	require.True(t, ok)
	assert.Equal(t, "cursor-2", value)

	_, ok = GetNestedValue(m, "results.missing.next_start")
	assert.False(t, ok)

	_, ok = GetNestedValue(m, "results.page.next_start.too_deep")
	assert.False(t, ok)
}
