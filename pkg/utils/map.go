// Package utils provides general-purpose utility functions.
package utils

import (
	"context"
	"strings"

	"github.com/mitchellh/copystructure"

	"github.com/threadlane/delegator/pkg/logger"
)

// DeepCopyValue creates a deep copy of an arbitrary JSON value. On copy
// failure it logs a warning and returns the original value.
func DeepCopyValue(ctx context.Context, value interface{}, log logger.Logger) interface{} {
	if value == nil {
		return nil
	}
	copied, err := copystructure.Copy(value)
	if err != nil {
		log.Warnf(ctx, "Failed to deep copy value: %v. Using the original.", err)
		return value
	}
	return copied
}

// GetNestedValue retrieves a nested value from a map using a dot-separated
// path.
func GetNestedValue(m map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = m

	for _, part := range parts {
		switch v := current.(type) {
		case map[string]interface{}:
			val, ok := v[part]
			if !ok {
				return nil, false
			}
			current = val
		default:
			return nil, false
		}
	}

	return current, true
}
