package transform

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Eval applies prog to current. Pure except for scratchpad writes and event
// emission; the first failing node wins and no partial result is returned.
// current follows encoding/json conventions: map[string]interface{},
// []interface{}, string, float64, bool, nil.
func Eval(ctx context.Context, tc *Context, prog Language, current interface{}, state *State) (interface{}, *StepError) {
	switch node := prog.(type) {
	case *At:
		obj, isObject := current.(map[string]interface{})
		if isObject {
			if value, ok := obj[node.Key]; ok {
				return value, nil
			}
		}
		serr := newStepError(node.Key)
		if isObject {
			serr.Choices = objectKeys(obj)
		}
		return nil, serr

	case *Array:
		arr, ok := current.([]interface{})
		if !ok {
			return nil, newStepError("<Not an array>")
		}
		out := make([]interface{}, 0, len(arr))
		for i, elem := range arr {
			value, serr := Eval(ctx, tc, node.Next, elem, state)
			if serr != nil {
				return nil, serr.prependHistory(fmt.Sprintf("[%d]", i))
			}
			out = append(out, value)
		}
		return out, nil

	case *Object:
		out := make(map[string]interface{}, len(node.Entries))
		for _, entry := range node.Entries {
			value, serr := Eval(ctx, tc, entry.Value, current, state)
			if serr != nil {
				return nil, serr.prependHistory(entry.Key)
			}
			// repeated keys: last wins
			out[entry.Key] = value
		}
		return out, nil

	case *Splat:
		if len(node.Terms) == 0 {
			return nil, newStepError("<Empty splat>")
		}
		var last interface{}
		for _, term := range node.Terms {
			value, serr := Eval(ctx, tc, term, current, state)
			if serr != nil {
				return nil, serr
			}
			last = value
		}
		return last, nil

	case *Set:
		state.Set(node.Name, current)
		return current, nil

	case *Get:
		value, ok := state.Get(node.Name)
		if !ok {
			return nil, newStepError(fmt.Sprintf("Get(%s)", node.Name))
		}
		return value, nil

	case *Const:
		return node.Value, nil

	case *Identity:
		return current, nil

	case *Map:
		intermediate, serr := Eval(ctx, tc, node.First, current, state)
		if serr != nil {
			return nil, serr
		}
		return Eval(ctx, tc, node.Second, intermediate, state)

	case *Length:
		switch sized := current.(type) {
		case []interface{}:
			return float64(len(sized)), nil
		case map[string]interface{}:
			return float64(len(sized)), nil
		default:
			tc.Log.Warnf(ctx, "Attempted to call size on an unsized value: %v", current)
			return nil, nil
		}

	case *Join:
		arr, ok := current.([]interface{})
		if !ok {
			tc.Log.Warnf(ctx, "Attempted to join on an unexpected type: %v", current)
			return nil, &StepError{History: []string{}}
		}
		elems := make([]string, 0, len(arr))
		for _, elem := range arr {
			str, ok := elem.(string)
			if !ok {
				tc.Log.Warnf(ctx, "Attempted to join a non-string element: %v", elem)
				continue
			}
			elems = append(elems, str)
		}
		return strings.Join(elems, node.Sep), nil

	case *Default:
		if current == nil {
			return Eval(ctx, tc, node.Next, nil, state)
		}
		return current, nil

	case *Flatten:
		arr, ok := current.([]interface{})
		if !ok {
			return nil, newStepError("<Not an array>")
		}
		out := []interface{}{}
		for i, elem := range arr {
			inner, ok := elem.([]interface{})
			if !ok {
				return nil, newStepError("<Not an array>").prependHistory(fmt.Sprintf("[%d]", i))
			}
			out = append(out, inner...)
		}
		return out, nil

	case *EmitEvent:
		if tc.Sink != nil {
			tc.Sink.Emit(node.Topic, node.OwnerID, node.EventType, node.ContextID, current, node.PageContext)
		}
		return current, nil

	default:
		return nil, newStepError(fmt.Sprintf("<Unknown node %T>", prog))
	}
}

func objectKeys(obj map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
