package bmr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rows written by older versions of the form hold numbers where text is
// expected and objects keyed "0", "1", ... where lists are expected. The
// helpers below read all of those shapes.

func isEmptyJSON(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func parseLoose(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return stringifyScalars(v), nil
}

// stringifyScalars turns numbers and booleans into their text so they decode
// into string fields.
func stringifyScalars(v any) any {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		for i := range x {
			x[i] = stringifyScalars(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = stringifyScalars(x[k])
		}
		return x
	}
	return v
}

// asList orders an object keyed by indices into a slice. Numeric keys come
// first in numeric order, anything else after them by name.
func asList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			ni, ei := strconv.Atoi(keys[i])
			nj, ej := strconv.Atoi(keys[j])
			switch {
			case ei == nil && ej == nil:
				return ni < nj
			case ei == nil:
				return true
			case ej == nil:
				return false
			}
			return keys[i] < keys[j]
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = x[k]
		}
		return out
	case string:
		// double-encoded column
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			if inner, err := parseLoose([]byte(s)); err == nil {
				return asList(inner)
			}
		}
	}
	return nil
}

func remarshal(v any, dst any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func decodeListValue[T any](v any) ([]T, error) {
	items := asList(v)
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		var t T
		if _, ok := item.(map[string]any); ok {
			if err := remarshal(item, &t); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeList[T any](raw []byte) ([]T, error) {
	if isEmptyJSON(raw) {
		return nil, nil
	}
	v, err := parseLoose(raw)
	if err != nil {
		return nil, err
	}
	return decodeListValue[T](v)
}

func decodeObject(raw []byte, dst any) error {
	if isEmptyJSON(raw) {
		return nil
	}
	v, err := parseLoose(raw)
	if err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		if isEmptyJSON([]byte(s)) {
			return nil
		}
		if v, err = parseLoose([]byte(s)); err != nil {
			return err
		}
	}
	if _, ok := v.(map[string]any); !ok {
		return nil
	}
	return remarshal(v, dst)
}

func decodeSteps(raw []byte, t Type) (ProcessSteps, error) {
	out := EmptySteps(t)
	if isEmptyJSON(raw) {
		return out, nil
	}
	v, err := parseLoose(raw)
	if err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		if v, err = parseLoose([]byte(s)); err != nil {
			return nil, err
		}
	}
	byKey, ok := v.(map[string]any)
	if !ok {
		return out, nil
	}

	switch steps := out.(type) {
	case StandardSteps:
		for key, val := range byKey {
			stage, err := ParseStage(key)
			if err != nil {
				continue
			}
			if _, ok := val.(map[string]any); !ok {
				continue
			}
			if err := remarshal(val, &steps[stage]); err != nil {
				return nil, fmt.Errorf("stage %s: %w", key, err)
			}
		}
		return steps, nil
	case KitSteps:
		for key, val := range byKey {
			stage, err := ParseStage(key)
			if err != nil {
				continue
			}
			ks, err := decodeKitStage(val)
			if err != nil {
				return nil, fmt.Errorf("stage %s: %w", key, err)
			}
			steps[stage] = ks
		}
		return steps, nil
	}
	return out, nil
}

func decodeKitStage(v any) (KitStage, error) {
	var ks KitStage
	obj, ok := v.(map[string]any)
	if !ok {
		// a bare list of items
		items, err := decodeListValue[KitProcessItem](v)
		ks.Items = items
		return ks, err
	}
	if s, ok := obj["verifiedProduction"].(string); ok {
		ks.VerifiedProduction = s
	}
	if s, ok := obj["verifiedQA"].(string); ok {
		ks.VerifiedQA = s
	}
	items, err := decodeListValue[KitProcessItem](obj["items"])
	if err != nil {
		return ks, err
	}
	ks.Items = items
	return ks, nil
}

// encodeSteps writes the stored shape: an object keyed by the variant's stage
// keys, items always as lists.
func encodeSteps(steps ProcessSteps) ([]byte, error) {
	switch s := steps.(type) {
	case StandardSteps:
		out := make(map[string]ProcessStep, StageCount)
		for _, st := range Stages() {
			out[st.Key(TypeStandard)] = canonicalStep(s[st])
		}
		return json.Marshal(out)
	case KitSteps:
		out := make(map[string]KitStage, StageCount)
		for _, st := range Stages() {
			ks := s[st]
			items := make([]KitProcessItem, len(ks.Items))
			for i, item := range ks.Items {
				items[i] = canonicalKitItem(item)
			}
			ks.Items = items
			out[st.Key(TypeKit)] = ks
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("unsupported process steps %T", steps)
}

func canonicalStep(p ProcessStep) ProcessStep {
	p.Date = p.Date.AsDay()
	p.StartTime = p.StartTime.AsInstant()
	p.EndTime = p.EndTime.AsInstant()
	return p
}

func canonicalKitItem(p KitProcessItem) KitProcessItem {
	p.Date = p.Date.AsDay()
	p.StartTime = p.StartTime.AsInstant()
	p.EndTime = p.EndTime.AsInstant()
	return p
}

func encodeList[T any](rows []T) ([]byte, error) {
	if rows == nil {
		rows = []T{}
	}
	return json.Marshal(rows)
}
