package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"bmr-backend/internal/bmr"
)

// Section names a repeated table of the form.
type Section string

const (
	SectionRawMaterials     Section = "rawMaterials"
	SectionPackingMaterials Section = "packingMaterials"
	SectionKitContents      Section = "kitContents"
	SectionKitItems         Section = "kitItems"
)

var ErrUnknownSection = errors.New("unknown section")

// Action is one of SetField, AddRow or RemoveRow.
type Action interface {
	apply(r Reducer, rec *bmr.Record) error
}

type SetField struct {
	Path  []string
	Value string
}

type AddRow struct {
	Section Section
	// Stage is required for SectionKitItems.
	Stage string
}

type RemoveRow struct {
	Section Section
	Stage   string
	Index   int
}

// Reducer applies actions to states. Its defaults seed new material rows.
type Reducer struct {
	Defaults bmr.DefaultAssignees
}

// Update returns the state after a. On error the input state is returned
// unchanged alongside the error.
func (r Reducer) Update(s State, a Action) (State, error) {
	if s.Submitting() {
		return s, ErrSubmitInProgress
	}
	next := s.clone()
	if err := a.apply(r, &next.Record); err != nil {
		return s, err
	}
	if sf, ok := a.(SetField); ok {
		delete(next.FieldErrors, joinPath(sf.Path))
		if affectsYield(sf.Path) {
			RecomputeYield(&next.Record)
		}
	}
	return next, nil
}

func (a SetField) apply(_ Reducer, rec *bmr.Record) error {
	return setField(rec, a.Path, a.Value)
}

func (a AddRow) apply(r Reducer, rec *bmr.Record) error {
	switch a.Section {
	case SectionRawMaterials:
		rec.RawMaterials = append(rec.RawMaterials, r.Defaults.NewRawMaterial(len(rec.RawMaterials)+1))
	case SectionPackingMaterials:
		rec.PackingMaterials = append(rec.PackingMaterials, r.Defaults.NewPackingMaterial(len(rec.PackingMaterials)+1))
	case SectionKitContents:
		if rec.Type != bmr.TypeKit {
			return fmt.Errorf("%w: %s", ErrWrongType, a.Section)
		}
		rec.KitContents = append(rec.KitContents, bmr.KitContent{SNo: strconv.Itoa(len(rec.KitContents) + 1)})
	case SectionKitItems:
		return editKitItems(rec, a.Stage, func(items []bmr.KitProcessItem) ([]bmr.KitProcessItem, error) {
			return append(items, bmr.KitProcessItem{}), nil
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSection, a.Section)
	}
	return nil
}

func (a RemoveRow) apply(_ Reducer, rec *bmr.Record) error {
	switch a.Section {
	case SectionRawMaterials:
		rows, err := removeAt(rec.RawMaterials, a.Index)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].SNo = strconv.Itoa(i + 1)
		}
		rec.RawMaterials = rows
	case SectionPackingMaterials:
		rows, err := removeAt(rec.PackingMaterials, a.Index)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].SNo = strconv.Itoa(i + 1)
		}
		rec.PackingMaterials = rows
	case SectionKitContents:
		if rec.Type != bmr.TypeKit {
			return fmt.Errorf("%w: %s", ErrWrongType, a.Section)
		}
		rows, err := removeAt(rec.KitContents, a.Index)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].SNo = strconv.Itoa(i + 1)
		}
		rec.KitContents = rows
	case SectionKitItems:
		return editKitItems(rec, a.Stage, func(items []bmr.KitProcessItem) ([]bmr.KitProcessItem, error) {
			return removeAt(items, a.Index)
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSection, a.Section)
	}
	return nil
}

func editKitItems(rec *bmr.Record, stageName string, fn func([]bmr.KitProcessItem) ([]bmr.KitProcessItem, error)) error {
	steps, ok := rec.Kit()
	if !ok {
		return fmt.Errorf("%w: %s", ErrWrongType, SectionKitItems)
	}
	stage, err := bmr.ParseStage(stageName)
	if err != nil {
		return err
	}
	items, err := fn(steps[stage].Items)
	if err != nil {
		return err
	}
	steps[stage].Items = items
	rec.Steps = steps
	return nil
}

// removeAt returns a new slice without element i.
func removeAt[T any](rows []T, i int) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return nil, fmt.Errorf("%w: %d", ErrBadIndex, i)
	}
	out := make([]T, 0, len(rows)-1)
	out = append(out, rows[:i]...)
	return append(out, rows[i+1:]...), nil
}

// actionJSON is the wire form of an Action:
//
//	{"type": "setField", "path": ["rawMaterials", "0", "lotNo"], "value": "L-9"}
//	{"type": "addRow", "section": "kitItems", "stage": "cutting"}
//	{"type": "removeRow", "section": "rawMaterials", "index": 1}
type actionJSON struct {
	Type    string          `json:"type"`
	Path    json.RawMessage `json:"path"`
	Value   string          `json:"value"`
	Section Section         `json:"section"`
	Stage   string          `json:"stage"`
	Index   int             `json:"index"`
}

// DecodeAction reads an action. A path may be a list of segments or a
// dotted string.
func DecodeAction(b []byte) (Action, error) {
	var aux actionJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return nil, err
	}
	switch aux.Type {
	case "setField":
		path, err := decodePath(aux.Path)
		if err != nil {
			return nil, err
		}
		return SetField{Path: path, Value: aux.Value}, nil
	case "addRow":
		return AddRow{Section: aux.Section, Stage: aux.Stage}, nil
	case "removeRow":
		return RemoveRow{Section: aux.Section, Stage: aux.Stage, Index: aux.Index}, nil
	}
	return nil, fmt.Errorf("unknown action %q", aux.Type)
}

func decodePath(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrUnknownPath)
	}
	var segs []string
	if err := json.Unmarshal(raw, &segs); err == nil {
		return segs, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("path must be a string or a list of strings")
	}
	return ParsePath(s), nil
}
