package bmr

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrStepsMismatch = errors.New("process steps do not match bmr type")
	ErrMissingSteps  = errors.New("process steps missing")
)

// DefaultAssignees are the people pre-filled into signature fields.
type DefaultAssignees struct {
	ProductionVerifier    string
	QAVerifier            string
	SterilizationOperator string
	HeadProduction        string
	MaterialMeasuredBy    string
	MaterialVerifiedBy    string
	Brand                 string
}

// NewRecord returns a blank record of type t with default assignees filled in
// and one empty row in each material table.
func NewRecord(t Type, d DefaultAssignees) Record {
	rec := Record{
		Type:             t,
		Status:           StatusDraft,
		RawMaterials:     []RawMaterial{d.NewRawMaterial(1)},
		PackingMaterials: []PackingMaterial{d.NewPackingMaterial(1)},
		Steps:            EmptySteps(t),
	}
	if t == TypeKit {
		rec.ProductType = "Kit"
		rec.KitContents = []KitContent{{SNo: "1"}}
	}
	d.Fill(&rec)
	return rec
}

func (d DefaultAssignees) NewRawMaterial(sNo int) RawMaterial {
	return RawMaterial{
		SNo:        fmt.Sprint(sNo),
		MeasuredBy: d.MaterialMeasuredBy,
		VerifiedBy: d.MaterialVerifiedBy,
	}
}

func (d DefaultAssignees) NewPackingMaterial(sNo int) PackingMaterial {
	return PackingMaterial{
		SNo:         fmt.Sprint(sNo),
		ReturnedQty: "0",
		MeasuredBy:  d.MaterialMeasuredBy,
		VerifiedBy:  d.MaterialVerifiedBy,
	}
}

// Fill sets every empty signature field that has a default.
func (d DefaultAssignees) Fill(rec *Record) {
	setIfEmpty(&rec.BrandName, d.Brand)

	switch s := rec.Steps.(type) {
	case StandardSteps:
		for i := range s {
			setIfEmpty(&s[i].VerifiedProduction, d.ProductionVerifier)
			setIfEmpty(&s[i].VerifiedQA, d.QAVerifier)
		}
		rec.Steps = s
	case KitSteps:
		for i := range s {
			setIfEmpty(&s[i].VerifiedProduction, d.ProductionVerifier)
			setIfEmpty(&s[i].VerifiedQA, d.QAVerifier)
		}
		rec.Steps = s
	}

	setIfEmpty(&rec.Sterilization.Operator, d.SterilizationOperator)
	setIfEmpty(&rec.Sterilization.VerifiedBy, d.QAVerifier)
	setIfEmpty(&rec.Labeling.ProductionVerification, d.ProductionVerifier)
	setIfEmpty(&rec.Labeling.QAVerification, d.QAVerifier)
	setIfEmpty(&rec.Declarations.HeadProduction, d.HeadProduction)
	setIfEmpty(&rec.Declarations.QAHead, d.QAVerifier)
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func (r Record) Validate() error {
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if r.Steps == nil {
		return ErrMissingSteps
	}
	if r.Steps.Type() != r.Type {
		return fmt.Errorf("%w: record is %s, steps are %s", ErrStepsMismatch, r.Type, r.Steps.Type())
	}
	return nil
}

// Standard returns the standard steps when the record is a standard BMR.
func (r Record) Standard() (StandardSteps, bool) {
	s, ok := r.Steps.(StandardSteps)
	return s, ok && r.Type == TypeStandard
}

// Kit returns the kit steps when the record is a kit BMR.
func (r Record) Kit() (KitSteps, bool) {
	s, ok := r.Steps.(KitSteps)
	return s, ok && r.Type == TypeKit
}

// Clone returns a deep copy; no slice is shared with r.
func (r Record) Clone() Record {
	out := r
	out.RawMaterials = cloneSlice(r.RawMaterials)
	out.PackingMaterials = cloneSlice(r.PackingMaterials)
	out.KitContents = cloneSlice(r.KitContents)
	if r.Steps != nil {
		out.Steps = r.Steps.clone()
	}
	if r.RawMaterialForSpecification != nil {
		id := *r.RawMaterialForSpecification
		out.RawMaterialForSpecification = &id
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// recordJSON is Record with process steps spelled out in the stored shape.
type recordJSON struct {
	recordAlias
	ProcessSteps json.RawMessage `json:"processSteps"`
}

type recordAlias Record

func (r Record) MarshalJSON() ([]byte, error) {
	steps := r.Steps
	if steps == nil {
		steps = EmptySteps(r.Type)
	}
	raw, err := encodeSteps(steps)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{recordAlias: recordAlias(r), ProcessSteps: raw})
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var aux recordJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	rec := Record(aux.recordAlias)
	t, err := ParseType(string(rec.Type))
	if err != nil {
		return err
	}
	rec.Type = t
	steps, err := decodeSteps(aux.ProcessSteps, t)
	if err != nil {
		return fmt.Errorf("processSteps: %w", err)
	}
	rec.Steps = steps
	*r = rec
	return nil
}
