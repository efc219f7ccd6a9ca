package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bmr-backend/internal/bmr"
	"bmr-backend/internal/dates"
)

var (
	ErrUnknownPath = errors.New("unknown field")
	ErrBadIndex    = errors.New("row index out of range")
	ErrWrongType   = errors.New("field does not exist on this bmr type")
)

// ParsePath splits a dotted path such as "rawMaterials.0.lotNo".
func ParsePath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func joinPath(p []string) string { return strings.Join(p, ".") }

type textFields[T any] map[string]func(*T) *string

type dateFields[T any] map[string]func(*T) *dates.Date

// set assigns value to the named field of v. Date fields accept any text and
// keep what they cannot parse.
func set[T any](v *T, texts textFields[T], ds dateFields[T], name, value string) error {
	if f, ok := texts[name]; ok {
		*f(v) = value
		return nil
	}
	if f, ok := ds[name]; ok {
		*f(v) = dates.Parse(value)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownPath, name)
}

func rowIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %s", ErrBadIndex, s)
	}
	return i, nil
}

func setRow[T any](rows []T, path []string, texts textFields[T], ds dateFields[T], value string) error {
	if len(path) != 2 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, joinPath(path))
	}
	i, err := rowIndex(path[0], len(rows))
	if err != nil {
		return err
	}
	return set(&rows[i], texts, ds, path[1], value)
}

var recordTexts = textFields[bmr.Record]{
	"productType":   func(r *bmr.Record) *string { return &r.ProductType },
	"productName":   func(r *bmr.Record) *string { return &r.ProductName },
	"productCode":   func(r *bmr.Record) *string { return &r.ProductCode },
	"brandName":     func(r *bmr.Record) *string { return &r.BrandName },
	"productSize":   func(r *bmr.Record) *string { return &r.ProductSize },
	"batchNo":       func(r *bmr.Record) *string { return &r.BatchNo },
	"batchSize":     func(r *bmr.Record) *string { return &r.BatchSize },
	"typeOfPacking": func(r *bmr.Record) *string { return &r.TypeOfPacking },
	"documentNo":    func(r *bmr.Record) *string { return &r.DocumentNo },
	"revisionNo":    func(r *bmr.Record) *string { return &r.RevisionNo },
	"issueNo":       func(r *bmr.Record) *string { return &r.IssueNo },
}

var recordDates = dateFields[bmr.Record]{
	"mfgDate":            func(r *bmr.Record) *dates.Date { return &r.MfgDate },
	"expDate":            func(r *bmr.Record) *dates.Date { return &r.ExpDate },
	"dateOfCommencement": func(r *bmr.Record) *dates.Date { return &r.DateOfCommencement },
	"dateOfCompletion":   func(r *bmr.Record) *dates.Date { return &r.DateOfCompletion },
}

var rawMaterialTexts = textFields[bmr.RawMaterial]{
	"sNo":         func(m *bmr.RawMaterial) *string { return &m.SNo },
	"name":        func(m *bmr.RawMaterial) *string { return &m.Name },
	"unit":        func(m *bmr.RawMaterial) *string { return &m.Unit },
	"lotNo":       func(m *bmr.RawMaterial) *string { return &m.LotNo },
	"requiredQty": func(m *bmr.RawMaterial) *string { return &m.RequiredQty },
	"issuedQty":   func(m *bmr.RawMaterial) *string { return &m.IssuedQty },
	"measuredBy":  func(m *bmr.RawMaterial) *string { return &m.MeasuredBy },
	"verifiedBy":  func(m *bmr.RawMaterial) *string { return &m.VerifiedBy },
}

var packingMaterialTexts = textFields[bmr.PackingMaterial]{
	"sNo":         func(m *bmr.PackingMaterial) *string { return &m.SNo },
	"name":        func(m *bmr.PackingMaterial) *string { return &m.Name },
	"unit":        func(m *bmr.PackingMaterial) *string { return &m.Unit },
	"lotNo":       func(m *bmr.PackingMaterial) *string { return &m.LotNo },
	"requiredQty": func(m *bmr.PackingMaterial) *string { return &m.RequiredQty },
	"issuedQty":   func(m *bmr.PackingMaterial) *string { return &m.IssuedQty },
	"usedQty":     func(m *bmr.PackingMaterial) *string { return &m.UsedQty },
	"returnedQty": func(m *bmr.PackingMaterial) *string { return &m.ReturnedQty },
	"measuredBy":  func(m *bmr.PackingMaterial) *string { return &m.MeasuredBy },
	"verifiedBy":  func(m *bmr.PackingMaterial) *string { return &m.VerifiedBy },
}

var kitContentTexts = textFields[bmr.KitContent]{
	"sNo":          func(k *bmr.KitContent) *string { return &k.SNo },
	"itemName":     func(k *bmr.KitContent) *string { return &k.ItemName },
	"unit":         func(k *bmr.KitContent) *string { return &k.Unit },
	"qty":          func(k *bmr.KitContent) *string { return &k.Qty },
	"size":         func(k *bmr.KitContent) *string { return &k.Size },
	"materialUsed": func(k *bmr.KitContent) *string { return &k.MaterialUsed },
	"supplier":     func(k *bmr.KitContent) *string { return &k.Supplier },
}

var stepTexts = textFields[bmr.ProcessStep]{
	"operator":           func(p *bmr.ProcessStep) *string { return &p.Operator },
	"verifiedProduction": func(p *bmr.ProcessStep) *string { return &p.VerifiedProduction },
	"verifiedQA":         func(p *bmr.ProcessStep) *string { return &p.VerifiedQA },
	"qtyProduced":        func(p *bmr.ProcessStep) *string { return &p.QtyProduced },
	"rejection":          func(p *bmr.ProcessStep) *string { return &p.Rejection },
	"expectedQty":        func(p *bmr.ProcessStep) *string { return &p.ExpectedQty },
	"reprocessedQty":     func(p *bmr.ProcessStep) *string { return &p.ReprocessedQty },
	"temperature":        func(p *bmr.ProcessStep) *string { return &p.Temperature },
	"humidity":           func(p *bmr.ProcessStep) *string { return &p.Humidity },
}

var stepDates = dateFields[bmr.ProcessStep]{
	"date":      func(p *bmr.ProcessStep) *dates.Date { return &p.Date },
	"startTime": func(p *bmr.ProcessStep) *dates.Date { return &p.StartTime },
	"endTime":   func(p *bmr.ProcessStep) *dates.Date { return &p.EndTime },
}

var kitItemTexts = textFields[bmr.KitProcessItem]{
	"itemName":       func(p *bmr.KitProcessItem) *string { return &p.ItemName },
	"qtyProduced":    func(p *bmr.KitProcessItem) *string { return &p.QtyProduced },
	"expectedQty":    func(p *bmr.KitProcessItem) *string { return &p.ExpectedQty },
	"rejection":      func(p *bmr.KitProcessItem) *string { return &p.Rejection },
	"reprocessedQty": func(p *bmr.KitProcessItem) *string { return &p.ReprocessedQty },
	"temperature":    func(p *bmr.KitProcessItem) *string { return &p.Temperature },
	"humidity":       func(p *bmr.KitProcessItem) *string { return &p.Humidity },
	"operator":       func(p *bmr.KitProcessItem) *string { return &p.Operator },
}

var kitItemDates = dateFields[bmr.KitProcessItem]{
	"date":      func(p *bmr.KitProcessItem) *dates.Date { return &p.Date },
	"startTime": func(p *bmr.KitProcessItem) *dates.Date { return &p.StartTime },
	"endTime":   func(p *bmr.KitProcessItem) *dates.Date { return &p.EndTime },
}

var sterilizationTexts = textFields[bmr.Sterilization]{
	"type":       func(s *bmr.Sterilization) *string { return &s.Type },
	"qty":        func(s *bmr.Sterilization) *string { return &s.Qty },
	"refNo":      func(s *bmr.Sterilization) *string { return &s.RefNo },
	"cycleNo":    func(s *bmr.Sterilization) *string { return &s.CycleNo },
	"operatorNo": func(s *bmr.Sterilization) *string { return &s.Operator },
	"verifiedBy": func(s *bmr.Sterilization) *string { return &s.VerifiedBy },
}

var sterilizationDates = dateFields[bmr.Sterilization]{
	"date": func(s *bmr.Sterilization) *dates.Date { return &s.Date },
}

var labelingTexts = textFields[bmr.Labeling]{
	"qty":                    func(l *bmr.Labeling) *string { return &l.Qty },
	"rejection":              func(l *bmr.Labeling) *string { return &l.Rejection },
	"operator":               func(l *bmr.Labeling) *string { return &l.Operator },
	"productionVerification": func(l *bmr.Labeling) *string { return &l.ProductionVerification },
	"qaVerification":         func(l *bmr.Labeling) *string { return &l.QAVerification },
}

var labelingDates = dateFields[bmr.Labeling]{
	"dateTime": func(l *bmr.Labeling) *dates.Date { return &l.DateTime },
}

var finalPackingTexts = textFields[bmr.FinalPacking]{
	"totalQty":         func(f *bmr.FinalPacking) *string { return &f.TotalQty },
	"controlSampleQty": func(f *bmr.FinalPacking) *string { return &f.ControlSampleQty },
	"surgeonSampleQty": func(f *bmr.FinalPacking) *string { return &f.SurgeonSampleQty },
	"finalPackedQty":   func(f *bmr.FinalPacking) *string { return &f.FinalPackedQty },
	"testingQty":       func(f *bmr.FinalPacking) *string { return &f.TestingQty },
}

var declarationTexts = textFields[bmr.Declarations]{
	"headProduction":           func(d *bmr.Declarations) *string { return &d.HeadProduction },
	"qaHead":                   func(d *bmr.Declarations) *string { return &d.QAHead },
	"testReportNo":             func(d *bmr.Declarations) *string { return &d.TestReportNo },
	"manufacturingDeclaration": func(d *bmr.Declarations) *string { return &d.ManufacturingDeclaration },
	"batchReleaseOrder":        func(d *bmr.Declarations) *string { return &d.BatchReleaseOrder },
}

var declarationDates = dateFields[bmr.Declarations]{
	"releaseDate": func(d *bmr.Declarations) *dates.Date { return &d.ReleaseDate },
}

// setField applies one edit to rec, which the caller owns.
func setField(rec *bmr.Record, path []string, value string) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrUnknownPath)
	}
	head, rest := path[0], path[1:]

	switch head {
	case "rawMaterials":
		return setRow(rec.RawMaterials, rest, rawMaterialTexts, nil, value)
	case "packingMaterials":
		return setRow(rec.PackingMaterials, rest, packingMaterialTexts, nil, value)
	case "kitContents":
		if rec.Type != bmr.TypeKit {
			return fmt.Errorf("%w: %s", ErrWrongType, head)
		}
		return setRow(rec.KitContents, rest, kitContentTexts, nil, value)
	case "processSteps":
		return setStepField(rec, rest, value)
	case "sterilization":
		return setNested(&rec.Sterilization, rest, sterilizationTexts, sterilizationDates, value)
	case "labeling":
		return setNested(&rec.Labeling, rest, labelingTexts, labelingDates, value)
	case "finalPacking":
		if len(rest) == 1 && rest[0] == "actualYield" {
			return fmt.Errorf("%w: actualYield is computed", ErrUnknownPath)
		}
		return setNested(&rec.FinalPacking, rest, finalPackingTexts, nil, value)
	case "declarations":
		return setNested(&rec.Declarations, rest, declarationTexts, declarationDates, value)
	}

	if len(rest) != 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, joinPath(path))
	}
	switch head {
	case "status":
		st, err := bmr.ParseStatus(value)
		if err != nil {
			return err
		}
		rec.Status = st
		return nil
	case "rawMaterialForSpecification":
		if value == "" {
			rec.RawMaterialForSpecification = nil
			return nil
		}
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid test report id %q", value)
		}
		ref := uint(id)
		rec.RawMaterialForSpecification = &ref
		return nil
	}
	return set(rec, recordTexts, recordDates, head, value)
}

func setNested[T any](v *T, path []string, texts textFields[T], ds dateFields[T], value string) error {
	if len(path) != 1 {
		return fmt.Errorf("%w: %s", ErrUnknownPath, joinPath(path))
	}
	return set(v, texts, ds, path[0], value)
}

func setStepField(rec *bmr.Record, path []string, value string) error {
	if len(path) < 2 {
		return fmt.Errorf("%w: processSteps.%s", ErrUnknownPath, joinPath(path))
	}
	stage, err := bmr.ParseStage(path[0])
	if err != nil {
		return err
	}
	rest := path[1:]

	switch rec.Type {
	case bmr.TypeStandard:
		steps, ok := rec.Standard()
		if !ok {
			return bmr.ErrStepsMismatch
		}
		if err := setNested(&steps[stage], rest, stepTexts, stepDates, value); err != nil {
			return err
		}
		rec.Steps = steps
		return nil
	case bmr.TypeKit:
		steps, ok := rec.Kit()
		if !ok {
			return bmr.ErrStepsMismatch
		}
		ks := &steps[stage]
		switch {
		case len(rest) == 1 && rest[0] == "verifiedProduction":
			ks.VerifiedProduction = value
		case len(rest) == 1 && rest[0] == "verifiedQA":
			ks.VerifiedQA = value
		case rest[0] == "items":
			if err := setRow(ks.Items, rest[1:], kitItemTexts, kitItemDates, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: processSteps.%s", ErrUnknownPath, joinPath(path))
		}
		rec.Steps = steps
		return nil
	}
	return fmt.Errorf("unknown bmr type %q", rec.Type)
}

// affectsYield reports whether an edit at path changes an input of the yield.
func affectsYield(path []string) bool {
	switch joinPath(path) {
	case "batchSize", "finalPacking.finalPackedQty", "finalPacking.testingQty":
		return true
	}
	return false
}
