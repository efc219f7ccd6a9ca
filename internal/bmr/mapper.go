package bmr

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"bmr-backend/internal/dates"
	"bmr-backend/internal/models"
)

// Mapper converts between the stored row and the edit-time record.
type Mapper struct {
	Defaults DefaultAssignees
}

func NewMapper(d DefaultAssignees) Mapper {
	return Mapper{Defaults: d}
}

// ToDomain never fails on malformed dates; they come back unparsed. An error
// means a JSON column could not be decoded at all.
func (m Mapper) ToDomain(row models.BMR) (Record, error) {
	t, err := ParseType(row.BMRType)
	if err != nil {
		return Record{}, err
	}
	status, err := ParseStatus(row.Status)
	if err != nil {
		// unknown statuses are shown as drafts
		status = StatusDraft
	}

	rec := Record{
		ID:                          row.ID,
		Type:                        t,
		ProductType:                 row.ProductType,
		ProductName:                 row.ProductName,
		ProductCode:                 row.ProductCode,
		BrandName:                   row.BrandName,
		ProductSize:                 row.ProductSize,
		BatchNo:                     row.BatchNo,
		BatchSize:                   row.BatchSize,
		TypeOfPacking:               row.TypeOfPacking,
		MfgDate:                     dates.Parse(row.MfgDate),
		ExpDate:                     dates.Parse(row.ExpDate),
		DateOfCommencement:          dates.Parse(row.DateOfCommencement),
		DateOfCompletion:            dates.Parse(row.DateOfCompletion),
		Status:                      status,
		RawMaterialForSpecification: row.RawMaterialForSpecification,
		DocumentNo:                  row.DocumentNo,
		RevisionNo:                  row.RevisionNo,
		IssueNo:                     row.IssueNo,
	}

	if rec.RawMaterials, err = decodeList[RawMaterial](row.RawMaterials); err != nil {
		return Record{}, fmt.Errorf("raw_materials: %w", err)
	}
	if rec.PackingMaterials, err = decodeList[PackingMaterial](row.PackingMaterials); err != nil {
		return Record{}, fmt.Errorf("packing_materials: %w", err)
	}
	if rec.KitContents, err = decodeList[KitContent](row.KitContents); err != nil {
		return Record{}, fmt.Errorf("kit_contents: %w", err)
	}
	if rec.Steps, err = decodeSteps(row.ProcessSteps, t); err != nil {
		return Record{}, fmt.Errorf("process_steps: %w", err)
	}
	if err := decodeObject(row.Sterilization, &rec.Sterilization); err != nil {
		return Record{}, fmt.Errorf("sterilization: %w", err)
	}
	if err := decodeObject(row.Labeling, &rec.Labeling); err != nil {
		return Record{}, fmt.Errorf("labeling: %w", err)
	}
	if err := decodeObject(row.FinalPacking, &rec.FinalPacking); err != nil {
		return Record{}, fmt.Errorf("final_packing: %w", err)
	}
	if err := decodeObject(row.Declarations, &rec.Declarations); err != nil {
		return Record{}, fmt.Errorf("declarations: %w", err)
	}

	if rec.RawMaterials == nil {
		rec.RawMaterials = []RawMaterial{}
	}
	if rec.PackingMaterials == nil {
		rec.PackingMaterials = []PackingMaterial{}
	}
	if t == TypeKit && rec.KitContents == nil {
		rec.KitContents = []KitContent{}
	}

	m.Defaults.Fill(&rec)
	return rec, nil
}

// ToPersisted validates rec and flattens it into a row. Date-only fields are
// written as YYYY-MM-DD and time-of-day fields as UTC instants.
func (m Mapper) ToPersisted(rec Record, authorID *uint) (models.BMR, error) {
	if err := rec.Validate(); err != nil {
		return models.BMR{}, err
	}
	status := rec.Status
	if status == "" {
		status = StatusDraft
	}

	row := models.BMR{
		ID:                          rec.ID,
		BMRType:                     string(rec.Type),
		ProductType:                 rec.ProductType,
		ProductName:                 rec.ProductName,
		ProductCode:                 rec.ProductCode,
		BrandName:                   rec.BrandName,
		ProductSize:                 rec.ProductSize,
		BatchNo:                     rec.BatchNo,
		BatchSize:                   rec.BatchSize,
		TypeOfPacking:               rec.TypeOfPacking,
		MfgDate:                     rec.MfgDate.FormatDay(),
		ExpDate:                     rec.ExpDate.FormatDay(),
		DateOfCommencement:          rec.DateOfCommencement.FormatDay(),
		DateOfCompletion:            rec.DateOfCompletion.FormatDay(),
		Status:                      string(status),
		RawMaterialForSpecification: rec.RawMaterialForSpecification,
		DocumentNo:                  rec.DocumentNo,
		RevisionNo:                  rec.RevisionNo,
		IssueNo:                     rec.IssueNo,
		GeneratedBy:                 authorID,
	}

	var err error
	if row.RawMaterials, err = encodeList(rec.RawMaterials); err != nil {
		return models.BMR{}, err
	}
	if row.PackingMaterials, err = encodeList(rec.PackingMaterials); err != nil {
		return models.BMR{}, err
	}
	if row.KitContents, err = encodeList(rec.KitContents); err != nil {
		return models.BMR{}, err
	}
	if row.ProcessSteps, err = encodeSteps(rec.Steps); err != nil {
		return models.BMR{}, err
	}

	st := rec.Sterilization
	st.Date = st.Date.AsDay()
	if row.Sterilization, err = jsonColumn(st); err != nil {
		return models.BMR{}, err
	}
	lb := rec.Labeling
	lb.DateTime = lb.DateTime.AsInstant()
	if row.Labeling, err = jsonColumn(lb); err != nil {
		return models.BMR{}, err
	}
	if row.FinalPacking, err = jsonColumn(rec.FinalPacking); err != nil {
		return models.BMR{}, err
	}
	dc := rec.Declarations
	dc.ReleaseDate = dc.ReleaseDate.AsDay()
	if row.Declarations, err = jsonColumn(dc); err != nil {
		return models.BMR{}, err
	}
	return row, nil
}

func jsonColumn(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
