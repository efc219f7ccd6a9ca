package bmr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"bmr-backend/internal/dates"
	"bmr-backend/internal/models"
)

var testDefaults = DefaultAssignees{
	ProductionVerifier:    "Prod Verifier",
	QAVerifier:            "QA Verifier",
	SterilizationOperator: "Steri Operator",
	HeadProduction:        "Head Production",
	MaterialMeasuredBy:    "Measurer",
	MaterialVerifiedBy:    "Prod Verifier",
	Brand:                 "SHI",
}

func uintPtr(v uint) *uint { return &v }

func standardRecord() Record {
	rec := NewRecord(TypeStandard, testDefaults)
	rec.ID = 7
	rec.ProductType = "Gown"
	rec.ProductName = "Surgical Gown"
	rec.ProductCode = "SG-01"
	rec.BatchNo = "B-100"
	rec.BatchSize = "42 Set"
	rec.TypeOfPacking = "Pouch"
	rec.MfgDate = dates.Day(2025, time.January, 10)
	rec.ExpDate = dates.Day(2030, time.January, 9)
	rec.RawMaterialForSpecification = uintPtr(3)
	rec.RawMaterials[0].Name = "SMS Fabric"
	rec.RawMaterials[0].LotNo = "L-1"

	steps, _ := rec.Standard()
	steps[StageCutting].Date = dates.Day(2025, time.January, 10)
	steps[StageCutting].StartTime = dates.At(time.Date(2025, time.January, 10, 4, 30, 0, 0, time.UTC))
	steps[StageCutting].Operator = "Ravi"
	steps[StageCutting].QtyProduced = "42"
	rec.Steps = steps

	rec.Sterilization.Type = "ETO"
	rec.Sterilization.Date = dates.Day(2025, time.January, 12)
	rec.Labeling.DateTime = dates.At(time.Date(2025, time.January, 13, 9, 0, 0, 0, time.UTC))
	rec.FinalPacking.FinalPackedQty = "40"
	rec.Declarations.ReleaseDate = dates.Day(2025, time.January, 20)
	return rec
}

func kitRecord() Record {
	rec := NewRecord(TypeKit, testDefaults)
	rec.ID = 9
	rec.ProductName = "Delivery Kit"
	rec.RawMaterialForSpecification = uintPtr(5)
	rec.KitContents[0].ItemName = "Drape"
	steps, _ := rec.Kit()
	steps[StagePacking].Items = []KitProcessItem{
		{ItemName: "Drape", Operator: "Asha", Date: dates.Day(2025, time.March, 1)},
		{ItemName: "Gown", Operator: "Asha"},
	}
	rec.Steps = steps
	return rec
}

func TestRoundTripStandard(t *testing.T) {
	m := NewMapper(testDefaults)
	rec := standardRecord()

	row, err := m.ToPersisted(rec, uintPtr(1))
	require.NoError(t, err)
	assert.Equal(t, "standard", row.BMRType)
	assert.Equal(t, "2025-01-10", row.MfgDate)
	assert.Equal(t, uint(1), *row.GeneratedBy)

	back, err := m.ToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestRoundTripKit(t *testing.T) {
	m := NewMapper(testDefaults)
	rec := kitRecord()

	row, err := m.ToPersisted(rec, nil)
	require.NoError(t, err)

	back, err := m.ToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, rec, back)

	steps, ok := back.Kit()
	require.True(t, ok)
	assert.Len(t, steps[StagePacking].Items, 2)
	_, ok = back.Standard()
	assert.False(t, ok)
}

func TestPersistedStageKeys(t *testing.T) {
	m := NewMapper(testDefaults)

	row, err := m.ToPersisted(standardRecord(), nil)
	require.NoError(t, err)
	var std map[string]map[string]any
	require.NoError(t, json.Unmarshal(row.ProcessSteps, &std))
	assert.Contains(t, std, "4.1 Cutting")
	assert.Contains(t, std, "4.7 Inner Box Packing")
	assert.Equal(t, "2025-01-10", std["4.1 Cutting"]["date"])
	assert.Equal(t, "2025-01-10T04:30:00.000Z", std["4.1 Cutting"]["startTime"])

	row, err = m.ToPersisted(kitRecord(), nil)
	require.NoError(t, err)
	var kit map[string]map[string]any
	require.NoError(t, json.Unmarshal(row.ProcessSteps, &kit))
	assert.Contains(t, kit, "step5_packing")
	assert.IsType(t, []any{}, kit["step5_packing"]["items"])
	assert.IsType(t, []any{}, kit["step1_cutting"]["items"])
}

func TestTimeFieldsWrittenAsInstants(t *testing.T) {
	m := NewMapper(testDefaults)
	rec := standardRecord()
	steps, _ := rec.Standard()
	// a day value typed into a time field still persists as an instant
	steps[StageFolding].EndTime = dates.Day(2025, time.February, 2)
	rec.Steps = steps

	row, err := m.ToPersisted(rec, nil)
	require.NoError(t, err)
	var stored map[string]map[string]any
	require.NoError(t, json.Unmarshal(row.ProcessSteps, &stored))
	assert.Equal(t, "2025-02-02T00:00:00.000Z", stored["4.4 Folding"]["endTime"])

	var lb map[string]any
	require.NoError(t, json.Unmarshal(row.Labeling, &lb))
	assert.Equal(t, "2025-01-13T09:00:00.000Z", lb["dateTime"])
}

func TestDateFieldsSentAsInstantsKeepLocalDay(t *testing.T) {
	m := NewMapper(testDefaults)
	rec := standardRecord()
	rec.MfgDate = dates.Parse("2024-03-04T18:30:00.000Z")
	steps, _ := rec.Standard()
	steps[StageCutting].Date = dates.Parse("2024-03-04T18:30:00.000Z")
	rec.Steps = steps
	rec.Sterilization.Date = dates.Parse("2024-03-04T20:00:00.000Z")

	row, err := m.ToPersisted(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", row.MfgDate)

	var stored map[string]map[string]any
	require.NoError(t, json.Unmarshal(row.ProcessSteps, &stored))
	assert.Equal(t, "2024-03-05", stored["4.1 Cutting"]["date"])

	var st map[string]any
	require.NoError(t, json.Unmarshal(row.Sterilization, &st))
	assert.Equal(t, "2024-03-05", st["date"])
}

func TestToDomainNumericKeyedItems(t *testing.T) {
	m := NewMapper(testDefaults)
	row := models.BMR{
		BMRType: "kit",
		ProcessSteps: datatypes.JSON(`{
			"step2_stitching": {
				"verifiedProduction": "Someone",
				"items": {"10": {"itemName": "third"}, "2": {"itemName": "second"}, "0": {"itemName": "first"}}
			}
		}`),
		RawMaterials: datatypes.JSON(`{"1": {"name": "b"}, "0": {"name": "a"}}`),
	}

	rec, err := m.ToDomain(row)
	require.NoError(t, err)

	steps, ok := rec.Kit()
	require.True(t, ok)
	items := steps[StageStitching].Items
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].ItemName)
	assert.Equal(t, "second", items[1].ItemName)
	assert.Equal(t, "third", items[2].ItemName)
	assert.Equal(t, "Someone", steps[StageStitching].VerifiedProduction)
	assert.Equal(t, "QA Verifier", steps[StageStitching].VerifiedQA)

	require.Len(t, rec.RawMaterials, 2)
	assert.Equal(t, "a", rec.RawMaterials[0].Name)

	again, err := m.ToPersisted(rec, nil)
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(again.RawMaterials, new([]any)))
	require.NoError(t, json.Unmarshal(again.ProcessSteps, &stored))
}

func TestToDomainToleratesLooseShapes(t *testing.T) {
	m := NewMapper(testDefaults)
	row := models.BMR{
		BMRType:      "standard",
		MfgDate:      "31/31/2024",
		ExpDate:      "2029-12-31T18:30:00.000Z",
		ProcessSteps: datatypes.JSON(`{"cutting": {"qtyProduced": 42, "startTime": "garbage"}, "unknown stage": {}}`),
		FinalPacking: datatypes.JSON(`{"finalPackedQty": 40, "testingQty": null}`),
		Labeling:     datatypes.JSON(`null`),
	}

	rec, err := m.ToDomain(row)
	require.NoError(t, err)
	assert.True(t, rec.MfgDate.IsUnparsed())
	assert.Equal(t, "31/31/2024", rec.MfgDate.FormatDay())
	assert.Equal(t, "2030-01-01", rec.ExpDate.FormatDay())
	assert.Equal(t, "40", rec.FinalPacking.FinalPackedQty)
	assert.Equal(t, "", rec.FinalPacking.TestingQty)
	assert.Equal(t, StatusDraft, rec.Status)

	steps, ok := rec.Standard()
	require.True(t, ok)
	assert.Equal(t, "42", steps[StageCutting].QtyProduced)
	assert.True(t, steps[StageCutting].StartTime.IsUnparsed())
	assert.Empty(t, rec.RawMaterials)
	assert.NotNil(t, rec.RawMaterials)

	// unparsed values are written back untouched
	again, err := m.ToPersisted(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "31/31/2024", again.MfgDate)
}

func TestToDomainUndecodableColumn(t *testing.T) {
	m := NewMapper(testDefaults)
	_, err := m.ToDomain(models.BMR{BMRType: "standard", RawMaterials: datatypes.JSON(`[{`)})
	assert.Error(t, err)
}

func TestToDomainFillsDefaults(t *testing.T) {
	m := NewMapper(testDefaults)
	rec, err := m.ToDomain(models.BMR{
		Declarations: datatypes.JSON(`{"qaHead": "Someone Else"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, TypeStandard, rec.Type)
	assert.Equal(t, "SHI", rec.BrandName)
	assert.Equal(t, "Steri Operator", rec.Sterilization.Operator)
	assert.Equal(t, "QA Verifier", rec.Sterilization.VerifiedBy)
	assert.Equal(t, "Prod Verifier", rec.Labeling.ProductionVerification)
	assert.Equal(t, "Head Production", rec.Declarations.HeadProduction)
	assert.Equal(t, "Someone Else", rec.Declarations.QAHead)

	steps, _ := rec.Standard()
	for _, st := range Stages() {
		assert.Equal(t, "Prod Verifier", steps[st].VerifiedProduction, st.Name())
		assert.Equal(t, "QA Verifier", steps[st].VerifiedQA, st.Name())
	}
}

func TestToPersistedRejectsMismatchedSteps(t *testing.T) {
	m := NewMapper(testDefaults)
	rec := standardRecord()
	rec.Steps = KitSteps{}

	_, err := m.ToPersisted(rec, nil)
	assert.ErrorIs(t, err, ErrStepsMismatch)

	rec.Steps = nil
	_, err = m.ToPersisted(rec, nil)
	assert.ErrorIs(t, err, ErrMissingSteps)
}

func TestStageAliasesAcceptedForEitherVariant(t *testing.T) {
	m := NewMapper(testDefaults)
	rec, err := m.ToDomain(models.BMR{
		BMRType:      "kit",
		ProcessSteps: datatypes.JSON(`{"4.5 Packing": [{"itemName": "Cap"}]}`),
	})
	require.NoError(t, err)
	steps, ok := rec.Kit()
	require.True(t, ok)
	require.Len(t, steps[StagePacking].Items, 1)
	assert.Equal(t, "Cap", steps[StagePacking].Items[0].ItemName)
}
