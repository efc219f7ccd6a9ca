// Package bmr holds the edit-time model of a batch manufacturing record and
// the mapping between it and the stored row.
package bmr

import (
	"fmt"

	"bmr-backend/internal/dates"
)

type Type string

const (
	TypeStandard Type = "standard"
	TypeKit      Type = "kit"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeStandard, TypeKit:
		return Type(s), nil
	case "":
		return TypeStandard, nil
	}
	return "", fmt.Errorf("unknown bmr type %q", s)
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusFinal    Status = "final"
	StatusReleased Status = "released"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusFinal, StatusReleased:
		return Status(s), nil
	case "":
		return StatusDraft, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type RawMaterial struct {
	SNo         string `json:"sNo"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	LotNo       string `json:"lotNo"`
	RequiredQty string `json:"requiredQty"`
	IssuedQty   string `json:"issuedQty"`
	MeasuredBy  string `json:"measuredBy"`
	VerifiedBy  string `json:"verifiedBy"`
}

type PackingMaterial struct {
	SNo         string `json:"sNo"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	LotNo       string `json:"lotNo"`
	RequiredQty string `json:"requiredQty"`
	IssuedQty   string `json:"issuedQty"`
	UsedQty     string `json:"usedQty"`
	ReturnedQty string `json:"returnedQty"`
	MeasuredBy  string `json:"measuredBy"`
	VerifiedBy  string `json:"verifiedBy"`
}

type KitContent struct {
	SNo          string `json:"sNo"`
	ItemName     string `json:"itemName"`
	Unit         string `json:"unit"`
	Qty          string `json:"qty"`
	Size         string `json:"size"`
	MaterialUsed string `json:"materialUsed"`
	Supplier     string `json:"supplier"`
}

// ProcessStep is one stage row of a standard record.
type ProcessStep struct {
	Date               dates.Date `json:"date"`
	StartTime          dates.Date `json:"startTime"`
	EndTime            dates.Date `json:"endTime"`
	Operator           string     `json:"operator"`
	VerifiedProduction string     `json:"verifiedProduction"`
	VerifiedQA         string     `json:"verifiedQA"`
	QtyProduced        string     `json:"qtyProduced"`
	Rejection          string     `json:"rejection"`
	ExpectedQty        string     `json:"expectedQty"`
	ReprocessedQty     string     `json:"reprocessedQty"`
	Temperature        string     `json:"temperature"`
	Humidity           string     `json:"humidity"`
}

// KitProcessItem is one kit component worked in a stage.
type KitProcessItem struct {
	ItemName       string     `json:"itemName"`
	Date           dates.Date `json:"date"`
	StartTime      dates.Date `json:"startTime"`
	EndTime        dates.Date `json:"endTime"`
	QtyProduced    string     `json:"qtyProduced"`
	ExpectedQty    string     `json:"expectedQty"`
	Rejection      string     `json:"rejection"`
	ReprocessedQty string     `json:"reprocessedQty"`
	Temperature    string     `json:"temperature"`
	Humidity       string     `json:"humidity"`
	Operator       string     `json:"operator"`
}

// KitStage carries the per-component rows of a stage and the stage's shared
// verification signatures.
type KitStage struct {
	VerifiedProduction string           `json:"verifiedProduction"`
	VerifiedQA         string           `json:"verifiedQA"`
	Items              []KitProcessItem `json:"items"`
}

type Sterilization struct {
	Type       string     `json:"type"`
	Date       dates.Date `json:"date"`
	Qty        string     `json:"qty"`
	RefNo      string     `json:"refNo"`
	CycleNo    string     `json:"cycleNo"`
	Operator   string     `json:"operatorNo"`
	VerifiedBy string     `json:"verifiedBy"`
}

type Labeling struct {
	DateTime               dates.Date `json:"dateTime"`
	Qty                    string     `json:"qty"`
	Rejection              string     `json:"rejection"`
	Operator               string     `json:"operator"`
	ProductionVerification string     `json:"productionVerification"`
	QAVerification         string     `json:"qaVerification"`
}

type FinalPacking struct {
	TotalQty         string `json:"totalQty"`
	ControlSampleQty string `json:"controlSampleQty"`
	SurgeonSampleQty string `json:"surgeonSampleQty"`
	FinalPackedQty   string `json:"finalPackedQty"`
	ActualYield      string `json:"actualYield"`
	TestingQty       string `json:"testingQty"`
}

type Declarations struct {
	HeadProduction           string     `json:"headProduction"`
	QAHead                   string     `json:"qaHead"`
	ReleaseDate              dates.Date `json:"releaseDate"`
	TestReportNo             string     `json:"testReportNo"`
	ManufacturingDeclaration string     `json:"manufacturingDeclaration"`
	BatchReleaseOrder        string     `json:"batchReleaseOrder"`
}

// Record is the nested edit-time shape of a BMR.
type Record struct {
	ID                 uint       `json:"id,omitempty"`
	Type               Type       `json:"bmrType"`
	ProductType        string     `json:"productType,omitempty"`
	ProductName        string     `json:"productName"`
	ProductCode        string     `json:"productCode"`
	BrandName          string     `json:"brandName"`
	ProductSize        string     `json:"productSize"`
	BatchNo            string     `json:"batchNo"`
	BatchSize          string     `json:"batchSize"`
	TypeOfPacking      string     `json:"typeOfPacking"`
	MfgDate            dates.Date `json:"mfgDate"`
	ExpDate            dates.Date `json:"expDate"`
	DateOfCommencement dates.Date `json:"dateOfCommencement"`
	DateOfCompletion   dates.Date `json:"dateOfCompletion"`

	RawMaterials     []RawMaterial     `json:"rawMaterials"`
	PackingMaterials []PackingMaterial `json:"packingMaterials"`
	KitContents      []KitContent      `json:"kitContents,omitempty"`

	// Steps always agrees with Type; see Validate.
	Steps ProcessSteps `json:"-"`

	Sterilization Sterilization `json:"sterilization"`
	Labeling      Labeling      `json:"labeling"`
	FinalPacking  FinalPacking  `json:"finalPacking"`
	Declarations  Declarations  `json:"declarations"`

	Status                      Status `json:"status"`
	RawMaterialForSpecification *uint  `json:"rawMaterialForSpecification,omitempty"`
	DocumentNo                  string `json:"documentNo"`
	RevisionNo                  string `json:"revisionNo"`
	IssueNo                     string `json:"issueNo"`
}
