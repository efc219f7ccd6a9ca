package models

import (
	"time"

	"gorm.io/datatypes"
)

// BMR is one batch manufacturing record as stored. Nested sections are kept
// in jsonb columns with the camelCase shape the editing form submits.
type BMR struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	BMRType            string `gorm:"column:bmr_type;size:20;not null;default:standard;index" json:"bmr_type"`
	ProductType        string `gorm:"size:20" json:"product_type"`
	ProductName        string `gorm:"size:200;not null" json:"product_name"`
	ProductCode        string `gorm:"size:100;index" json:"product_code"`
	BrandName          string `gorm:"size:100" json:"brand_name"`
	ProductSize        string `gorm:"size:100" json:"product_size"`
	BatchNo            string `gorm:"size:100;index" json:"batch_no"`
	BatchSize          string `gorm:"size:100" json:"batch_size"`
	TypeOfPacking      string `gorm:"size:200" json:"type_of_packing"`
	MfgDate            string `gorm:"size:40" json:"mfg_date"`
	ExpDate            string `gorm:"size:40" json:"exp_date"`
	DateOfCommencement string `gorm:"size:40" json:"date_of_commencement"`
	DateOfCompletion   string `gorm:"size:40" json:"date_of_completion"`

	RawMaterials     datatypes.JSON `gorm:"type:jsonb" json:"raw_materials"`
	PackingMaterials datatypes.JSON `gorm:"type:jsonb" json:"packing_materials"`
	KitContents      datatypes.JSON `gorm:"type:jsonb" json:"kit_contents"`
	ProcessSteps     datatypes.JSON `gorm:"type:jsonb" json:"process_steps"`
	Sterilization    datatypes.JSON `gorm:"type:jsonb" json:"sterilization"`
	Labeling         datatypes.JSON `gorm:"type:jsonb" json:"labeling"`
	FinalPacking     datatypes.JSON `gorm:"type:jsonb" json:"final_packing"`
	Declarations     datatypes.JSON `gorm:"type:jsonb" json:"declarations"`

	Status                      string `gorm:"size:20;not null;default:draft" json:"status"`
	RawMaterialForSpecification *uint  `gorm:"index" json:"raw_material_for_specification"`
	DocumentNo                  string `gorm:"size:50" json:"document_no"`
	RevisionNo                  string `gorm:"size:50" json:"revision_no"`
	IssueNo                     string `gorm:"size:50" json:"issue_no"`

	// last user who saved the record
	GeneratedBy *uint `json:"generated_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BMR) TableName() string { return "bmr" }
