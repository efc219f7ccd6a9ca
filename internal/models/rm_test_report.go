package models

import (
	"time"

	"gorm.io/datatypes"
)

// RMTestReport is an in-house raw material (fabric lot) test report.
type RMTestReport struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	ProductName            string         `gorm:"size:200;not null" json:"product_name"`
	ReportNo               string         `gorm:"size:100;index" json:"report_no"`
	PerformanceLevel       string         `gorm:"size:20" json:"performance_level"`
	BatchNo                string         `gorm:"size:100;index" json:"batch_no"`
	SupplierID             *uint          `gorm:"index" json:"supplier_id"`
	Supplier               *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	BatchSize              string         `gorm:"size:100" json:"batch_size"`
	InvoiceNo              string         `gorm:"size:100" json:"invoice_no"`
	InvoiceDate            string         `gorm:"size:40" json:"invoice_date"`
	MfgDate                string         `gorm:"size:40" json:"mfg_date"`
	ExpDate                string         `gorm:"size:40" json:"exp_date"`
	SampleQty              string         `gorm:"size:100" json:"sample_qty"`
	SampleDate             string         `gorm:"size:40" json:"sample_date"`
	ReleaseDate            string         `gorm:"size:40" json:"release_date"`
	FabricComposition      string         `gorm:"size:500" json:"fabric_composition"`
	ParametersResults      datatypes.JSON `gorm:"type:jsonb" json:"parameters_results"`
	BiocompatibilityResult datatypes.JSON `gorm:"type:jsonb" json:"biocompatibility_result"`
	VisualResults          datatypes.JSON `gorm:"type:jsonb" json:"visual_results"`
	Result                 string         `gorm:"size:40" json:"result"`
	TestedBy               string         `gorm:"size:100" json:"tested_by"`
	ReviewedBy             string         `gorm:"size:100" json:"reviewed_by"`
	GeneratedBy            *uint          `json:"generated_by"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

func (RMTestReport) TableName() string { return "rm_test_reports" }
