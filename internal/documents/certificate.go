package documents

import (
	"bmr-backend/internal/dates"
	"bmr-backend/internal/testreport"
)

type CertificateOptions struct {
	WithSignature       bool
	TestedBySignature   string
	ReviewedBySignature string
}

func certDay(d dates.Date) string {
	return orDash(d.DisplayIn("02.01.2006", DisplayZone))
}

func certMonth(d dates.Date) string {
	return orDash(d.DisplayIn("01.2006", DisplayZone))
}

func resultRows(rows []testreport.Row, withUnit bool) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		if withUnit {
			out[i] = []string{r.SNo, r.Test, r.Standard, orDash(r.Unit), r.Result}
		} else {
			out[i] = []string{r.SNo, r.Test, r.Standard, r.Result}
		}
	}
	return out
}

var (
	columnsWithUnit = []Column{
		{Title: "S.No.", Width: 0.08}, {Title: "TEST", Width: 0.30},
		{Title: "STANDARD REQUIREMENTS", Width: 0.30}, {Title: "UNIT", Width: 0.12},
		{Title: "RESULT", Width: 0.20},
	}
	columnsNoUnit = []Column{
		{Title: "S.No.", Width: 0.08}, {Title: "TEST", Width: 0.37},
		{Title: "STANDARD REQUIREMENTS", Width: 0.35}, {Title: "RESULT", Width: 0.20},
	}
)

// RenderCertificate builds the in-house raw material test report. Signature
// images are included only when opts.WithSignature is set.
func RenderCertificate(r testreport.Report, supplierName string, opts CertificateOptions) Document {
	if supplierName == "" {
		supplierName = r.SupplierName
	}
	tested := Signature{Role: "Tested By", Name: r.TestedBy}
	reviewed := Signature{Role: "Reviewed By", Name: r.ReviewedBy}
	if opts.WithSignature {
		tested.ImagePath = opts.TestedBySignature
		reviewed.ImagePath = opts.ReviewedBySignature
	}

	return Document{
		Title: "RM_Report_" + r.ReportNo,
		Header: &Header{
			Company: companyName,
			Address: companyAddress,
			Title:   "IN-HOUSE RAW MATERIAL TEST REPORT",
			Meta: []Field{
				{Label: "Document No.", Value: CertificateInfo.DocumentNo},
				{Label: "Revision No & Date", Value: CertificateInfo.RevisionNo},
				{Label: "Issue No & Date", Value: CertificateInfo.IssueNo},
			},
			PageNumbers: true,
		},
		Footer: &Footer{Left: companyName, Right: "Raw Material Test Report"},
		Blocks: []Block{
			Fields{Rows: [][]Field{
				{{"Product Name", r.ProductName}, {"T.R. No.", r.ReportNo}},
				{{"Batch No.", r.BatchNo}, {"Supplier Name", orDash(supplierName)}},
				{{"Invoice No.", r.InvoiceNo}, {"Invoice Date", certDay(r.InvoiceDate)}},
				{{"Total Batch Size", r.BatchSize}, {"Sample Qty.", r.SampleQty}},
				{{"Date of Sample", certDay(r.SampleDate)}, {"Mfg. Date", certMonth(r.MfgDate)}},
				{{"Exp. Date", certMonth(r.ExpDate)}, {"Release Date", certDay(r.ReleaseDate)}},
				{{"Performance Level", string(r.PerformanceLevel)}, {"Fabric Composition", r.FabricComposition}},
			}},
			Table{Title: "Fabric Test Parameters", Columns: columnsWithUnit, Rows: resultRows(r.Parameters, true)},
			Table{Title: "Biocompatibility Test (External Lab)", Columns: columnsNoUnit, Rows: resultRows(r.Biocompatibility, false)},
			Table{Title: "Visual Defects", Columns: columnsNoUnit, Rows: resultRows(r.Visual, false)},
			Fields{Rows: [][]Field{
				{{"Final Result", "The samples " + r.Result + " with all the specifications as per the standard"}},
			}},
			Signatures{Boxes: []Signature{tested, reviewed}},
		},
	}
}
