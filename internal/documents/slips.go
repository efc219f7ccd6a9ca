package documents

import (
	"strconv"
	"time"

	"bmr-backend/internal/bmr"
)

// RenderTransferSlip is the material requisition slip for a batch, listing
// raw and packing materials. on is the slip date.
func RenderTransferSlip(rec bmr.Record, on time.Time) Document {
	var rows [][]string
	for _, m := range rec.RawMaterials {
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), m.Name, m.Unit, m.RequiredQty, m.IssuedQty, m.LotNo})
	}
	for _, m := range rec.PackingMaterials {
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), m.Name, m.Unit, m.RequiredQty, m.IssuedQty, m.LotNo})
	}

	return Document{
		Title: "Material_Transfer_" + rec.BatchNo,
		Blocks: []Block{
			slipBanner(transferSlipRef, "Material Requisition Slip"),
			Fields{Rows: [][]Field{
				{{"From:", "Production"}, {"Date:", on.In(DisplayZone).Format(dayLayout)}},
				{{"Material Required for:", rec.ProductName}},
				{{"Batch No:", rec.BatchNo}, {"Department:", "Production"}},
			}},
			Table{
				Columns: []Column{
					{Title: "S.No.", Width: 0.08}, {Title: "Product Description", Width: 0.37},
					{Title: "Unit", Width: 0.1}, {Title: "Qty. Req.", Width: 0.13},
					{Title: "Qty. Iss.", Width: 0.13}, {Title: "Lot No"},
				},
				Rows:  rows,
				Empty: "No materials found for this batch.",
			},
			Signatures{Boxes: []Signature{
				{Role: "Requisitioned By"},
				{Role: "Sanctioned By"},
				{Role: "Issued By"},
				{Role: "Received By"},
			}},
		},
	}
}

// RenderSamplingAdvice holds two slips: the QC sampling advice and the
// control sample collection request.
func RenderSamplingAdvice(rec bmr.Record) Document {
	batch := orDash(rec.BatchNo)
	return Document{
		Title: "Sampling_Advice_" + rec.BatchNo,
		Blocks: []Block{
			slipBanner(samplingAdviceRef, "Sampling Advice"),
			Fields{Rows: [][]Field{
				{{"From:", "Production"}, {"Ref. No. :", batch + " / SA"}},
			}},
			Paragraph{Text: "To: The Office QC", Bold: true},
			Paragraph{Text: "Pls. collect the following sample for Finished Product"},
			Fields{Rows: [][]Field{
				{{"Name of Item/Product", rec.ProductName}},
				{{"Lot/Batch No.", rec.BatchNo}},
				{{"Lot/Batch/Target Size", rec.BatchSize}},
				{{"Manufactured By", companyName}},
				{{"Date of Manufacturing", day(rec.MfgDate)}},
				{{"Date of Expiry", day(rec.ExpDate)}},
				{{"Sample Qty.", or(rec.FinalPacking.ControlSampleQty, "2 Units")}},
			}},
			Signatures{Boxes: []Signature{
				{Role: "ISSUED BY", Caption: "PRODUCTION"},
				{Role: "DRAWN BY / DATE", Caption: "QC DEPARTMENT"},
			}},
			Divider{},
			slipBanner(controlSampleRef, "Request Slip for Collection for Control Sample"),
			Fields{Rows: [][]Field{
				{{"From:", "Production"}, {"S. No. :", batch + " / CS"}},
			}},
			Paragraph{Text: "To: The Office QC", Bold: true},
			Paragraph{Text: "Pls. collect the control sample of following batch No."},
			Fields{Rows: [][]Field{
				{{"Name of Product", rec.ProductName}},
				{{"Batch No./Lot No.", rec.BatchNo}},
				{{"Sample Qty.", or(rec.FinalPacking.ControlSampleQty, "02 Unit")}},
				{{"Mfg Date", day(rec.MfgDate)}},
				{{"Exp. Date", day(rec.ExpDate)}},
			}},
			Signatures{Boxes: []Signature{
				{Role: "Head of Production", Caption: "PRODUCTION"},
				{Role: "Received By / Date", Caption: "QC DEPARTMENT"},
			}},
		},
	}
}
