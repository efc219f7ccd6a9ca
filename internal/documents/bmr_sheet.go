package documents

import (
	"strconv"

	"bmr-backend/internal/bmr"
)

const defaultManufacturingDeclaration = "I verify that all the raw materials, equipment's, machinery and preparations are satisfactory to the best of my knowledge."

var kitStageColumns = []Column{
	{Title: "Item Name", Width: 0.22},
	{Title: "Date", Width: 0.12},
	{Title: "Start", Width: 0.14},
	{Title: "End", Width: 0.14},
	{Title: "Exp / Prod Qty", Width: 0.12},
	{Title: "Rej", Width: 0.08},
	{Title: "Operator", Width: 0.18},
}

// RenderBMRSheet lays out the full batch manufacturing record. The process
// section follows rec.Type; steps of the other variant render as empty
// stage tables.
func RenderBMRSheet(rec bmr.Record) Document {
	info := BMRInfo(rec)
	doc := Document{
		Title: "BMR_" + rec.BatchNo,
		Header: &Header{
			Company: companyName,
			Address: companyAddress,
			Title:   "Batch Manufacturing Record",
			Meta: []Field{
				{Label: "Doc No:", Value: info.DocumentNo},
				{Label: "Rev No:", Value: info.RevisionNo},
				{Label: "Issue No:", Value: info.IssueNo},
			},
			PageNumbers: true,
		},
		Footer: &Footer{Left: companyName, Right: info.DocumentNo},
	}

	doc.Blocks = append(doc.Blocks,
		Heading{Text: "1. Product & Batch Details"},
		Fields{Rows: [][]Field{
			{{"Product Name", rec.ProductName}, {"Product Code", rec.ProductCode}},
			{{"Product Type", rec.ProductType}, {"Type of Packing", rec.TypeOfPacking}},
			{{"Brand Name", rec.BrandName}, {"Product Size", rec.ProductSize}},
			{{"Batch No", rec.BatchNo}, {"Batch Size", rec.BatchSize}},
			{{"Mfg. Date", day(rec.MfgDate)}, {"Exp. Date", day(rec.ExpDate)}},
			{{"Commencement", day(rec.DateOfCommencement)}, {"Completion", day(rec.DateOfCompletion)}},
		}},
	)

	if rec.Type == bmr.TypeKit {
		rows := make([][]string, len(rec.KitContents))
		for i, k := range rec.KitContents {
			rows[i] = []string{strconv.Itoa(i + 1), k.ItemName, k.Unit, k.Qty, k.Size, k.MaterialUsed, k.Supplier}
		}
		doc.Blocks = append(doc.Blocks, Table{
			Title: "Kit Contents Detail",
			Columns: []Column{
				{Title: "S#", Width: 0.06}, {Title: "Description", Width: 0.24}, {Title: "Unit", Width: 0.08},
				{Title: "Qty", Width: 0.08}, {Title: "Size", Width: 0.1}, {Title: "Material Used", Width: 0.24},
				{Title: "Supplier"},
			},
			Rows: rows,
		})
	}

	raw := make([][]string, len(rec.RawMaterials))
	for i, m := range rec.RawMaterials {
		raw[i] = []string{strconv.Itoa(i + 1), m.Name, m.Unit, m.LotNo, m.RequiredQty, m.IssuedQty, m.VerifiedBy}
	}
	packing := make([][]string, len(rec.PackingMaterials))
	for i, m := range rec.PackingMaterials {
		packing[i] = []string{strconv.Itoa(i + 1), m.Name, m.Unit, m.LotNo, m.RequiredQty, m.IssuedQty, m.UsedQty, m.VerifiedBy}
	}
	doc.Blocks = append(doc.Blocks,
		Heading{Text: "2. Raw Material Table"},
		Table{
			Columns: []Column{
				{Title: "S#", Width: 0.06}, {Title: "Material Name", Width: 0.26}, {Title: "Unit", Width: 0.08},
				{Title: "Lot No", Width: 0.14}, {Title: "Req Qty", Width: 0.1}, {Title: "Iss Qty", Width: 0.1},
				{Title: "Verified By"},
			},
			Rows: raw,
		},
		Heading{Text: "3. Packing Material Table"},
		Table{
			Columns: []Column{
				{Title: "S#", Width: 0.06}, {Title: "Packing Material", Width: 0.24}, {Title: "Unit", Width: 0.08},
				{Title: "Lot No", Width: 0.14}, {Title: "Req", Width: 0.08}, {Title: "Iss", Width: 0.08},
				{Title: "Used", Width: 0.08}, {Title: "Verified"},
			},
			Rows: packing,
		},
		Heading{Text: "4. Manufacturing Process"},
	)
	doc.Blocks = append(doc.Blocks, processBlocks(rec)...)

	st, lb, fp, dc := rec.Sterilization, rec.Labeling, rec.FinalPacking, rec.Declarations
	doc.Blocks = append(doc.Blocks,
		Heading{Text: "5. Sterilization"},
		Fields{Rows: [][]Field{
			{{"Type", st.Type}, {"Date", day(st.Date)}},
			{{"Qty", st.Qty}, {"Ref No", st.RefNo}},
			{{"Cycle No", st.CycleNo}, {"Operator", st.Operator}},
			{{"Verified", st.VerifiedBy}},
		}},
		Heading{Text: "6. Labeling"},
		Fields{Rows: [][]Field{
			{{"Date / Time", clock(lb.DateTime)}, {"Labeled Qty", lb.Qty}},
			{{"Rejection", lb.Rejection}, {"Operator", lb.Operator}},
			{{"Prod Ver.", lb.ProductionVerification}, {"QA Ver.", lb.QAVerification}},
		}},
		Heading{Text: "7. Final Packing & Yield"},
		Fields{Rows: [][]Field{
			{{"Total Qty", fp.TotalQty}, {"Final Packed", fp.FinalPackedQty}},
			{{"Testing Qty", fp.TestingQty}, {"Actual Yield", fp.ActualYield}},
			{{"Control Sample", fp.ControlSampleQty}, {"Surgeon Sample", fp.SurgeonSampleQty}},
		}},
		Heading{Text: "8. Declarations & Release"},
		Paragraph{Text: or(dc.ManufacturingDeclaration, defaultManufacturingDeclaration)},
		Fields{Rows: [][]Field{
			{{"Release Date", day(dc.ReleaseDate)}, {"Test Report No", dc.TestReportNo}},
		}},
	)
	if dc.BatchReleaseOrder != "" {
		doc.Blocks = append(doc.Blocks, Paragraph{Text: dc.BatchReleaseOrder})
	}
	doc.Blocks = append(doc.Blocks, Signatures{Boxes: []Signature{
		{Role: "Head Production", Name: "(" + or(dc.HeadProduction, "SIGNATURE") + ")"},
		{Role: "Head QA", Name: "(" + or(dc.QAHead, "SIGNATURE") + ")"},
	}})
	return doc
}

func processBlocks(rec bmr.Record) []Block {
	var out []Block
	switch rec.Type {
	case bmr.TypeStandard:
		steps, ok := rec.Standard()
		for _, stage := range bmr.Stages() {
			if !ok {
				out = append(out, emptyStage(stage))
				continue
			}
			p := steps[stage]
			out = append(out, Fields{Rows: [][]Field{
				{{stage.Label(), ""}},
				{{"Date", day(p.Date)}, {"Start / End", clock(p.StartTime) + " / " + clock(p.EndTime)}},
				{{"Operator", p.Operator}, {"Ver. Prod", p.VerifiedProduction}},
				{{"Exp / Prod Qty", p.ExpectedQty + " / " + p.QtyProduced}, {"Rej / Ver QA", p.Rejection + " / " + p.VerifiedQA}},
				{{"Reprocessed Qty", p.ReprocessedQty}, {"Temp / RH", p.Temperature + " / " + p.Humidity}},
			}})
		}
	case bmr.TypeKit:
		steps, ok := rec.Kit()
		for _, stage := range bmr.Stages() {
			if !ok {
				out = append(out, emptyStage(stage))
				continue
			}
			ks := steps[stage]
			rows := make([][]string, len(ks.Items))
			for i, it := range ks.Items {
				rows[i] = []string{it.ItemName, day(it.Date), clock(it.StartTime), clock(it.EndTime),
					it.ExpectedQty + " / " + it.QtyProduced, it.Rejection, it.Operator}
			}
			out = append(out,
				Table{Title: stage.Label(), Columns: kitStageColumns, Rows: rows},
				Paragraph{Text: "Verified By (Prod): " + orDash(ks.VerifiedProduction) + "    Verified By (QA): " + orDash(ks.VerifiedQA)},
			)
		}
	}
	return out
}

func emptyStage(stage bmr.Stage) Block {
	return Table{Title: stage.Label(), Columns: kitStageColumns}
}
