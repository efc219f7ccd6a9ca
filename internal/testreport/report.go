package testreport

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"bmr-backend/internal/dates"
	"bmr-backend/internal/models"
)

const (
	ResultComply        = "Comply"
	ResultDoesNotComply = "Does not Comply"
)

var ErrInvalidResult = errors.New("result must be Comply or Does not Comply")

// Row is one line of any of the three result tables.
type Row struct {
	SNo      string `json:"sNo"`
	Test     string `json:"test"`
	Standard string `json:"standard"`
	Unit     string `json:"unit,omitempty"`
	Result   string `json:"result"`
}

type Report struct {
	ID                uint       `json:"id,omitempty"`
	ProductName       string     `json:"productName"`
	ReportNo          string     `json:"reportNo"`
	PerformanceLevel  Level      `json:"performanceLevel"`
	BatchNo           string     `json:"batchNo"`
	SupplierID        *uint      `json:"supplierId,omitempty"`
	SupplierName      string     `json:"supplierName,omitempty"`
	BatchSize         string     `json:"batchSize"`
	InvoiceNo         string     `json:"invoiceNo"`
	InvoiceDate       dates.Date `json:"invoiceDate"`
	MfgDate           dates.Date `json:"mfgDate"`
	ExpDate           dates.Date `json:"expDate"`
	SampleQty         string     `json:"sampleQty"`
	SampleDate        dates.Date `json:"sampleDate"`
	ReleaseDate       dates.Date `json:"releaseDate"`
	FabricComposition string     `json:"fabricComposition"`
	Parameters        []Row      `json:"parametersResults"`
	Biocompatibility  []Row      `json:"biocompatibilityResult"`
	Visual            []Row      `json:"visualResults"`
	Result            string     `json:"result"`
	TestedBy          string     `json:"testedBy"`
	ReviewedBy        string     `json:"reviewedBy"`
}

// Defaults are the signatories pre-filled on a new report.
type Defaults struct {
	TestedBy   string
	ReviewedBy string
}

// DefaultParameters builds the fabric test rows for a fresh report at level.
func DefaultParameters(level Level) []Row {
	specs := Parameters(level)
	rows := make([]Row, len(specs))
	for i, p := range specs {
		rows[i] = Row{
			SNo:      serial(i),
			Test:     p.Test,
			Standard: p.Standard,
			Unit:     p.Unit,
			Result:   p.defaultResult(),
		}
	}
	return rows
}

// DefaultBiocompatibility carries the reference standard in the result column.
func DefaultBiocompatibility() []Row {
	rows := make([]Row, len(biocompatibility))
	for i, b := range biocompatibility {
		rows[i] = Row{SNo: fmt.Sprint(i + 1), Test: b.Test, Standard: b.Standard, Result: b.Reference}
	}
	return rows
}

func DefaultVisual() []Row {
	rows := make([]Row, len(visual))
	for i, v := range visual {
		rows[i] = Row{SNo: fmt.Sprint(i + 1), Test: v.Parameter, Standard: v.Standard, Result: v.DefaultResult}
	}
	return rows
}

func NewReport(d Defaults) Report {
	return Report{
		PerformanceLevel: DefaultLevel,
		Parameters:       DefaultParameters(DefaultLevel),
		Biocompatibility: DefaultBiocompatibility(),
		Visual:           DefaultVisual(),
		Result:           ResultComply,
		TestedBy:         d.TestedBy,
		ReviewedBy:       d.ReviewedBy,
	}
}

// ApplyLevel rebuilds the parameter rows for level. Results and units the
// user already entered are kept by position.
func ApplyLevel(current []Row, level Level) []Row {
	rows := DefaultParameters(level)
	for i := range rows {
		if i >= len(current) {
			break
		}
		if current[i].Result != "" {
			rows[i].Result = current[i].Result
		}
		if current[i].Unit != "" {
			rows[i].Unit = current[i].Unit
		}
	}
	return rows
}

// MergeStatic fills blank template columns of results from defaults at the
// same position. Rows past the end of defaults are kept as given.
func MergeStatic(results, defaults []Row) []Row {
	out := make([]Row, len(results))
	for i, r := range results {
		if i < len(defaults) {
			d := defaults[i]
			fill(&r.SNo, d.SNo)
			fill(&r.Test, d.Test)
			fill(&r.Standard, d.Standard)
			fill(&r.Unit, d.Unit)
		}
		out[i] = r
	}
	return out
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// Prepare merges template text into the result tables before a save.
func (r Report) Prepare() (Report, error) {
	switch r.Result {
	case ResultComply, ResultDoesNotComply:
	case "":
		r.Result = ResultComply
	default:
		return r, ErrInvalidResult
	}
	r.PerformanceLevel = ParseLevel(string(r.PerformanceLevel))
	r.Parameters = MergeStatic(r.Parameters, DefaultParameters(r.PerformanceLevel))
	r.Biocompatibility = MergeStatic(r.Biocompatibility, DefaultBiocompatibility())
	r.Visual = MergeStatic(r.Visual, DefaultVisual())
	return r, nil
}

// ToDomain reads a stored report. The supplier name is taken from the
// preloaded association when present.
func ToDomain(row models.RMTestReport) (Report, error) {
	r := Report{
		ID:                row.ID,
		ProductName:       row.ProductName,
		ReportNo:          row.ReportNo,
		PerformanceLevel:  ParseLevel(row.PerformanceLevel),
		BatchNo:           row.BatchNo,
		SupplierID:        row.SupplierID,
		BatchSize:         row.BatchSize,
		InvoiceNo:         row.InvoiceNo,
		InvoiceDate:       dates.Parse(row.InvoiceDate),
		MfgDate:           dates.Parse(row.MfgDate),
		ExpDate:           dates.Parse(row.ExpDate),
		SampleQty:         row.SampleQty,
		SampleDate:        dates.Parse(row.SampleDate),
		ReleaseDate:       dates.Parse(row.ReleaseDate),
		FabricComposition: row.FabricComposition,
		Result:            row.Result,
		TestedBy:          row.TestedBy,
		ReviewedBy:        row.ReviewedBy,
	}
	if row.Supplier != nil {
		r.SupplierName = row.Supplier.Name
	}
	var err error
	if r.Parameters, err = decodeRows(row.ParametersResults); err != nil {
		return Report{}, fmt.Errorf("parameters_results: %w", err)
	}
	if r.Biocompatibility, err = decodeRows(row.BiocompatibilityResult); err != nil {
		return Report{}, fmt.Errorf("biocompatibility_result: %w", err)
	}
	if r.Visual, err = decodeRows(row.VisualResults); err != nil {
		return Report{}, fmt.Errorf("visual_results: %w", err)
	}
	return r, nil
}

// ToPersisted writes dates as UTC instants.
func ToPersisted(r Report, authorID *uint) (models.RMTestReport, error) {
	row := models.RMTestReport{
		ID:                r.ID,
		ProductName:       r.ProductName,
		ReportNo:          r.ReportNo,
		PerformanceLevel:  string(ParseLevel(string(r.PerformanceLevel))),
		BatchNo:           r.BatchNo,
		SupplierID:        r.SupplierID,
		BatchSize:         r.BatchSize,
		InvoiceNo:         r.InvoiceNo,
		InvoiceDate:       r.InvoiceDate.FormatInstant(),
		MfgDate:           r.MfgDate.FormatInstant(),
		ExpDate:           r.ExpDate.FormatInstant(),
		SampleQty:         r.SampleQty,
		SampleDate:        r.SampleDate.FormatInstant(),
		ReleaseDate:       r.ReleaseDate.FormatInstant(),
		FabricComposition: r.FabricComposition,
		Result:            r.Result,
		TestedBy:          r.TestedBy,
		ReviewedBy:        r.ReviewedBy,
		GeneratedBy:       authorID,
	}
	var err error
	if row.ParametersResults, err = encodeRows(r.Parameters); err != nil {
		return models.RMTestReport{}, err
	}
	if row.BiocompatibilityResult, err = encodeRows(r.Biocompatibility); err != nil {
		return models.RMTestReport{}, err
	}
	if row.VisualResults, err = encodeRows(r.Visual); err != nil {
		return models.RMTestReport{}, err
	}
	return row, nil
}

func decodeRows(raw datatypes.JSON) ([]Row, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []Row{}, nil
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

func encodeRows(rows []Row) (datatypes.JSON, error) {
	if rows == nil {
		rows = []Row{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
