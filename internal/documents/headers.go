package documents

import "bmr-backend/internal/bmr"

const (
	companyName    = "SHI Mediwear Pvt. Ltd."
	companyBanner  = "SHI MEDIWEAR PVT. LTD."
	companyAddress = "93/13, Road No. 1A, Mundka Industrial Area, New Delhi - 110041."
)

// DocInfo is the controlled-document header of a form.
type DocInfo struct {
	DocumentNo string
	RevisionNo string
	IssueNo    string
}

var (
	StandardBMRInfo = DocInfo{"SMPL/PRD/BMR/01", "01 & 01.01.2023", "01 & 01.01.2023"}
	KitBMRInfo      = DocInfo{"SMPL/PRD/BMR/02", "01 & 24.06.2023", "02 & 01.07.2023"}
	CertificateInfo = DocInfo{"SMPL/QC/RM/01", "01 & 05.08.2025", "01 & 06.08.2025"}
)

const (
	transferSlipRef   = "SMPLMTL-04"
	samplingAdviceRef = "SMPLQC-12"
	controlSampleRef  = "SMPLFG-01"
	slipRevision      = "00"
)

// BMRInfo picks the header for rec. Values stored on the record win.
func BMRInfo(rec bmr.Record) DocInfo {
	info := StandardBMRInfo
	if rec.Type == bmr.TypeKit {
		info = KitBMRInfo
	}
	if rec.DocumentNo != "" {
		info.DocumentNo = rec.DocumentNo
	}
	if rec.RevisionNo != "" {
		info.RevisionNo = rec.RevisionNo
	}
	if rec.IssueNo != "" {
		info.IssueNo = rec.IssueNo
	}
	return info
}

func slipBanner(ref, title string) Banner {
	return Banner{Header: Header{
		Company: companyBanner,
		Title:   title,
		Meta: []Field{
			{Label: "Format Ref. No. :", Value: ref},
			{Label: "Rev. No. :", Value: slipRevision},
		},
	}}
}
