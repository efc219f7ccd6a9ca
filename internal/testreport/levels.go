// Package testreport models the in-house raw material test report and its
// per-performance-level parameter templates.
package testreport

import "fmt"

type Level string

const (
	Level1 Level = "LEVEL 1"
	Level2 Level = "LEVEL 2"
	Level3 Level = "LEVEL 3"
	Level4 Level = "LEVEL 4"

	DefaultLevel = Level3
)

func Levels() []Level { return []Level{Level1, Level2, Level3, Level4} }

// ParseLevel maps unknown input to DefaultLevel.
func ParseLevel(s string) Level {
	for _, l := range Levels() {
		if string(l) == s {
			return l
		}
	}
	return DefaultLevel
}

// ParameterSpec is the template of one fabric test row.
type ParameterSpec struct {
	Test        string
	Standard    string
	Unit        string
	UnitOptions []string
}

const (
	testImpact      = "Impact Penetration (gm)"
	testHydrostatic = "Hydrostatic Resistance"
	testCleanliness = "Cleanliness Microbial (CFU/100 cm²)"
	standardNA      = "NA"
)

var (
	tensileUnits  = []string{"N", "Kgf"}
	burstingUnits = []string{"kPa", "Kg/cm²"}
)

var levelOverrides = map[Level]struct{ impact, hydrostatic string }{
	Level1: {"≤ 4.5", standardNA},
	Level2: {"≤ 1.0", "≥ 20"},
	Level3: {"≤ 1.0", "≥ 50"},
	Level4: {standardNA, standardNA},
}

// Parameters returns the fabric test rows for a level.
func Parameters(level Level) []ParameterSpec {
	o, ok := levelOverrides[level]
	if !ok {
		o = levelOverrides[DefaultLevel]
	}
	return []ParameterSpec{
		{Test: "Basic Weight (GSM)", Standard: "35 to 100 GSM ± 2 GSM", Unit: "GSM"},
		{Test: testImpact, Standard: o.impact, Unit: "g"},
		{Test: testHydrostatic, Standard: o.hydrostatic, Unit: "cmwc"},
		{Test: "Tensile Strength - Dry (MD) (Newton/Kgf)", Standard: "≥ 20 / 2.1", Unit: "N", UnitOptions: tensileUnits},
		{Test: "Tensile Strength - Dry (CD) (Newton/Kgf)", Standard: "≥ 20 / 2.1", Unit: "N", UnitOptions: tensileUnits},
		{Test: "Tensile Strength - Wet (MD) (Newton/Kgf)", Standard: "≥ 20 / 2.1", Unit: "N", UnitOptions: tensileUnits},
		{Test: "Tensile Strength - Wet (CD) (Newton/Kgf)", Standard: "≥ 20 / 2.1", Unit: "N", UnitOptions: tensileUnits},
		{Test: "Elongation - MD (Dry)", Standard: "Min 30%", Unit: "%"},
		{Test: "Elongation - CD (Dry)", Standard: "Min 30%", Unit: "%"},
		{Test: "Elongation - MD (Wet)", Standard: "Min 30%", Unit: "%"},
		{Test: "Elongation - CD (Wet)", Standard: "Min 30%", Unit: "%"},
		{Test: "Bursting Strength - Dry (kPa/kg/cm²)", Standard: "≥ 40 / 0.4", Unit: "kPa", UnitOptions: burstingUnits},
		{Test: "Bursting Strength - Wet (kPa/kg/cm²)", Standard: "≥ 40 / 0.4", Unit: "kPa", UnitOptions: burstingUnits},
		{Test: testCleanliness, Standard: "≤ 300", Unit: "CFU/100 cm²"},
	}
}

// defaultResult is the result a fresh row starts with.
func (p ParameterSpec) defaultResult() string {
	if p.Standard != standardNA {
		return ""
	}
	switch p.Test {
	case testImpact, testHydrostatic, testCleanliness:
		return standardNA
	}
	return ""
}

type BiocompatSpec struct {
	Test      string
	Standard  string
	Reference string
}

var biocompatibility = []BiocompatSpec{
	{Test: "Cytotoxicity", Standard: "Non - cytotoxic", Reference: "ISO 10993-10:2021 & OECD 406"},
	{Test: "Skin Irritation", Standard: "Non - irritant", Reference: "ISO 10993-23:2021"},
	{Test: "Skin Sensitization", Standard: "Non - sensitizer", Reference: "ISO 10993-5:2009"},
}

func Biocompatibility() []BiocompatSpec {
	return append([]BiocompatSpec(nil), biocompatibility...)
}

type VisualSpec struct {
	Parameter     string
	Standard      string
	DefaultResult string
}

var visual = []VisualSpec{
	{"Insect", "Visual", "Not Found"},
	{"Foreign Material & Oil", "Visual", "Not Found"},
	{"Hard Spots", "Visual", "Not Found"},
	{"Thin Spots", "Visual", "Not Found"},
	{"Holes", "Visual", "Not Found"},
	{"Roll Width", "Visual", ""},
	{"Core Inner Diameter", "Visual", ""},
	{"Core Length", "Visual", ""},
}

func Visual() []VisualSpec {
	return append([]VisualSpec(nil), visual...)
}

func serial(i int) string { return fmt.Sprintf("%d.", i+1) }
