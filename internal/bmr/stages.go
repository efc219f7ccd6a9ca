package bmr

import "fmt"

// Stage is one of the seven fixed manufacturing stages.
type Stage int

const (
	StageCutting Stage = iota
	StageStitching
	StageDraping
	StageFolding
	StagePacking
	StageSealing
	StageInnerBoxPacking
)

const StageCount = 7

type stageInfo struct {
	name        string
	standardKey string
	kitKey      string
	label       string
}

// standardKey and kitKey are the keys existing rows were written with.
var stageTable = [StageCount]stageInfo{
	{"cutting", "4.1 Cutting", "step1_cutting", "4.1 Cutting"},
	{"stitching", "4.2 Stitching", "step2_stitching", "4.2 Stitching"},
	{"draping", "4.3 Draping", "step3_draping", "4.3 Draping"},
	{"folding", "4.4 Folding", "step4_folding", "4.4 Folding"},
	{"packing", "4.5 Packing", "step5_packing", "4.5 Kit Assemble & Packing"},
	{"sealing", "4.6 Sealing", "step6_sealing", "4.6 Sealing"},
	{"inner-box-packing", "4.7 Inner Box Packing", "step7_inner_box", "4.7 Inner Box Packing"},
}

func Stages() []Stage {
	out := make([]Stage, StageCount)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

func (s Stage) valid() bool { return s >= 0 && int(s) < StageCount }

func (s Stage) Name() string {
	if !s.valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageTable[s].name
}

func (s Stage) Label() string {
	if !s.valid() {
		return ""
	}
	return stageTable[s].label
}

// Key is the storage key for the stage under the given record type.
func (s Stage) Key(t Type) string {
	if !s.valid() {
		return ""
	}
	if t == TypeKit {
		return stageTable[s].kitKey
	}
	return stageTable[s].standardKey
}

func (s Stage) String() string { return s.Name() }

// ParseStage accepts the short name or either storage key.
func ParseStage(v string) (Stage, error) {
	for i, info := range stageTable {
		if v == info.name || v == info.standardKey || v == info.kitKey {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", v)
}
