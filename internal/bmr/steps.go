package bmr

// ProcessSteps is either StandardSteps or KitSteps.
type ProcessSteps interface {
	Type() Type
	clone() ProcessSteps
}

// StandardSteps holds one row per stage, indexed by Stage.
type StandardSteps [StageCount]ProcessStep

// KitSteps holds one kit stage per Stage.
type KitSteps [StageCount]KitStage

func (StandardSteps) Type() Type { return TypeStandard }

func (s StandardSteps) clone() ProcessSteps { return s }

func (KitSteps) Type() Type { return TypeKit }

func (s KitSteps) clone() ProcessSteps {
	out := s
	for i := range out {
		if s[i].Items != nil {
			out[i].Items = append([]KitProcessItem(nil), s[i].Items...)
		}
	}
	return out
}

// EmptySteps returns the zero steps value for t.
func EmptySteps(t Type) ProcessSteps {
	if t == TypeKit {
		return KitSteps{}
	}
	return StandardSteps{}
}
