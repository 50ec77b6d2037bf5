package domain

// Stage is the position of a conversation in the qualification funnel.
type Stage string

const (
	StageDiagnostico  Stage = "DIAGNOSTICO"
	StageApresentacao Stage = "APRESENTACAO"
	StageFechamento   Stage = "FECHAMENTO"
	StageFinalizado   Stage = "FINALIZADO"
)

// DefaultStage is the stage of a session that never had one set.
const DefaultStage = StageDiagnostico

var stageRank = map[Stage]int{
	StageDiagnostico:  0,
	StageApresentacao: 1,
	StageFechamento:   2,
	StageFinalizado:   3,
}

// Rank orders stages along the funnel. Unknown stages rank -1.
func (s Stage) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}
	return -1
}

func (s Stage) String() string { return string(s) }

// isOverride reports whether s may be pinned by SetStage and outlive the
// turn-count rule.
func (s Stage) isOverride() bool {
	return s == StageFechamento || s == StageFinalizado
}

// ResolveStage maps lead completeness and the number of assistant turns so
// far to a stage:
//
//	email set            -> FINALIZADO
//	interest confirmed   -> FECHAMENTO
//	0 assistant turns    -> DIAGNOSTICO
//	1 assistant turn     -> APRESENTACAO
//	2+ assistant turns   -> FECHAMENTO
//
// A FECHAMENTO or FINALIZADO override set by an earlier turn pins the funnel:
// the result is never earlier than it. Other overrides are ignored.
func ResolveStage(lead Lead, assistantTurns int, override Stage) Stage {
	resolved := resolveFromLead(lead, assistantTurns)
	if override.isOverride() && override.Rank() > resolved.Rank() {
		return override
	}
	return resolved
}

func resolveFromLead(lead Lead, assistantTurns int) Stage {
	if !isBlank(lead.Email) {
		return StageFinalizado
	}
	if lead.InterestConfirmed {
		return StageFechamento
	}
	switch {
	case assistantTurns <= 0:
		return StageDiagnostico
	case assistantTurns == 1:
		return StageApresentacao
	default:
		return StageFechamento
	}
}
