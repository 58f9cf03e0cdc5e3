package scoring

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/dealgrid/fitscore/internal/store"
)

const (
	AdjustBoost      = "boost"
	AdjustPenalize   = "penalize"
	AdjustDisqualify = "disqualify"
)

// InstructionResult is the outcome of the custom-instruction override layer.
// Bonus is deliberately unbounded here; clamping happens only at final
// composite assembly. Disqualify is sticky once set.
type InstructionResult struct {
	Bonus      float64  `json:"bonus"`
	Reasoning  string   `json:"reasoning"`
	Disqualify bool     `json:"disqualify"`
	Skipped    []string `json:"skipped,omitempty"`
}

// InstructionEvaluator applies admin-authored ad hoc rules. Conditions are
// CEL expressions over deal and buyer attributes; an empty condition always
// applies.
type InstructionEvaluator struct {
	env *cel.Env
}

func NewInstructionEvaluator() (*InstructionEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("revenue", cel.DoubleType),
		cel.Variable("ebitda", cel.DoubleType),
		cel.Variable("location_count", cel.IntType),
		cel.Variable("states", cel.ListType(cel.StringType)),
		cel.Variable("services", cel.ListType(cel.StringType)),
		cel.Variable("buyer_type", cel.StringType),
		cel.Variable("buyer_name", cel.StringType),
		cel.Variable("thesis", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create condition environment: %w", err)
	}
	return &InstructionEvaluator{env: env}, nil
}

// Validate compiles an instruction's condition and checks its type, so the
// admin API can reject a bad rule before it is stored.
func (e *InstructionEvaluator) Validate(ins store.CustomInstruction) error {
	switch ins.AdjustmentType {
	case AdjustBoost, AdjustPenalize, AdjustDisqualify:
	default:
		return fmt.Errorf("unknown adjustment_type %q", ins.AdjustmentType)
	}
	if strings.TrimSpace(ins.Condition) == "" {
		return nil
	}
	ast, iss := e.env.Compile(ins.Condition)
	if iss != nil && iss.Err() != nil {
		return fmt.Errorf("condition does not compile: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("condition must be boolean, got %s", ast.OutputType())
	}
	return nil
}

// Apply evaluates every instruction against the deal/buyer pair. Boosts add
// and penalties subtract from the running bonus; any disqualify sets the
// sticky flag. Malformed instructions are skipped and reported, never
// silently coerced.
func (e *InstructionEvaluator) Apply(instructions []store.CustomInstruction, deal *store.Deal, buyer *store.Buyer) InstructionResult {
	var res InstructionResult
	var notes []string

	for _, ins := range instructions {
		applies, problem := e.conditionHolds(ins.Condition, deal, buyer)
		if problem != "" {
			res.Skipped = append(res.Skipped, problem)
			continue
		}
		if !applies {
			continue
		}

		switch ins.AdjustmentType {
		case AdjustBoost:
			res.Bonus += ins.AdjustmentValue
			notes = append(notes, fmt.Sprintf("boost +%.0f (%s)", ins.AdjustmentValue, reasonOr(ins.Reason, "admin boost")))
		case AdjustPenalize:
			res.Bonus -= ins.AdjustmentValue
			notes = append(notes, fmt.Sprintf("penalty -%.0f (%s)", ins.AdjustmentValue, reasonOr(ins.Reason, "admin penalty")))
		case AdjustDisqualify:
			res.Disqualify = true
			notes = append(notes, "DISQUALIFIED ("+reasonOr(ins.Reason, "admin disqualification")+")")
		default:
			res.Skipped = append(res.Skipped, fmt.Sprintf("unknown adjustment_type %q", ins.AdjustmentType))
		}
	}

	res.Reasoning = strings.Join(notes, "; ")
	return res
}

func (e *InstructionEvaluator) conditionHolds(cond string, deal *store.Deal, buyer *store.Buyer) (bool, string) {
	if strings.TrimSpace(cond) == "" {
		return true, ""
	}

	ast, iss := e.env.Compile(cond)
	if iss != nil && iss.Err() != nil {
		return false, fmt.Sprintf("condition %q does not compile: %v", cond, iss.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Sprintf("condition %q cannot be planned: %v", cond, err)
	}

	revenue, ebitda := 0.0, 0.0
	if deal.Revenue != nil {
		revenue = *deal.Revenue
	}
	if deal.EBITDA != nil {
		ebitda = *deal.EBITDA
	}

	out, _, err := prg.Eval(map[string]any{
		"revenue":        revenue,
		"ebitda":         ebitda,
		"location_count": deal.LocationCount,
		"states":         deal.GeographicStates,
		"services":       deal.Services,
		"buyer_type":     string(buyer.BuyerType),
		"buyer_name":     buyer.Name,
		"thesis":         buyer.ThesisSummary,
	})
	if err != nil {
		return false, fmt.Sprintf("condition %q failed to evaluate: %v", cond, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Sprintf("condition %q did not evaluate to a boolean", cond)
	}
	return b, ""
}

func reasonOr(reason, fallback string) string {
	if strings.TrimSpace(reason) == "" {
		return fallback
	}
	return reason
}
