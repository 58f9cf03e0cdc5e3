package scoring

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/store"
)

// ScoringVersion is stamped on every score record. Bump it whenever the
// scoring arithmetic changes so stale rows can be told apart.
const ScoringVersion = 1

var (
	ErrUnknownBuyerType = errors.New("unknown buyer type")
	ErrMissingInput     = errors.New("missing scoring input")
)

// Tier cutoffs on the composite score.
const (
	TierA = "A"
	TierB = "B"
	TierC = "C"
	TierD = "D"
)

// Bounds applied to per-dimension adjustment multipliers coming from the
// recalculator. A zero multiplier means "not set" and is read as 1.0.
const (
	minAdjustMult = 0.6
	maxAdjustMult = 1.4
)

// Engine computes deterministic deal×buyer fit scores. It holds only
// configuration; all per-request state arrives through Input, so one engine
// serves concurrent requests.
type Engine struct {
	geo      config.GeoPolicy
	svc      config.ServicePolicy
	defaults Weights
	eval     *InstructionEvaluator
	logger   *slog.Logger
}

func NewEngine(cfg config.ScoringConfig, logger *slog.Logger) (*Engine, error) {
	eval, err := NewInstructionEvaluator()
	if err != nil {
		return nil, err
	}
	defaults := Weights{
		Size:       cfg.DefaultWeights.Size,
		Geography:  cfg.DefaultWeights.Geography,
		Service:    cfg.DefaultWeights.Service,
		OwnerGoals: cfg.DefaultWeights.OwnerGoals,
	}
	if defaults.IsZero() {
		defaults = DefaultWeights()
	}
	return &Engine{
		geo:      cfg.Geography,
		svc:      cfg.Service,
		defaults: defaults,
		eval:     eval,
		logger:   logger,
	}, nil
}

// Input is everything one scoring run needs. Pattern and Adjustments are
// optional; nil means no history and no adaptive scaling.
type Input struct {
	Deal        *store.Deal
	Buyer       *store.Buyer
	Universe    *store.Universe
	Pattern     *store.LearningPattern
	Adjustments *store.DealAdjustments
}

// Result is the full scoring breakdown for one deal×buyer pair.
type Result struct {
	Size       DimensionResult `json:"size"`
	Geography  DimensionResult `json:"geography"`
	Service    DimensionResult `json:"service"`
	OwnerGoals DimensionResult `json:"owner_goals"`

	Composite    float64 `json:"composite"`
	Tier         string  `json:"tier"`
	Disqualified bool    `json:"disqualified"`

	LearningPenalty  float64 `json:"learning_penalty"`
	InstructionBonus float64 `json:"instruction_bonus"`

	Completeness Completeness `json:"completeness"`
	Reasoning    string       `json:"reasoning"`
}

// Score runs the four dimension scorers, layers on learning history and
// custom instructions, and aggregates the composite. Identical inputs always
// produce identical results.
func (e *Engine) Score(in Input) (*Result, error) {
	if in.Deal == nil || in.Buyer == nil || in.Universe == nil {
		return nil, ErrMissingInput
	}
	if !in.Buyer.BuyerType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuyerType, in.Buyer.BuyerType)
	}
	behavior := in.Universe.Behavior
	if err := behavior.Validate(); err != nil {
		return nil, fmt.Errorf("universe %s behavior: %w", in.Universe.ID, err)
	}

	res := &Result{}

	// The four dimensions are independent; run them concurrently. Each
	// writes a distinct field, no locking needed.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		res.Size = ScoreSize(in.Deal, in.Buyer, behavior)
	}()
	go func() {
		defer wg.Done()
		res.Geography = ScoreGeography(in.Deal, in.Buyer, behavior, e.geo)
	}()
	go func() {
		defer wg.Done()
		res.Service = ScoreService(in.Deal, in.Buyer, e.svc)
	}()
	go func() {
		defer wg.Done()
		res.OwnerGoals = ScoreOwnerGoals(in.Deal, in.Buyer)
	}()
	wg.Wait()

	res.Completeness = AssessCompleteness(in.Buyer)

	learning := LearningPenalty(in.Pattern)
	res.LearningPenalty = learning.Penalty

	instr := e.eval.Apply(in.Universe.Instructions, in.Deal, in.Buyer)
	res.InstructionBonus = instr.Bonus
	res.Disqualified = instr.Disqualify
	for _, s := range instr.Skipped {
		e.logger.Warn("custom instruction skipped",
			"universe_id", in.Universe.ID,
			"problem", s)
	}

	weights := e.weightsFor(in.Universe, in.Adjustments)
	res.Size.Weight = weights.Size
	res.Geography.Weight = weights.Geography
	res.Service.Weight = weights.Service
	res.OwnerGoals.Weight = weights.OwnerGoals

	for _, d := range []*DimensionResult{&res.Size, &res.Geography, &res.Service, &res.OwnerGoals} {
		d.Weighted = d.Score * d.Multiplier * d.Weight / 100
	}

	composite := res.Size.Weighted + res.Geography.Weighted + res.Service.Weighted + res.OwnerGoals.Weighted
	composite -= learning.Penalty
	composite += instr.Bonus
	composite = clamp(composite, 0, 100)

	if res.Disqualified {
		composite = 0
	}
	res.Composite = composite
	res.Tier = TierFor(composite, res.Disqualified)
	res.Reasoning = assembleReasoning(res, learning.Note, instr.Reasoning)

	return res, nil
}

// ValidateInstruction checks an admin rule before it is persisted: known
// adjustment type and a compilable boolean condition.
func (e *Engine) ValidateInstruction(ins store.CustomInstruction) error {
	return e.eval.Validate(ins)
}

// weightsFor resolves the effective dimension weights: universe weights, or
// the configured defaults when the universe left them unset, scaled by the
// recalculator's per-dimension multipliers when present. Proposed weight
// overrides in adjustments are advisory and are not applied here.
func (e *Engine) weightsFor(u *store.Universe, adj *store.DealAdjustments) Weights {
	w := Weights{
		Size:       u.SizeWeight,
		Geography:  u.GeographyWeight,
		Service:    u.ServiceWeight,
		OwnerGoals: u.OwnerGoalsWeight,
	}
	if w.IsZero() {
		w = e.defaults
	}
	if adj != nil {
		w.Size *= adjustMult(adj.SizeMultiplier)
		w.Geography *= adjustMult(adj.GeographyMultiplier)
		w.Service *= adjustMult(adj.ServiceMultiplier)
		w.OwnerGoals *= adjustMult(adj.OwnerGoalsMultiplier)
	}
	return w
}

func adjustMult(m float64) float64 {
	if m == 0 {
		return 1.0
	}
	return clamp(m, minAdjustMult, maxAdjustMult)
}

// TierFor maps a composite score to its letter tier. Disqualified pairs are
// always D regardless of arithmetic.
func TierFor(composite float64, disqualified bool) string {
	if disqualified {
		return TierD
	}
	switch {
	case composite >= 85:
		return TierA
	case composite >= 70:
		return TierB
	case composite >= 55:
		return TierC
	default:
		return TierD
	}
}

// assembleReasoning joins the per-dimension narratives in a fixed order so
// identical runs produce identical text.
func assembleReasoning(r *Result, learningNote, instructionNote string) string {
	parts := []string{
		"Size: " + r.Size.Reasoning,
		"Geography: " + r.Geography.Reasoning,
		"Service: " + r.Service.Reasoning,
		"Owner goals: " + r.OwnerGoals.Reasoning,
	}
	if learningNote != "" {
		parts = append(parts, "Learning: "+learningNote)
	}
	if instructionNote != "" {
		parts = append(parts, "Custom: "+instructionNote)
	}
	return strings.Join(parts, " | ")
}

// ToScore converts a result into the persisted score record.
func (r *Result) ToScore(universeID, dealID, buyerID uuid.UUID) *store.Score {
	return &store.Score{
		ID:         uuid.New(),
		UniverseID: universeID,
		DealID:     dealID,
		BuyerID:    buyerID,

		SizeScore:            r.Size.Score,
		SizeMultiplier:       r.Size.Multiplier,
		SizeReasoning:        r.Size.Reasoning,
		GeographyScore:       r.Geography.Score,
		GeographyMultiplier:  r.Geography.Multiplier,
		GeographyReasoning:   r.Geography.Reasoning,
		ServiceScore:         r.Service.Score,
		ServiceMultiplier:    r.Service.Multiplier,
		ServiceReasoning:     r.Service.Reasoning,
		OwnerGoalsScore:      r.OwnerGoals.Score,
		OwnerGoalsMultiplier: r.OwnerGoals.Multiplier,
		OwnerGoalsReasoning:  r.OwnerGoals.Reasoning,

		CompositeScore:         r.Composite,
		Tier:                   r.Tier,
		LearningPenalty:        r.LearningPenalty,
		CustomInstructionBonus: r.InstructionBonus,
		Disqualified:           r.Disqualified,

		CompletenessLevel:  r.Completeness.Level,
		MissingFields:      r.Completeness.MissingFields,
		ProvenanceWarnings: r.Completeness.ProvenanceWarnings,

		Reasoning:      r.Reasoning,
		ScoringVersion: ScoringVersion,
		CreatedAt:      time.Now().UTC(),
	}
}
