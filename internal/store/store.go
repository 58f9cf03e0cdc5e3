package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned when an optimistic update loses the race
// against a concurrent writer. Callers should re-read and retry.
var ErrVersionConflict = errors.New("version conflict")

type BuyerType string

const (
	BuyerTypePEFirm       BuyerType = "pe_firm"
	BuyerTypePlatform     BuyerType = "platform"
	BuyerTypeStrategic    BuyerType = "strategic"
	BuyerTypeFamilyOffice BuyerType = "family_office"
	BuyerTypeSearchFund   BuyerType = "search_fund"
)

// Valid reports whether the buyer type is a known value. Empty is allowed:
// it is a data gap, not a malformed record.
func (t BuyerType) Valid() bool {
	switch t {
	case "", BuyerTypePEFirm, BuyerTypePlatform, BuyerTypeStrategic, BuyerTypeFamilyOffice, BuyerTypeSearchFund:
		return true
	}
	return false
}

type SizeStrictness string

const (
	SizeStrict   SizeStrictness = "strict"
	SizeModerate SizeStrictness = "moderate"
	SizeFlexible SizeStrictness = "flexible"
)

type BelowMinimumHandling string

const (
	BelowMinDisqualify BelowMinimumHandling = "disqualify"
	BelowMinPenalize   BelowMinimumHandling = "penalize"
	BelowMinAllow      BelowMinimumHandling = "allow"
)

type GeographyMode string

const (
	GeoStrict   GeographyMode = "strict"
	GeoFlexible GeographyMode = "flexible"
	GeoNational GeographyMode = "national"
)

// ScoringBehavior is the advisory policy knob set on a universe. The flags
// are consumed only by the relevant dimension scorer; they never mutate the
// deal or buyer records.
type ScoringBehavior struct {
	SizeStrictness         SizeStrictness       `json:"size_strictness,omitempty" yaml:"size_strictness"`
	BelowMinimumHandling   BelowMinimumHandling `json:"below_minimum_handling,omitempty" yaml:"below_minimum_handling"`
	PenalizeSingleLocation bool                 `json:"penalize_single_location" yaml:"penalize_single_location"`
	GeographyMode          GeographyMode        `json:"geography_mode,omitempty" yaml:"geography_mode"`
}

// Validate rejects unknown enum values. Empty values are fine; each scorer
// substitutes its documented default.
func (b ScoringBehavior) Validate() error {
	switch b.SizeStrictness {
	case "", SizeStrict, SizeModerate, SizeFlexible:
	default:
		return errors.New("unknown size_strictness: " + string(b.SizeStrictness))
	}
	switch b.BelowMinimumHandling {
	case "", BelowMinDisqualify, BelowMinPenalize, BelowMinAllow:
	default:
		return errors.New("unknown below_minimum_handling: " + string(b.BelowMinimumHandling))
	}
	switch b.GeographyMode {
	case "", GeoStrict, GeoFlexible, GeoNational:
	default:
		return errors.New("unknown geography_mode: " + string(b.GeographyMode))
	}
	return nil
}

// CustomInstruction is an admin-authored ad hoc scoring rule scoped to a
// universe. Condition is an optional CEL expression over deal and buyer
// attributes; an empty condition always applies.
type CustomInstruction struct {
	ID              uuid.UUID `json:"id"`
	AdjustmentType  string    `json:"adjustment_type"` // boost | penalize | disqualify
	AdjustmentValue float64   `json:"adjustment_value"`
	Reason          string    `json:"reason,omitempty"`
	Condition       string    `json:"condition,omitempty"`
}

// Universe is the scoring configuration for one deal-sourcing campaign.
// Weights nominally sum to 100 but that is not enforced.
type Universe struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	SizeWeight       float64 `json:"size_weight"`
	GeographyWeight  float64 `json:"geography_weight"`
	ServiceWeight    float64 `json:"service_weight"`
	OwnerGoalsWeight float64 `json:"owner_goals_weight"`

	Behavior     ScoringBehavior     `json:"behavior"`
	Instructions []CustomInstruction `json:"instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deal is a business for sale. Financials may be absent until enrichment
// runs; scoring treats that as a neutral condition, never an error.
type Deal struct {
	ID         uuid.UUID `json:"id"`
	UniverseID uuid.UUID `json:"universe_id"`
	Name       string    `json:"name"`

	Revenue          *float64 `json:"revenue,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	LocationCount    int      `json:"location_count"`
	GeographicStates []string `json:"geographic_states,omitempty"`
	Services         []string `json:"services,omitempty"`
	OwnerGoalsText   string   `json:"owner_goals_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExtractionSource records where a buyer's profile data came from.
// Transcript-sourced data outranks guide- or inference-derived data.
type ExtractionSource struct {
	Type        string    `json:"type"` // transcript | guide | inferred
	URL         string    `json:"url,omitempty"`
	ExtractedAt time.Time `json:"extracted_at,omitempty"`
}

// Buyer is a prospective acquirer. Attributes are populated by external
// enrichment collaborators and are read-only to the scoring engine.
type Buyer struct {
	ID         uuid.UUID `json:"id"`
	UniverseID uuid.UUID `json:"universe_id"`
	Name       string    `json:"name"`
	BuyerType  BuyerType `json:"buyer_type,omitempty"`

	TargetRevenueMin *float64 `json:"target_revenue_min,omitempty"`
	TargetRevenueMax *float64 `json:"target_revenue_max,omitempty"`
	TargetEBITDAMin  *float64 `json:"target_ebitda_min,omitempty"`
	TargetEBITDAMax  *float64 `json:"target_ebitda_max,omitempty"`

	TargetGeographies  []string `json:"target_geographies,omitempty"`
	TargetServices     []string `json:"target_services,omitempty"`
	PreferredServices  []string `json:"preferred_services,omitempty"`
	ThesisSummary      string   `json:"thesis_summary,omitempty"`
	HQLocation         string   `json:"hq_location,omitempty"`
	RecentAcquisitions []string `json:"recent_acquisitions,omitempty"`
	PortfolioCompanies []string `json:"portfolio_companies,omitempty"`

	ExtractionSources []ExtractionSource `json:"extraction_sources,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Score is the output of one deal×buyer scoring run. Recomputing with
// identical inputs yields an identical record apart from ID and timestamps.
type Score struct {
	ID         uuid.UUID `json:"id"`
	UniverseID uuid.UUID `json:"universe_id"`
	DealID     uuid.UUID `json:"deal_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`

	SizeScore            float64 `json:"size_score"`
	SizeMultiplier       float64 `json:"size_multiplier"`
	SizeReasoning        string  `json:"size_reasoning"`
	GeographyScore       float64 `json:"geography_score"`
	GeographyMultiplier  float64 `json:"geography_multiplier"`
	GeographyReasoning   string  `json:"geography_reasoning"`
	ServiceScore         float64 `json:"service_score"`
	ServiceMultiplier    float64 `json:"service_multiplier"`
	ServiceReasoning     string  `json:"service_reasoning"`
	OwnerGoalsScore      float64 `json:"owner_goals_score"`
	OwnerGoalsMultiplier float64 `json:"owner_goals_multiplier"`
	OwnerGoalsReasoning  string  `json:"owner_goals_reasoning"`

	CompositeScore         float64 `json:"composite_score"`
	Tier                   string  `json:"tier"`
	LearningPenalty        float64 `json:"learning_penalty"`
	CustomInstructionBonus float64 `json:"custom_instruction_bonus"`
	Disqualified           bool    `json:"disqualified"`

	CompletenessLevel  string   `json:"completeness_level"`
	MissingFields      []string `json:"missing_fields,omitempty"`
	ProvenanceWarnings []string `json:"provenance_warnings,omitempty"`

	Reasoning      string    `json:"reasoning"`
	ScoringVersion int       `json:"scoring_version"`
	CreatedAt      time.Time `json:"created_at"`
}

type DecisionAction string

const (
	ActionApproved DecisionAction = "approved"
	ActionPassed   DecisionAction = "passed"
)

type PassCategory string

const (
	PassSize              PassCategory = "size"
	PassGeography         PassCategory = "geography"
	PassServices          PassCategory = "services"
	PassTiming            PassCategory = "timing"
	PassPortfolioConflict PassCategory = "portfolio_conflict"
	PassOther             PassCategory = "other"
)

// Valid reports whether the category belongs to the fixed taxonomy.
func (c PassCategory) Valid() bool {
	switch c {
	case "", PassSize, PassGeography, PassServices, PassTiming, PassPortfolioConflict, PassOther:
		return true
	}
	return false
}

// Decision is an append-only audit fact: a human's approve/pass action on a
// scored buyer, with the dimension scores frozen at decision time.
type Decision struct {
	ID         uuid.UUID `json:"id"`
	ScoreID    uuid.UUID `json:"score_id"`
	UniverseID uuid.UUID `json:"universe_id"`
	DealID     uuid.UUID `json:"deal_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`

	Action       DecisionAction `json:"action"`
	PassCategory PassCategory   `json:"pass_category,omitempty"`

	SizeScore       float64 `json:"size_score"`
	GeographyScore  float64 `json:"geography_score"`
	ServiceScore    float64 `json:"service_score"`
	OwnerGoalsScore float64 `json:"owner_goals_score"`
	CompositeScore  float64 `json:"composite_score"`

	DecidedBy string    `json:"decided_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LearningPattern is the derived approval/pass history for one buyer within
// one universe, aggregated from Decision records.
type LearningPattern struct {
	UniverseID         uuid.UUID            `json:"universe_id"`
	BuyerID            uuid.UUID            `json:"buyer_id"`
	ApprovalRate       float64              `json:"approval_rate"`
	AvgScoreOnApproved float64              `json:"avg_score_on_approved"`
	AvgScoreOnPassed   float64              `json:"avg_score_on_passed"`
	TotalActions       int                  `json:"total_actions"`
	PassCategories     map[PassCategory]int `json:"pass_categories,omitempty"`
}

// DealAdjustments holds the weight proposals and categorical pass-rate
// multipliers written by the adaptive recalculator for one deal. They are
// advisory: the composite aggregator reads them as an optional scaling on
// top of the static universe weights. Version backs optimistic concurrency.
type DealAdjustments struct {
	DealID uuid.UUID `json:"deal_id"`

	SizeWeight       *float64 `json:"size_weight,omitempty"`
	GeographyWeight  *float64 `json:"geography_weight,omitempty"`
	ServiceWeight    *float64 `json:"service_weight,omitempty"`
	OwnerGoalsWeight *float64 `json:"owner_goals_weight,omitempty"`

	SizeMultiplier       float64 `json:"size_multiplier"`
	GeographyMultiplier  float64 `json:"geography_multiplier"`
	ServiceMultiplier    float64 `json:"service_multiplier"`
	OwnerGoalsMultiplier float64 `json:"owner_goals_multiplier"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScoreFilter struct {
	DealID  *uuid.UUID
	BuyerID *uuid.UUID
	Tier    string
	Limit   int
	Offset  int
}

type Store interface {
	CreateUniverse(ctx context.Context, u *Universe) error
	GetUniverse(ctx context.Context, id uuid.UUID) (*Universe, error)
	ListUniverses(ctx context.Context) ([]*Universe, error)
	UpdateUniverse(ctx context.Context, u *Universe) error

	CreateDeal(ctx context.Context, d *Deal) error
	GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error)
	ListDeals(ctx context.Context, universeID uuid.UUID) ([]*Deal, error)

	CreateBuyer(ctx context.Context, b *Buyer) error
	GetBuyer(ctx context.Context, id uuid.UUID) (*Buyer, error)
	ListBuyers(ctx context.Context, universeID uuid.UUID) ([]*Buyer, error)
	UpdateBuyer(ctx context.Context, b *Buyer) error

	CreateScore(ctx context.Context, s *Score) error
	GetScore(ctx context.Context, id uuid.UUID) (*Score, error)
	ListScores(ctx context.Context, filter ScoreFilter) ([]*Score, error)

	CreateDecision(ctx context.Context, d *Decision) error
	ListDecisionsForDeal(ctx context.Context, dealID uuid.UUID) ([]*Decision, error)
	GetLearningPattern(ctx context.Context, universeID, buyerID uuid.UUID) (*LearningPattern, error)

	GetDealAdjustments(ctx context.Context, dealID uuid.UUID) (*DealAdjustments, error)
	// UpsertDealAdjustments writes adj with Version incremented. It returns
	// ErrVersionConflict if the stored version no longer matches adj.Version.
	UpsertDealAdjustments(ctx context.Context, adj *DealAdjustments) error

	Close() error
}
