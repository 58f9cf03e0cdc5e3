package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Universes ---

const universeColumns = `id, name, size_weight, geography_weight, service_weight, owner_goals_weight,
	behavior, instructions, created_at, updated_at`

func (s *PostgresStore) CreateUniverse(ctx context.Context, u *Universe) error {
	behaviorJSON, _ := json.Marshal(u.Behavior)
	instructionsJSON, _ := json.Marshal(u.Instructions)

	return s.pool.QueryRow(ctx, `
		INSERT INTO universes (name, size_weight, geography_weight, service_weight, owner_goals_weight,
			behavior, instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		u.Name, u.SizeWeight, u.GeographyWeight, u.ServiceWeight, u.OwnerGoalsWeight,
		behaviorJSON, instructionsJSON,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (s *PostgresStore) GetUniverse(ctx context.Context, id uuid.UUID) (*Universe, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+universeColumns+` FROM universes WHERE id = $1`, id)
	u, err := scanUniverse(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *PostgresStore) ListUniverses(ctx context.Context) ([]*Universe, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+universeColumns+` FROM universes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Universe
	for rows.Next() {
		u, err := scanUniverse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateUniverse(ctx context.Context, u *Universe) error {
	behaviorJSON, _ := json.Marshal(u.Behavior)
	instructionsJSON, _ := json.Marshal(u.Instructions)

	tag, err := s.pool.Exec(ctx, `
		UPDATE universes SET name = $2, size_weight = $3, geography_weight = $4,
			service_weight = $5, owner_goals_weight = $6, behavior = $7, instructions = $8,
			updated_at = now()
		WHERE id = $1`,
		u.ID, u.Name, u.SizeWeight, u.GeographyWeight, u.ServiceWeight, u.OwnerGoalsWeight,
		behaviorJSON, instructionsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("universe %s not found", u.ID)
	}
	return nil
}

func scanUniverse(row pgx.Row) (*Universe, error) {
	u := &Universe{}
	var behaviorJSON, instructionsJSON []byte
	err := row.Scan(&u.ID, &u.Name, &u.SizeWeight, &u.GeographyWeight, &u.ServiceWeight,
		&u.OwnerGoalsWeight, &behaviorJSON, &instructionsJSON, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if behaviorJSON != nil {
		_ = json.Unmarshal(behaviorJSON, &u.Behavior)
	}
	if instructionsJSON != nil {
		_ = json.Unmarshal(instructionsJSON, &u.Instructions)
	}
	return u, nil
}

// --- Deals ---

const dealColumns = `id, universe_id, name, revenue, ebitda, location_count,
	geographic_states, services, owner_goals_text, created_at, updated_at`

func (s *PostgresStore) CreateDeal(ctx context.Context, d *Deal) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO deals (universe_id, name, revenue, ebitda, location_count,
			geographic_states, services, owner_goals_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		d.UniverseID, d.Name, d.Revenue, d.EBITDA, d.LocationCount,
		d.GeographicStates, d.Services, d.OwnerGoalsText,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (s *PostgresStore) GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error) {
	d := &Deal{}
	err := s.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id).Scan(
		&d.ID, &d.UniverseID, &d.Name, &d.Revenue, &d.EBITDA, &d.LocationCount,
		&d.GeographicStates, &d.Services, &d.OwnerGoalsText, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, universeID uuid.UUID) ([]*Deal, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+dealColumns+` FROM deals WHERE universe_id = $1 ORDER BY created_at`, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Deal
	for rows.Next() {
		d := &Deal{}
		if err := rows.Scan(&d.ID, &d.UniverseID, &d.Name, &d.Revenue, &d.EBITDA, &d.LocationCount,
			&d.GeographicStates, &d.Services, &d.OwnerGoalsText, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- Buyers ---

const buyerColumns = `id, universe_id, name, buyer_type,
	target_revenue_min, target_revenue_max, target_ebitda_min, target_ebitda_max,
	target_geographies, target_services, preferred_services,
	thesis_summary, hq_location, recent_acquisitions, portfolio_companies,
	extraction_sources, created_at, updated_at`

func (s *PostgresStore) CreateBuyer(ctx context.Context, b *Buyer) error {
	sourcesJSON, _ := json.Marshal(b.ExtractionSources)

	return s.pool.QueryRow(ctx, `
		INSERT INTO buyers (universe_id, name, buyer_type,
			target_revenue_min, target_revenue_max, target_ebitda_min, target_ebitda_max,
			target_geographies, target_services, preferred_services,
			thesis_summary, hq_location, recent_acquisitions, portfolio_companies, extraction_sources)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		b.UniverseID, b.Name, b.BuyerType,
		b.TargetRevenueMin, b.TargetRevenueMax, b.TargetEBITDAMin, b.TargetEBITDAMax,
		b.TargetGeographies, b.TargetServices, b.PreferredServices,
		b.ThesisSummary, b.HQLocation, b.RecentAcquisitions, b.PortfolioCompanies, sourcesJSON,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (s *PostgresStore) GetBuyer(ctx context.Context, id uuid.UUID) (*Buyer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id)
	b, err := scanBuyer(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (s *PostgresStore) ListBuyers(ctx context.Context, universeID uuid.UUID) ([]*Buyer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE universe_id = $1 ORDER BY created_at`, universeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Buyer
	for rows.Next() {
		b, err := scanBuyer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateBuyer(ctx context.Context, b *Buyer) error {
	sourcesJSON, _ := json.Marshal(b.ExtractionSources)

	tag, err := s.pool.Exec(ctx, `
		UPDATE buyers SET name = $2, buyer_type = $3,
			target_revenue_min = $4, target_revenue_max = $5,
			target_ebitda_min = $6, target_ebitda_max = $7,
			target_geographies = $8, target_services = $9, preferred_services = $10,
			thesis_summary = $11, hq_location = $12,
			recent_acquisitions = $13, portfolio_companies = $14,
			extraction_sources = $15, updated_at = now()
		WHERE id = $1`,
		b.ID, b.Name, b.BuyerType,
		b.TargetRevenueMin, b.TargetRevenueMax, b.TargetEBITDAMin, b.TargetEBITDAMax,
		b.TargetGeographies, b.TargetServices, b.PreferredServices,
		b.ThesisSummary, b.HQLocation, b.RecentAcquisitions, b.PortfolioCompanies, sourcesJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("buyer %s not found", b.ID)
	}
	return nil
}

func scanBuyer(row pgx.Row) (*Buyer, error) {
	b := &Buyer{}
	var sourcesJSON []byte
	err := row.Scan(&b.ID, &b.UniverseID, &b.Name, &b.BuyerType,
		&b.TargetRevenueMin, &b.TargetRevenueMax, &b.TargetEBITDAMin, &b.TargetEBITDAMax,
		&b.TargetGeographies, &b.TargetServices, &b.PreferredServices,
		&b.ThesisSummary, &b.HQLocation, &b.RecentAcquisitions, &b.PortfolioCompanies,
		&sourcesJSON, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sourcesJSON != nil {
		_ = json.Unmarshal(sourcesJSON, &b.ExtractionSources)
	}
	return b, nil
}

// --- Scores ---

const scoreColumns = `id, universe_id, deal_id, buyer_id,
	size_score, size_multiplier, size_reasoning,
	geography_score, geography_multiplier, geography_reasoning,
	service_score, service_multiplier, service_reasoning,
	owner_goals_score, owner_goals_multiplier, owner_goals_reasoning,
	composite_score, tier, learning_penalty, custom_instruction_bonus, disqualified,
	completeness_level, missing_fields, provenance_warnings,
	reasoning, scoring_version, created_at`

func (s *PostgresStore) CreateScore(ctx context.Context, sc *Score) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO scores (universe_id, deal_id, buyer_id,
			size_score, size_multiplier, size_reasoning,
			geography_score, geography_multiplier, geography_reasoning,
			service_score, service_multiplier, service_reasoning,
			owner_goals_score, owner_goals_multiplier, owner_goals_reasoning,
			composite_score, tier, learning_penalty, custom_instruction_bonus, disqualified,
			completeness_level, missing_fields, provenance_warnings, reasoning, scoring_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at`,
		sc.UniverseID, sc.DealID, sc.BuyerID,
		sc.SizeScore, sc.SizeMultiplier, sc.SizeReasoning,
		sc.GeographyScore, sc.GeographyMultiplier, sc.GeographyReasoning,
		sc.ServiceScore, sc.ServiceMultiplier, sc.ServiceReasoning,
		sc.OwnerGoalsScore, sc.OwnerGoalsMultiplier, sc.OwnerGoalsReasoning,
		sc.CompositeScore, sc.Tier, sc.LearningPenalty, sc.CustomInstructionBonus, sc.Disqualified,
		sc.CompletenessLevel, sc.MissingFields, sc.ProvenanceWarnings, sc.Reasoning, sc.ScoringVersion,
	).Scan(&sc.ID, &sc.CreatedAt)
}

func (s *PostgresStore) GetScore(ctx context.Context, id uuid.UUID) (*Score, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scoreColumns+` FROM scores WHERE id = $1`, id)
	sc, err := scanScore(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return sc, err
}

func (s *PostgresStore) ListScores(ctx context.Context, filter ScoreFilter) ([]*Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.DealID != nil {
		n++
		query += fmt.Sprintf(" AND deal_id = $%d", n)
		args = append(args, *filter.DealID)
	}
	if filter.BuyerID != nil {
		n++
		query += fmt.Sprintf(" AND buyer_id = $%d", n)
		args = append(args, *filter.BuyerID)
	}
	if filter.Tier != "" {
		n++
		query += fmt.Sprintf(" AND tier = $%d", n)
		args = append(args, filter.Tier)
	}

	query += " ORDER BY composite_score DESC, created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Score
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanScore(row pgx.Row) (*Score, error) {
	sc := &Score{}
	err := row.Scan(&sc.ID, &sc.UniverseID, &sc.DealID, &sc.BuyerID,
		&sc.SizeScore, &sc.SizeMultiplier, &sc.SizeReasoning,
		&sc.GeographyScore, &sc.GeographyMultiplier, &sc.GeographyReasoning,
		&sc.ServiceScore, &sc.ServiceMultiplier, &sc.ServiceReasoning,
		&sc.OwnerGoalsScore, &sc.OwnerGoalsMultiplier, &sc.OwnerGoalsReasoning,
		&sc.CompositeScore, &sc.Tier, &sc.LearningPenalty, &sc.CustomInstructionBonus, &sc.Disqualified,
		&sc.CompletenessLevel, &sc.MissingFields, &sc.ProvenanceWarnings,
		&sc.Reasoning, &sc.ScoringVersion, &sc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// --- Decisions ---

func (s *PostgresStore) CreateDecision(ctx context.Context, d *Decision) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO decisions (score_id, universe_id, deal_id, buyer_id, action, pass_category,
			size_score, geography_score, service_score, owner_goals_score, composite_score, decided_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		d.ScoreID, d.UniverseID, d.DealID, d.BuyerID, d.Action, d.PassCategory,
		d.SizeScore, d.GeographyScore, d.ServiceScore, d.OwnerGoalsScore, d.CompositeScore, d.DecidedBy,
	).Scan(&d.ID, &d.CreatedAt)
}

func (s *PostgresStore) ListDecisionsForDeal(ctx context.Context, dealID uuid.UUID) ([]*Decision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, score_id, universe_id, deal_id, buyer_id, action, pass_category,
			size_score, geography_score, service_score, owner_goals_score, composite_score,
			decided_by, created_at
		FROM decisions WHERE deal_id = $1 ORDER BY created_at`, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d := &Decision{}
		if err := rows.Scan(&d.ID, &d.ScoreID, &d.UniverseID, &d.DealID, &d.BuyerID,
			&d.Action, &d.PassCategory,
			&d.SizeScore, &d.GeographyScore, &d.ServiceScore, &d.OwnerGoalsScore, &d.CompositeScore,
			&d.DecidedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetLearningPattern aggregates a buyer's decision history within a universe.
// Returns nil when the buyer has no decisions yet.
func (s *PostgresStore) GetLearningPattern(ctx context.Context, universeID, buyerID uuid.UUID) (*LearningPattern, error) {
	p := &LearningPattern{UniverseID: universeID, BuyerID: buyerID}

	var approved int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE action = 'approved'),
			COALESCE(avg(composite_score) FILTER (WHERE action = 'approved'), 0),
			COALESCE(avg(composite_score) FILTER (WHERE action = 'passed'), 0)
		FROM decisions
		WHERE universe_id = $1 AND buyer_id = $2`,
		universeID, buyerID,
	).Scan(&p.TotalActions, &approved, &p.AvgScoreOnApproved, &p.AvgScoreOnPassed)
	if err != nil {
		return nil, err
	}
	if p.TotalActions == 0 {
		return nil, nil
	}
	p.ApprovalRate = float64(approved) / float64(p.TotalActions)

	rows, err := s.pool.Query(ctx, `
		SELECT pass_category, count(*)
		FROM decisions
		WHERE universe_id = $1 AND buyer_id = $2 AND action = 'passed' AND pass_category <> ''
		GROUP BY pass_category`,
		universeID, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	p.PassCategories = make(map[PassCategory]int)
	for rows.Next() {
		var cat PassCategory
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		p.PassCategories[cat] = n
	}
	return p, rows.Err()
}

// --- Deal adjustments ---

func (s *PostgresStore) GetDealAdjustments(ctx context.Context, dealID uuid.UUID) (*DealAdjustments, error) {
	adj := &DealAdjustments{}
	err := s.pool.QueryRow(ctx, `
		SELECT deal_id, size_weight, geography_weight, service_weight, owner_goals_weight,
			size_multiplier, geography_multiplier, service_multiplier, owner_goals_multiplier,
			version, updated_at
		FROM deal_adjustments WHERE deal_id = $1`, dealID,
	).Scan(&adj.DealID, &adj.SizeWeight, &adj.GeographyWeight, &adj.ServiceWeight, &adj.OwnerGoalsWeight,
		&adj.SizeMultiplier, &adj.GeographyMultiplier, &adj.ServiceMultiplier, &adj.OwnerGoalsMultiplier,
		&adj.Version, &adj.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// UpsertDealAdjustments writes the adjustments with last-writer-wins guarded
// by an optimistic version check, so two concurrent recalculations for the
// same deal cannot silently drop each other's update.
func (s *PostgresStore) UpsertDealAdjustments(ctx context.Context, adj *DealAdjustments) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO deal_adjustments (deal_id, size_weight, geography_weight, service_weight,
			owner_goals_weight, size_multiplier, geography_multiplier, service_multiplier,
			owner_goals_multiplier, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10 + 1, now())
		ON CONFLICT (deal_id) DO UPDATE SET
			size_weight = EXCLUDED.size_weight,
			geography_weight = EXCLUDED.geography_weight,
			service_weight = EXCLUDED.service_weight,
			owner_goals_weight = EXCLUDED.owner_goals_weight,
			size_multiplier = EXCLUDED.size_multiplier,
			geography_multiplier = EXCLUDED.geography_multiplier,
			service_multiplier = EXCLUDED.service_multiplier,
			owner_goals_multiplier = EXCLUDED.owner_goals_multiplier,
			version = deal_adjustments.version + 1,
			updated_at = now()
		WHERE deal_adjustments.version = $10`,
		adj.DealID, adj.SizeWeight, adj.GeographyWeight, adj.ServiceWeight, adj.OwnerGoalsWeight,
		adj.SizeMultiplier, adj.GeographyMultiplier, adj.ServiceMultiplier, adj.OwnerGoalsMultiplier,
		adj.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	adj.Version++
	return nil
}
