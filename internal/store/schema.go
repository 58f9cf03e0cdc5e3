package store

import "context"

// schema is applied idempotently on startup so the service is runnable
// against an empty database.
const schema = `
CREATE TABLE IF NOT EXISTS universes (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL,
	size_weight DOUBLE PRECISION NOT NULL DEFAULT 25,
	geography_weight DOUBLE PRECISION NOT NULL DEFAULT 25,
	service_weight DOUBLE PRECISION NOT NULL DEFAULT 25,
	owner_goals_weight DOUBLE PRECISION NOT NULL DEFAULT 25,
	behavior JSONB NOT NULL DEFAULT '{}',
	instructions JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deals (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	universe_id UUID NOT NULL REFERENCES universes(id),
	name TEXT NOT NULL,
	revenue DOUBLE PRECISION,
	ebitda DOUBLE PRECISION,
	location_count INTEGER NOT NULL DEFAULT 0,
	geographic_states TEXT[] NOT NULL DEFAULT '{}',
	services TEXT[] NOT NULL DEFAULT '{}',
	owner_goals_text TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS buyers (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	universe_id UUID NOT NULL REFERENCES universes(id),
	name TEXT NOT NULL,
	buyer_type TEXT NOT NULL DEFAULT '',
	target_revenue_min DOUBLE PRECISION,
	target_revenue_max DOUBLE PRECISION,
	target_ebitda_min DOUBLE PRECISION,
	target_ebitda_max DOUBLE PRECISION,
	target_geographies TEXT[] NOT NULL DEFAULT '{}',
	target_services TEXT[] NOT NULL DEFAULT '{}',
	preferred_services TEXT[] NOT NULL DEFAULT '{}',
	thesis_summary TEXT NOT NULL DEFAULT '',
	hq_location TEXT NOT NULL DEFAULT '',
	recent_acquisitions TEXT[] NOT NULL DEFAULT '{}',
	portfolio_companies TEXT[] NOT NULL DEFAULT '{}',
	extraction_sources JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scores (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	universe_id UUID NOT NULL REFERENCES universes(id),
	deal_id UUID NOT NULL REFERENCES deals(id),
	buyer_id UUID NOT NULL REFERENCES buyers(id),
	size_score DOUBLE PRECISION NOT NULL,
	size_multiplier DOUBLE PRECISION NOT NULL,
	size_reasoning TEXT NOT NULL DEFAULT '',
	geography_score DOUBLE PRECISION NOT NULL,
	geography_multiplier DOUBLE PRECISION NOT NULL,
	geography_reasoning TEXT NOT NULL DEFAULT '',
	service_score DOUBLE PRECISION NOT NULL,
	service_multiplier DOUBLE PRECISION NOT NULL,
	service_reasoning TEXT NOT NULL DEFAULT '',
	owner_goals_score DOUBLE PRECISION NOT NULL,
	owner_goals_multiplier DOUBLE PRECISION NOT NULL,
	owner_goals_reasoning TEXT NOT NULL DEFAULT '',
	composite_score DOUBLE PRECISION NOT NULL,
	tier TEXT NOT NULL,
	learning_penalty DOUBLE PRECISION NOT NULL DEFAULT 0,
	custom_instruction_bonus DOUBLE PRECISION NOT NULL DEFAULT 0,
	disqualified BOOLEAN NOT NULL DEFAULT false,
	completeness_level TEXT NOT NULL DEFAULT '',
	missing_fields TEXT[] NOT NULL DEFAULT '{}',
	provenance_warnings TEXT[] NOT NULL DEFAULT '{}',
	reasoning TEXT NOT NULL DEFAULT '',
	scoring_version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_scores_deal ON scores(deal_id, composite_score DESC);
CREATE INDEX IF NOT EXISTS idx_scores_buyer ON scores(buyer_id);

CREATE TABLE IF NOT EXISTS decisions (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	score_id UUID NOT NULL REFERENCES scores(id),
	universe_id UUID NOT NULL REFERENCES universes(id),
	deal_id UUID NOT NULL REFERENCES deals(id),
	buyer_id UUID NOT NULL REFERENCES buyers(id),
	action TEXT NOT NULL,
	pass_category TEXT NOT NULL DEFAULT '',
	size_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	geography_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	service_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	owner_goals_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	composite_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	decided_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_decisions_deal ON decisions(deal_id);
CREATE INDEX IF NOT EXISTS idx_decisions_buyer ON decisions(universe_id, buyer_id);

CREATE TABLE IF NOT EXISTS deal_adjustments (
	deal_id UUID PRIMARY KEY REFERENCES deals(id),
	size_weight DOUBLE PRECISION,
	geography_weight DOUBLE PRECISION,
	service_weight DOUBLE PRECISION,
	owner_goals_weight DOUBLE PRECISION,
	size_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	geography_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	service_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	owner_goals_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
	version INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates any missing tables and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
