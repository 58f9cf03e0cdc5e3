package recalc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/events"
	"github.com/dealgrid/fitscore/internal/scoring"
	"github.com/dealgrid/fitscore/internal/store"
)

// Weight proposal bounds. A dimension can be promoted to at most 50 and
// demoted to at least 15, so no dimension ever dominates or vanishes.
const (
	maxProposedWeight = 50
	minProposedWeight = 15

	promoteGap = 15
	demoteGap  = 5

	neutralPassRate = 0.15
	minMultiplier   = 0.6
	maxMultiplier   = 1.4
)

// Recalculator periodically rereads each deal's decision history and writes
// adaptive weight proposals and pass-rate multipliers. Proposals are
// advisory; only the multipliers feed back into live scoring.
type Recalculator struct {
	store  store.Store
	events events.Client
	cfg    *config.Config
	logger *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, ev events.Client, cfg *config.Config, logger *slog.Logger) *Recalculator {
	return &Recalculator{
		store:  s,
		events: ev,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (r *Recalculator) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

func (r *Recalculator) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Recalculator) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.RecalcInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce walks every deal in every universe and refreshes its adjustments.
// A concurrent writer losing the version race is logged and skipped; the
// next tick picks the deal up again.
func (r *Recalculator) RunOnce(ctx context.Context) {
	universes, err := r.store.ListUniverses(ctx)
	if err != nil {
		r.logger.Error("failed to list universes", "error", err)
		return
	}

	for _, u := range universes {
		deals, err := r.store.ListDeals(ctx, u.ID)
		if err != nil {
			r.logger.Error("failed to list deals", "universe_id", u.ID, "error", err)
			continue
		}
		for _, d := range deals {
			if err := r.recalcDeal(ctx, u, d); err != nil {
				r.logger.Warn("failed to recalculate deal", "deal_id", d.ID, "error", err)
			}
		}
	}
}

// RecalcDealNow runs a single deal on demand, for the admin trigger
// endpoint. Returns the written adjustments, or nil when the deal has too
// little history.
func (r *Recalculator) RecalcDealNow(ctx context.Context, dealID uuid.UUID) (*store.DealAdjustments, error) {
	deal, err := r.store.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, errors.New("deal not found")
	}
	universe, err := r.store.GetUniverse(ctx, deal.UniverseID)
	if err != nil {
		return nil, err
	}
	if universe == nil {
		return nil, errors.New("universe not found")
	}
	if err := r.recalcDeal(ctx, universe, deal); err != nil {
		return nil, err
	}
	return r.store.GetDealAdjustments(ctx, dealID)
}

func (r *Recalculator) recalcDeal(ctx context.Context, u *store.Universe, d *store.Deal) error {
	decisions, err := r.store.ListDecisionsForDeal(ctx, d.ID)
	if err != nil {
		return err
	}
	if len(decisions) < r.cfg.Recalc.MinDecisions {
		return nil
	}

	current := scoring.Weights{
		Size:       u.SizeWeight,
		Geography:  u.GeographyWeight,
		Service:    u.ServiceWeight,
		OwnerGoals: u.OwnerGoalsWeight,
	}
	if current.IsZero() {
		current = scoring.Weights{
			Size:       r.cfg.Scoring.DefaultWeights.Size,
			Geography:  r.cfg.Scoring.DefaultWeights.Geography,
			Service:    r.cfg.Scoring.DefaultWeights.Service,
			OwnerGoals: r.cfg.Scoring.DefaultWeights.OwnerGoals,
		}
	}

	proposed := ProposeWeights(decisions, current)
	mults := ProposeMultipliers(decisions)

	adj, err := r.store.GetDealAdjustments(ctx, d.ID)
	if err != nil {
		return err
	}
	if adj == nil {
		adj = &store.DealAdjustments{DealID: d.ID}
	}

	adj.SizeWeight = &proposed.Size
	adj.GeographyWeight = &proposed.Geography
	adj.ServiceWeight = &proposed.Service
	adj.OwnerGoalsWeight = &proposed.OwnerGoals
	adj.SizeMultiplier = mults.Size
	adj.GeographyMultiplier = mults.Geography
	adj.ServiceMultiplier = mults.Service
	adj.OwnerGoalsMultiplier = mults.OwnerGoals

	if err := r.store.UpsertDealAdjustments(ctx, adj); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			r.logger.Warn("adjustments version conflict, skipping", "deal_id", d.ID)
			return nil
		}
		return err
	}

	if r.events != nil {
		_ = r.events.Publish(events.SubjectAdjustmentsRecalculated(d.ID.String()), events.AdjustmentsRecalculatedEvent{
			DealID:    d.ID.String(),
			Version:   adj.Version,
			Decisions: len(decisions),
			Timestamp: time.Now().UTC(),
		})
	}

	r.logger.Info("deal adjustments recalculated",
		"deal_id", d.ID,
		"decisions", len(decisions),
		"version", adj.Version)
	return nil
}

// ProposeWeights compares the average dimension scores of approved versus
// passed buyers and nudges weights toward the dimensions that discriminate.
// A dimension whose approved/passed gap exceeds 15 points gains 10 (capped
// at 50); one whose gap is under 5 while weighted above 20 loses 5 (floored
// at 15). With no approvals or no passes yet there is nothing to compare
// and the current weights come back unchanged.
func ProposeWeights(decisions []*store.Decision, current scoring.Weights) scoring.Weights {
	approved := averages(decisions, store.ActionApproved)
	passed := averages(decisions, store.ActionPassed)
	if approved.n == 0 || passed.n == 0 {
		return current
	}

	proposed := current
	adjust := func(w float64, gap float64) float64 {
		switch {
		case gap > promoteGap:
			w += 10
			if w > maxProposedWeight {
				w = maxProposedWeight
			}
		case gap < demoteGap && w > 20:
			w -= 5
			if w < minProposedWeight {
				w = minProposedWeight
			}
		}
		return w
	}

	proposed.Size = adjust(current.Size, approved.size-passed.size)
	proposed.Geography = adjust(current.Geography, approved.geography-passed.geography)
	proposed.Service = adjust(current.Service, approved.service-passed.service)
	proposed.OwnerGoals = adjust(current.OwnerGoals, approved.ownerGoals-passed.ownerGoals)
	return proposed
}

// Multipliers is the per-dimension scaling derived from categorical pass
// rates. 1.0 is neutral.
type Multipliers struct {
	Size       float64
	Geography  float64
	Service    float64
	OwnerGoals float64
}

// ProposeMultipliers maps each dimension's categorical pass rate onto a
// weight multiplier: passing 15% of decisions on a category is neutral, and
// every point above or below moves the multiplier at 2x, clamped to
// [0.6, 1.4]. A category with no passes stays at 1.0. Owner goals has no
// pass category, so it is always neutral.
func ProposeMultipliers(decisions []*store.Decision) Multipliers {
	m := Multipliers{Size: 1.0, Geography: 1.0, Service: 1.0, OwnerGoals: 1.0}
	if len(decisions) == 0 {
		return m
	}

	counts := map[store.PassCategory]int{}
	for _, d := range decisions {
		if d.Action == store.ActionPassed && d.PassCategory != "" {
			counts[d.PassCategory]++
		}
	}

	total := float64(len(decisions))
	forCategory := func(c store.PassCategory) float64 {
		n := counts[c]
		if n == 0 {
			return 1.0
		}
		rate := float64(n) / total
		mult := 1.0 + (rate-neutralPassRate)*2
		if mult < minMultiplier {
			mult = minMultiplier
		}
		if mult > maxMultiplier {
			mult = maxMultiplier
		}
		return mult
	}

	m.Size = forCategory(store.PassSize)
	m.Geography = forCategory(store.PassGeography)
	m.Service = forCategory(store.PassServices)
	return m
}

type dimAverages struct {
	n          int
	size       float64
	geography  float64
	service    float64
	ownerGoals float64
}

func averages(decisions []*store.Decision, action store.DecisionAction) dimAverages {
	var a dimAverages
	for _, d := range decisions {
		if d.Action != action {
			continue
		}
		a.n++
		a.size += d.SizeScore
		a.geography += d.GeographyScore
		a.service += d.ServiceScore
		a.ownerGoals += d.OwnerGoalsScore
	}
	if a.n > 0 {
		n := float64(a.n)
		a.size /= n
		a.geography /= n
		a.service /= n
		a.ownerGoals /= n
	}
	return a
}
