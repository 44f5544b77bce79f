package diplomacy

import "fmt"

// NextPhase computes the phase that follows the current one.
// Movement -> Retreat (if dislodgements) or straight to Fall Movement / Adjustment.
// Retreat -> Fall Movement or Adjustment (if Fall).
// Adjustment -> Spring Movement of next year.
func NextPhase(gs *GameState, hasDislodgements bool) (Season, PhaseType) {
	switch gs.Phase {
	case PhaseMovement:
		if hasDislodgements {
			return gs.Season, PhaseRetreat
		}
		return afterMovement(gs.Season)
	case PhaseRetreat:
		return afterMovement(gs.Season)
	}
	return Spring, PhaseMovement
}

func afterMovement(season Season) (Season, PhaseType) {
	if season == Spring {
		return Fall, PhaseMovement
	}
	return Fall, PhaseAdjustment
}

// WithDefaultHolds returns orders plus a Hold for every unit in gs that has
// no order yet.
func WithDefaultHolds(gs *GameState, orders []Order) []Order {
	ordered := make(map[Unit]bool, len(orders))
	for _, o := range orders {
		ordered[o.OrderUnit()] = true
	}
	out := append([]Order(nil), orders...)
	for _, p := range gs.Units.Players() {
		for _, u := range gs.Units.Sorted(p) {
			if !ordered[u] {
				out = append(out, Hold{Player: p, Unit: u})
			}
		}
	}
	return out
}

// AdvanceMovement adjudicates a movement phase and moves gs on. Units
// without an order hold.
func AdvanceMovement(gs *GameState, orders []Order, opts ResolveOptions) (*Adjudication, error) {
	if gs.Phase != PhaseMovement {
		return nil, fmt.Errorf("advance movement: state is in %s phase", gs.Phase)
	}
	for _, o := range orders {
		if !gs.Units[o.OrderPlayer()][o.OrderUnit()] {
			return nil, illegal(o.String(), fmt.Errorf("%w: %s", ErrNotOwnUnit, o.OrderPlayer()))
		}
	}
	adj, err := AdjudicateWithOptions(gs.Map, WithDefaultHolds(gs, orders), opts)
	if err != nil {
		return nil, err
	}

	gs.Units = adj.Units()
	dislodged := len(adj.Retreats.Dislodged()) > 0
	if dislodged {
		gs.Retreats = adj.Retreats
	}
	gs.advance(dislodged)
	return adj, nil
}

// AdvanceRetreat resolves a retreat phase and moves gs on.
func AdvanceRetreat(gs *GameState, orders []RetreatOrder) error {
	if gs.Phase != PhaseRetreat {
		return fmt.Errorf("advance retreat: state is in %s phase", gs.Phase)
	}
	units, err := ResolveRetreats(gs.Map, gs.Retreats, orders)
	if err != nil {
		return err
	}
	gs.Units = units
	gs.Retreats = nil
	gs.advance(false)
	return nil
}

// AdvanceAdjustment resolves an adjustment phase. With strict set, any order
// set needing civil disorder is rejected instead of repaired.
func AdvanceAdjustment(gs *GameState, orders []AdjustmentOrder, strict bool) error {
	if gs.Phase != PhaseAdjustment {
		return fmt.Errorf("advance adjustment: state is in %s phase", gs.Phase)
	}
	resolve := ResolveAdjustment
	if strict {
		resolve = ResolveAdjustmentValidated
	}
	units, err := resolve(gs.Ownership, gs.Adjustments, gs.Units, orders)
	if err != nil {
		return err
	}
	gs.Units = units
	gs.Adjustments = nil
	gs.advance(false)
	return nil
}

// advance steps season and phase. Entering the adjustment phase recomputes
// center ownership; when nobody needs to build or disband the phase is
// skipped.
func (gs *GameState) advance(hasDislodgements bool) {
	season, phase := NextPhase(gs, hasDislodgements)
	if phase == PhaseAdjustment {
		own, deltas := CalculateAdjustments(gs.Ownership, gs.Units)
		gs.Ownership = own
		if needsAdjustment(deltas) {
			gs.Season, gs.Phase, gs.Adjustments = season, phase, deltas
			return
		}
		season, phase = Spring, PhaseMovement
	}
	if season == Spring && phase == PhaseMovement {
		gs.Year++
	}
	gs.Season = season
	gs.Phase = phase
}

func needsAdjustment(deltas map[Power]int) bool {
	for _, d := range deltas {
		if d != 0 {
			return true
		}
	}
	return false
}

// SoloWinner reports a power controlling at least 18 supply centers.
func SoloWinner(gs *GameState) (Power, bool) {
	for _, p := range sortedPowers(gs.Ownership.Owned) {
		if gs.SupplyCenterCount(p) >= 18 {
			return p, true
		}
	}
	return "", false
}
