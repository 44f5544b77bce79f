package diplomacy

import (
	"fmt"
	"sort"
	"strings"
)

// AdjustmentOrder is a winter order: AdjustmentCreate or AdjustmentDisband.
type AdjustmentOrder interface {
	OrderPlayer() Power
	OrderUnit() Unit
	String() string
	isAdjustmentOrder()
}

// AdjustmentCreate builds a new unit on an owned home center.
type AdjustmentCreate struct {
	Player Power
	Unit   Unit
}

// AdjustmentDisband removes one of the player's units.
type AdjustmentDisband struct {
	Player Power
	Unit   Unit
}

func (o AdjustmentCreate) OrderPlayer() Power  { return o.Player }
func (o AdjustmentDisband) OrderPlayer() Power { return o.Player }
func (o AdjustmentCreate) OrderUnit() Unit     { return o.Unit }
func (o AdjustmentDisband) OrderUnit() Unit    { return o.Unit }
func (AdjustmentCreate) isAdjustmentOrder()    {}
func (AdjustmentDisband) isAdjustmentOrder()   {}

func (o AdjustmentCreate) String() string  { return fmt.Sprintf("%s B", o.Unit) }
func (o AdjustmentDisband) String() string { return fmt.Sprintf("%s D", o.Unit) }

// NewAdjustmentCreate checks that u may be built: its territory must be an
// owned home center of player, free of any unit, and accept u's type.
func NewAdjustmentCreate(own *OwnershipMap, units PlayerUnits, player Power, u Unit) (AdjustmentOrder, error) {
	o := AdjustmentCreate{Player: player, Unit: u}
	m := own.Supply.Map
	t, ok := m.Territory(u.Position)
	if !ok {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	if !t.Accepts(u.Type) {
		return nil, illegal(o.String(), ErrWrongUnitType)
	}
	if !own.IsHome(player, u.Position) {
		return nil, illegal(o.String(), fmt.Errorf("%w: %s is not a home center of %s", ErrInvalidOrder, m.Canonical(u.Position), player))
	}
	if !own.IsOwned(player, u.Position) {
		return nil, illegal(o.String(), fmt.Errorf("%w: %s does not own %s", ErrInvalidOrder, player, m.Canonical(u.Position)))
	}
	for _, set := range units {
		for existing := range set {
			if m.SameTerritory(existing.Position, u.Position) {
				return nil, illegal(o.String(), fmt.Errorf("%w: %s is occupied", ErrInvalidOrder, m.Canonical(u.Position)))
			}
		}
	}
	return o, nil
}

// NewAdjustmentDisband checks that player owns u.
func NewAdjustmentDisband(units PlayerUnits, player Power, u Unit) (AdjustmentOrder, error) {
	o := AdjustmentDisband{Player: player, Unit: u}
	if !units[player][u] {
		return nil, illegal(o.String(), fmt.Errorf("%w: %s", ErrNotOwnUnit, player))
	}
	return o, nil
}

// CalculateAdjustments recomputes center ownership from final unit
// positions and returns each player's build (positive) or disband
// (negative) count. Call it only after the fall retreats.
func CalculateAdjustments(own *OwnershipMap, units PlayerUnits) (*OwnershipMap, map[Power]int) {
	m := own.Supply.Map
	players := make(map[Power]bool)
	for p := range own.Owned {
		players[p] = true
	}
	for p := range units {
		players[p] = true
	}

	occupant := make(map[string]Power)
	for p, set := range units {
		for u := range set {
			occupant[m.Canonical(u.Position)] = p
		}
	}

	next := &OwnershipMap{
		Supply: own.Supply,
		Owned:  make(map[Power]map[string]bool, len(players)),
		Home:   cloneSets(own.Home),
	}
	deltas := make(map[Power]int, len(players))
	for p := range players {
		owned := make(map[string]bool)
		for center := range own.Owned[p] {
			if holder, taken := occupant[center]; (!taken || holder == p) && own.Supply.Centers[center] {
				owned[center] = true
			}
		}
		for u := range units[p] {
			if land := m.Canonical(u.Position); own.Supply.Centers[land] {
				owned[land] = true
			}
		}
		next.Owned[p] = owned
		deltas[p] = len(owned) - len(units[p])
	}
	return next, deltas
}

// ResolveAdjustment applies adjustment orders with civil disorder: excess
// orders are dropped alphabetically by territory and missing disbands are
// chosen alphabetically by territory. Only disbanding a unit the player
// does not have is an error.
func ResolveAdjustment(own *OwnershipMap, deltas map[Power]int, units PlayerUnits, orders []AdjustmentOrder) (PlayerUnits, error) {
	m := own.Supply.Map
	for _, o := range orders {
		if d, ok := o.(AdjustmentDisband); ok && !units[d.Player][d.Unit] {
			return nil, &ProtocolError{Phase: PhaseAdjustment, Player: d.Player,
				Err: errorf(ErrUnknownUnit, "%s", d)}
		}
	}

	next := units.Clone()
	for _, p := range sortedPowers(deltas) {
		switch delta := deltas[p]; {
		case delta < 0:
			if next[p] == nil {
				continue
			}
			for _, u := range findDisbands(p, -delta, units, orders) {
				delete(next[p], u)
			}
		case delta > 0:
			creates := findCreates(m, p, delta, orders)
			if len(creates) > 0 && next[p] == nil {
				next[p] = make(map[Unit]bool)
			}
			for _, u := range creates {
				next[p][u] = true
			}
		}
	}
	return next, nil
}

// ResolveAdjustmentValidated rejects any order set that civil disorder
// would have to repair: wrong kind for the player's entitlement, more
// orders than allowed, duplicates, or fewer disbands than required.
func ResolveAdjustmentValidated(own *OwnershipMap, deltas map[Power]int, units PlayerUnits, orders []AdjustmentOrder) (PlayerUnits, error) {
	if err := validateAdjustments(own.Supply.Map, deltas, orders); err != nil {
		return nil, err
	}
	return ResolveAdjustment(own, deltas, units, orders)
}

func validateAdjustments(m *Map, deltas map[Power]int, orders []AdjustmentOrder) error {
	seen := make(map[Power]map[string]bool)
	for _, o := range orders {
		p := o.OrderPlayer()
		delta := deltas[p]
		fail := func(err error) error {
			return &ProtocolError{Phase: PhaseAdjustment, Player: p, Err: err}
		}

		switch o.(type) {
		case AdjustmentCreate:
			if delta <= 0 {
				return fail(errorf(ErrAdjustmentKind, "%s builds with entitlement %d", o, delta))
			}
		case AdjustmentDisband:
			if delta >= 0 {
				return fail(errorf(ErrAdjustmentKind, "%s disbands with entitlement %d", o, delta))
			}
		}

		if seen[p] == nil {
			seen[p] = make(map[string]bool)
		}
		land := m.Canonical(o.OrderUnit().Position)
		if seen[p][land] {
			return fail(errorf(ErrDuplicateAdjustment, "%s", o))
		}
		if len(seen[p]) >= abs(delta) {
			return fail(errorf(ErrAdjustmentCount, "more than %d orders", abs(delta)))
		}
		seen[p][land] = true
	}

	for _, p := range sortedPowers(deltas) {
		if delta := deltas[p]; delta < 0 && len(seen[p]) != -delta {
			return &ProtocolError{Phase: PhaseAdjustment, Player: p,
				Err: errorf(ErrAdjustmentCount, "%d disbands given, %d required", len(seen[p]), -delta)}
		}
	}
	return nil
}

// findDisbands picks exactly n units of p to remove. Ordered disbands are
// kept alphabetically up to n; any shortfall is filled from the remaining
// units in alphabetical order of territory.
func findDisbands(p Power, n int, units PlayerUnits, orders []AdjustmentOrder) []Unit {
	chosen := make(map[Unit]bool)
	var ordered []Unit
	for _, o := range orders {
		if d, ok := o.(AdjustmentDisband); ok && d.Player == p && !chosen[d.Unit] {
			chosen[d.Unit] = true
			ordered = append(ordered, d.Unit)
		}
	}
	sortUnitsFold(ordered)
	if len(ordered) > n {
		ordered = ordered[:n]
	}

	picked := make(map[Unit]bool, n)
	for _, u := range ordered {
		picked[u] = true
	}
	remaining := make([]Unit, 0, len(units[p]))
	for u := range units[p] {
		if !picked[u] {
			remaining = append(remaining, u)
		}
	}
	sortUnitsFold(remaining)
	for i := 0; len(ordered) < n && i < len(remaining); i++ {
		ordered = append(ordered, remaining[i])
	}
	return ordered
}

// findCreates keeps the first build listed per territory, then at most n
// of them in alphabetical order of territory.
func findCreates(m *Map, p Power, n int, orders []AdjustmentOrder) []Unit {
	seen := make(map[string]bool)
	var creates []Unit
	for _, o := range orders {
		c, ok := o.(AdjustmentCreate)
		if !ok || c.Player != p {
			continue
		}
		land := m.Canonical(c.Unit.Position)
		if seen[land] {
			continue
		}
		seen[land] = true
		creates = append(creates, c.Unit)
	}
	sortUnitsFold(creates)
	if len(creates) > n {
		creates = creates[:n]
	}
	return creates
}

func sortUnitsFold(units []Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		a, b := strings.ToLower(units[i].Position), strings.ToLower(units[j].Position)
		if a != b {
			return a < b
		}
		return units[i].Type < units[j].Type
	})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
