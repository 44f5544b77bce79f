package diplomacy

import (
	"fmt"
	"sort"
)

// Retreat lists where a dislodged unit may go. An empty list means the unit
// must disband.
type Retreat struct {
	Destinations []string
}

// Allows reports whether dest is a legal retreat target.
func (r *Retreat) Allows(dest string) bool {
	for _, d := range r.Destinations {
		if d == dest {
			return true
		}
	}
	return false
}

// RetreatMap is the movement phase outcome per player and unit. A nil
// entry means the unit needs no retreat; units that moved are keyed by
// their new position.
type RetreatMap map[Power]map[Unit]*Retreat

// Dislodged returns every unit that must retreat or disband, by player.
func (rm RetreatMap) Dislodged() map[Power][]Unit {
	out := make(map[Power][]Unit)
	for player, units := range rm {
		for u, r := range units {
			if r != nil {
				out[player] = append(out[player], u)
			}
		}
		sortUnits(out[player])
	}
	return out
}

// computeRetreats derives the retreat map once every order is resolved.
func computeRetreats(r *resolver) RetreatMap {
	rm := make(RetreatMap)
	occupied := r.occupied()

	for _, origin := range r.idx.origins {
		o := r.idx.home[origin]
		player, u := o.OrderPlayer(), o.OrderUnit()
		if rm[player] == nil {
			rm[player] = make(map[Unit]*Retreat)
		}

		if r.result[origin] {
			if dest, ok := destinationOf(o); ok {
				u = Unit{Type: u.Type, Position: dest}
			}
			rm[player][u] = nil
			continue
		}

		var direct []Move
		for _, a := range r.idx.attackersOf(u.Position) {
			if r.resolveOrder(a) {
				direct = append(direct, a)
			}
		}
		convoyed := false
		for _, c := range r.idx.convoyAttackersOf(u.Position) {
			if r.resolveOrder(c) {
				convoyed = true
			}
		}
		if len(direct) == 0 && !convoyed {
			rm[player][u] = nil
			continue
		}

		retreat := &Retreat{Destinations: []string{}}
		for _, t := range r.m.Neighbors(u.Position) {
			if r.canRetreatTo(t, occupied, direct) {
				retreat.Destinations = append(retreat.Destinations, t)
			}
		}
		rm[player][u] = retreat
	}
	return rm
}

func (r *resolver) canRetreatTo(t string, occupied map[string]bool, direct []Move) bool {
	if occupied[r.m.Canonical(t)] {
		return false
	}
	for _, a := range direct {
		if r.m.SameTerritory(a.Unit.Position, t) {
			return false
		}
	}
	if r.holdStrength(t) != 0 {
		return false
	}
	// A standoff leaves the territory empty but still closed to retreats.
	for _, a := range r.idx.attackersOf(t) {
		if r.preventStrength(a) != 0 {
			return false
		}
	}
	for _, c := range r.idx.convoyAttackersOf(t) {
		if r.preventStrength(c) != 0 {
			return false
		}
	}
	return true
}

// occupied returns the canonical territories holding a unit at the end of
// the movement phase, dislodged units included.
func (r *resolver) occupied() map[string]bool {
	out := make(map[string]bool, len(r.idx.origins))
	for _, origin := range r.idx.origins {
		o := r.idx.home[origin]
		if dest, ok := destinationOf(o); ok && r.result[origin] {
			out[r.m.Canonical(dest)] = true
			continue
		}
		out[origin] = true
	}
	return out
}

// RetreatOrder is a retreat-phase order: RetreatMove or RetreatDisband.
type RetreatOrder interface {
	OrderPlayer() Power
	OrderUnit() Unit
	String() string
	isRetreatOrder()
}

// RetreatMove sends a dislodged unit to one of its legal retreats.
type RetreatMove struct {
	Player      Power
	Unit        Unit
	Destination string
}

// RetreatDisband removes a dislodged unit from the board.
type RetreatDisband struct {
	Player Power
	Unit   Unit
}

func (o RetreatMove) OrderPlayer() Power    { return o.Player }
func (o RetreatDisband) OrderPlayer() Power { return o.Player }
func (o RetreatMove) OrderUnit() Unit       { return o.Unit }
func (o RetreatDisband) OrderUnit() Unit    { return o.Unit }
func (RetreatMove) isRetreatOrder()         {}
func (RetreatDisband) isRetreatOrder()      {}

func (o RetreatMove) String() string    { return fmt.Sprintf("%s R %s", o.Unit, o.Destination) }
func (o RetreatDisband) String() string { return fmt.Sprintf("%s D", o.Unit) }

// NewRetreatMove builds a retreat order that rm permits.
func NewRetreatMove(rm RetreatMap, player Power, u Unit, dest string) (RetreatOrder, error) {
	o := RetreatMove{Player: player, Unit: u, Destination: dest}
	r, err := requiredRetreat(rm, player, u)
	if err != nil {
		return nil, illegal(o.String(), err)
	}
	if !r.Allows(dest) {
		return nil, illegal(o.String(), fmt.Errorf("%w: %s is not a legal retreat", ErrNotAdjacent, dest))
	}
	return o, nil
}

// NewRetreatDisband builds a disband order for a unit that must retreat.
func NewRetreatDisband(rm RetreatMap, player Power, u Unit) (RetreatOrder, error) {
	o := RetreatDisband{Player: player, Unit: u}
	if _, err := requiredRetreat(rm, player, u); err != nil {
		return nil, illegal(o.String(), err)
	}
	return o, nil
}

func requiredRetreat(rm RetreatMap, player Power, u Unit) (*Retreat, error) {
	r, ok := rm[player][u]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOwnUnit, player)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s does not need to retreat", ErrInvalidOrder, u)
	}
	return r, nil
}

// ResolveRetreats applies retreat orders and returns the surviving units
// per player. The orders must cover exactly the units rm requires to
// retreat. Retreats into the same territory all fail and those units
// disband.
func ResolveRetreats(m *Map, rm RetreatMap, orders []RetreatOrder) (PlayerUnits, error) {
	type key struct {
		player Power
		unit   Unit
	}
	required := make(map[key]bool)
	for player, units := range rm {
		for u, r := range units {
			if r != nil {
				required[key{player, u}] = true
			}
		}
	}
	given := make(map[key]bool, len(orders))
	for _, o := range orders {
		k := key{o.OrderPlayer(), o.OrderUnit()}
		if !required[k] || given[k] {
			return nil, &ProtocolError{Phase: PhaseRetreat, Player: k.player,
				Err: errorf(ErrRetreatMismatch, "unexpected order %s", o)}
		}
		if mv, ok := o.(RetreatMove); ok && !rm[k.player][k.unit].Allows(mv.Destination) {
			return nil, &ProtocolError{Phase: PhaseRetreat, Player: k.player,
				Err: errorf(ErrRetreatMismatch, "%s is not a legal retreat", mv)}
		}
		given[k] = true
	}
	if len(given) != len(required) {
		var missing []string
		for k := range required {
			if !given[k] {
				missing = append(missing, fmt.Sprintf("%s %s", k.player, k.unit))
			}
		}
		sort.Strings(missing)
		return nil, &ProtocolError{Phase: PhaseRetreat, Err: errorf(ErrRetreatMismatch, "no order for %v", missing)}
	}

	out := make(PlayerUnits, len(rm))
	for player, units := range rm {
		set := make(map[Unit]bool, len(units))
		for u, r := range units {
			if r == nil {
				set[u] = true
			}
		}
		out[player] = set
	}

	targets := make(map[string]int)
	for _, o := range orders {
		if mv, ok := o.(RetreatMove); ok {
			targets[m.Canonical(mv.Destination)]++
		}
	}
	for _, o := range orders {
		mv, ok := o.(RetreatMove)
		if !ok || targets[m.Canonical(mv.Destination)] > 1 {
			continue
		}
		out[mv.Player][Unit{Type: mv.Unit.Type, Position: mv.Destination}] = true
	}
	return out, nil
}
