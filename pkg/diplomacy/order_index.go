package diplomacy

import "sort"

// route keys supports and transports by the canonical origin of the unit
// acted upon and the canonical destination.
type route struct {
	from, to string
}

// orderIndex is a read-only view over one turn's orders. Every key is a
// canonical territory name; missing keys yield nil slices.
type orderIndex struct {
	m               *Map
	home            map[string]Order
	attackers       map[string][]Move
	convoyAttackers map[string][]ConvoyMove
	supports        map[route][]Support
	transports      map[route][]ConvoyTransport
	origins         []string
}

func newOrderIndex(m *Map, orders []Order) (*orderIndex, error) {
	idx := &orderIndex{
		m:               m,
		home:            make(map[string]Order, len(orders)),
		attackers:       make(map[string][]Move),
		convoyAttackers: make(map[string][]ConvoyMove),
		supports:        make(map[route][]Support),
		transports:      make(map[route][]ConvoyTransport),
	}

	for _, o := range orders {
		origin := m.Canonical(o.OrderUnit().Position)
		if prev, dup := idx.home[origin]; dup {
			return nil, &ProtocolError{Phase: PhaseMovement, Player: o.OrderPlayer(),
				Err: errorf(ErrDuplicateOrder, "%s and %s", prev, o)}
		}
		idx.home[origin] = o
		idx.origins = append(idx.origins, origin)

		switch o := o.(type) {
		case Hold:
		case Move:
			dst := m.Canonical(o.Destination)
			idx.attackers[dst] = append(idx.attackers[dst], o)
		case ConvoyMove:
			dst := m.Canonical(o.Destination)
			idx.convoyAttackers[dst] = append(idx.convoyAttackers[dst], o)
		case Support:
			k := route{m.Canonical(o.Supported.Position), m.Canonical(o.Destination)}
			idx.supports[k] = append(idx.supports[k], o)
		case ConvoyTransport:
			k := route{m.Canonical(o.Transported.Position), m.Canonical(o.Destination)}
			idx.transports[k] = append(idx.transports[k], o)
		}
	}

	// Input order must not leak into resolution order.
	sort.Strings(idx.origins)
	for _, list := range idx.attackers {
		sort.Slice(list, func(i, j int) bool { return list[i].Unit.Position < list[j].Unit.Position })
	}
	for _, list := range idx.convoyAttackers {
		sort.Slice(list, func(i, j int) bool { return list[i].Unit.Position < list[j].Unit.Position })
	}
	for _, list := range idx.supports {
		sort.Slice(list, func(i, j int) bool { return list[i].Unit.Position < list[j].Unit.Position })
	}
	for _, list := range idx.transports {
		sort.Slice(list, func(i, j int) bool { return list[i].Unit.Position < list[j].Unit.Position })
	}
	return idx, nil
}

// orderAt returns the order of the unit standing on territory, or nil.
func (idx *orderIndex) orderAt(territory string) Order {
	return idx.home[idx.m.Canonical(territory)]
}

// attackersOf returns direct moves into territory.
func (idx *orderIndex) attackersOf(territory string) []Move {
	return idx.attackers[idx.m.Canonical(territory)]
}

// convoyAttackersOf returns convoyed moves into territory.
func (idx *orderIndex) convoyAttackersOf(territory string) []ConvoyMove {
	return idx.convoyAttackers[idx.m.Canonical(territory)]
}

// supportsFor returns supports of the unit at from acting on to. from == to
// selects hold supports.
func (idx *orderIndex) supportsFor(from, to string) []Support {
	return idx.supports[route{idx.m.Canonical(from), idx.m.Canonical(to)}]
}

// transportsFor returns fleets ordered to convoy the troop at from to to.
func (idx *orderIndex) transportsFor(from, to string) []ConvoyTransport {
	return idx.transports[route{idx.m.Canonical(from), idx.m.Canonical(to)}]
}

// supportMismatch reports whether s names a destination the supported unit
// is not actually acting on. Such a support never takes effect.
func (idx *orderIndex) supportMismatch(s Support) bool {
	if supported := idx.orderAt(s.Supported.Position); supported != nil {
		if dest, moving := destinationOf(supported); moving {
			return !idx.m.SameTerritory(dest, s.Destination)
		}
	}
	return !idx.m.SameTerritory(s.Destination, s.Supported.Position)
}
