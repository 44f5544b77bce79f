package diplomacy

import "fmt"

// Player issues orders for the units it controls on a board.
type Player struct {
	Name  Power
	Map   *Map
	Units map[Unit]bool
}

// NewPlayer checks that every unit stands on a territory that accepts its
// type and that no two units share a territory.
func NewPlayer(m *Map, name Power, units ...Unit) (*Player, error) {
	p := &Player{Name: name, Map: m, Units: make(map[Unit]bool, len(units))}
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		t, ok := m.Territory(u.Position)
		if !ok {
			return nil, illegal(u.String(), fmt.Errorf("%w: %s", ErrUnknownTerritory, u.Position))
		}
		if !t.Accepts(u.Type) {
			return nil, illegal(u.String(), ErrWrongUnitType)
		}
		land := m.Canonical(u.Position)
		if seen[land] {
			return nil, illegal(u.String(), fmt.Errorf("%w: %s already occupied", ErrInvalidOrder, land))
		}
		seen[land] = true
		p.Units[u] = true
	}
	return p, nil
}

// Owns reports whether u belongs to the player.
func (p *Player) Owns(u Unit) bool {
	return p.Units[u]
}

func (p *Player) command(u Unit) error {
	if !p.Units[u] {
		return illegal(u.String(), fmt.Errorf("%w: %s", ErrNotOwnUnit, p.Name))
	}
	return nil
}

// Hold orders u to stay in place.
func (p *Player) Hold(u Unit) (Order, error) {
	if err := p.command(u); err != nil {
		return nil, err
	}
	return NewHold(p.Map, p.Name, u)
}

// Move orders u to dest. Moving to its own position is a Hold.
func (p *Player) Move(u Unit, dest string) (Order, error) {
	if err := p.command(u); err != nil {
		return nil, err
	}
	return NewMove(p.Map, p.Name, u, dest)
}

// Support orders u to support supported into dest.
func (p *Player) Support(u, supported Unit, dest string) (Order, error) {
	if err := p.command(u); err != nil {
		return nil, err
	}
	return NewSupport(p.Map, p.Name, u, supported, dest)
}

// ConvoyMove orders troop u to travel to dest by convoy.
func (p *Player) ConvoyMove(u Unit, dest string) (Order, error) {
	if err := p.command(u); err != nil {
		return nil, err
	}
	return NewConvoyMove(p.Map, p.Name, u, dest)
}

// Transport orders fleet u to convoy transported to dest.
func (p *Player) Transport(u, transported Unit, dest string) (Order, error) {
	if err := p.command(u); err != nil {
		return nil, err
	}
	return NewConvoyTransport(p.Map, p.Name, u, transported, dest)
}

// NewHold builds a Hold order.
func NewHold(m *Map, player Power, u Unit) (Order, error) {
	o := Hold{Player: player, Unit: u}
	if !m.Has(u.Position) {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	return o, nil
}

// NewMove builds a Move order. dest must be adjacent to the unit and
// accept its type; a move to the unit's own position yields a Hold.
func NewMove(m *Map, player Power, u Unit, dest string) (Order, error) {
	if dest == u.Position {
		return NewHold(m, player, u)
	}
	o := Move{Player: player, Unit: u, Destination: dest}
	t, ok := m.Territory(dest)
	if !ok || !m.Has(u.Position) {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	if !m.Adjacent(u.Position, dest) {
		return nil, illegal(o.String(), ErrNotAdjacent)
	}
	if !t.Accepts(u.Type) {
		return nil, illegal(o.String(), ErrWrongUnitType)
	}
	return o, nil
}

// NewSupport builds a Support order. The supporter must be able to reach
// some part of dest, and the supported unit must be able to reach dest
// directly, by convoy, or already stand there.
func NewSupport(m *Map, player Power, u, supported Unit, dest string) (Order, error) {
	o := Support{Player: player, Unit: u, Supported: supported, Destination: dest}
	t, ok := m.Territory(dest)
	if !ok || !m.Has(u.Position) || !m.Has(supported.Position) {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	if u == supported {
		return nil, illegal(o.String(), ErrSelfSupport)
	}
	src, _ := m.Territory(supported.Position)
	reachable := dest == supported.Position ||
		m.CanEnter(supported, dest) ||
		(supported.Type == Troop && t.ConvoyCompatible() && src.ConvoyCompatible())
	if !reachable {
		return nil, illegal(o.String(), ErrUnsupportable)
	}
	if !m.CanSupportInto(u, dest) {
		return nil, illegal(o.String(), ErrNotAdjacent)
	}
	return o, nil
}

// NewConvoyMove builds a ConvoyMove order for a troop between two distinct
// coastal lands.
func NewConvoyMove(m *Map, player Power, u Unit, dest string) (Order, error) {
	o := ConvoyMove{Player: player, Unit: u, Destination: dest}
	if !m.Has(u.Position) || !m.Has(dest) {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	if u.Type != Troop {
		return nil, illegal(o.String(), ErrWrongUnitType)
	}
	if dest == u.Position {
		return nil, illegal(o.String(), fmt.Errorf("%w: convoy to own territory", ErrInvalidOrder))
	}
	if !m.ConvoyCompatible(u.Position) || !m.ConvoyCompatible(dest) {
		return nil, illegal(o.String(), ErrNotConvoyable)
	}
	return o, nil
}

// NewConvoyTransport builds a ConvoyTransport order for a fleet at sea.
func NewConvoyTransport(m *Map, player Power, u, transported Unit, dest string) (Order, error) {
	o := ConvoyTransport{Player: player, Unit: u, Transported: transported, Destination: dest}
	at, ok := m.Territory(u.Position)
	if !ok || !m.Has(transported.Position) || !m.Has(dest) {
		return nil, illegal(o.String(), ErrUnknownTerritory)
	}
	if u.Type != Fleet || at.Kind != SeaTerritory || transported.Type != Troop {
		return nil, illegal(o.String(), ErrWrongUnitType)
	}
	if dest == transported.Position {
		return nil, illegal(o.String(), fmt.Errorf("%w: convoy to own territory", ErrInvalidOrder))
	}
	if !m.ConvoyCompatible(transported.Position) || !m.ConvoyCompatible(dest) {
		return nil, illegal(o.String(), ErrNotConvoyable)
	}
	return o, nil
}
