package diplomacy

import "sort"

// Power identifies the player issuing orders. The vanilla board uses the
// seven great powers below, but any non-empty name works.
type Power string

const (
	Austria Power = "austria"
	England Power = "england"
	France  Power = "france"
	Germany Power = "germany"
	Italy   Power = "italy"
	Russia  Power = "russia"
	Turkey  Power = "turkey"
)

// AllPowers returns the seven great powers in standard order.
func AllPowers() []Power {
	return []Power{Austria, England, France, Germany, Italy, Russia, Turkey}
}

// UnitType represents the type of a military unit.
type UnitType int

const (
	Troop UnitType = iota
	Fleet
)

func (u UnitType) String() string {
	if u == Troop {
		return "troop"
	}
	return "fleet"
}

// Abbrev returns the single-letter notation for the unit type ("A" or "F").
func (u UnitType) Abbrev() string {
	if u == Troop {
		return "A"
	}
	return "F"
}

// Unit is a value type: two units are equal iff kind and position match.
// Fleets sit on coast or sea territories, troops on land territories.
type Unit struct {
	Type     UnitType
	Position string
}

func (u Unit) String() string {
	return u.Type.Abbrev() + " " + u.Position
}

// PlayerUnits maps each player to the set of units it controls.
type PlayerUnits map[Power]map[Unit]bool

// Clone returns a deep copy.
func (pu PlayerUnits) Clone() PlayerUnits {
	c := make(PlayerUnits, len(pu))
	for p, units := range pu {
		set := make(map[Unit]bool, len(units))
		for u := range units {
			set[u] = true
		}
		c[p] = set
	}
	return c
}

// Sorted returns the player's units ordered by position.
func (pu PlayerUnits) Sorted(p Power) []Unit {
	units := make([]Unit, 0, len(pu[p]))
	for u := range pu[p] {
		units = append(units, u)
	}
	sortUnits(units)
	return units
}

// Players returns the player names in sorted order.
func (pu PlayerUnits) Players() []Power {
	players := make([]Power, 0, len(pu))
	for p := range pu {
		players = append(players, p)
	}
	sortPowers(players)
	return players
}

// Count returns the number of units the player controls.
func (pu PlayerUnits) Count(p Power) int {
	return len(pu[p])
}

func sortUnits(units []Unit) {
	sort.Slice(units, func(i, j int) bool {
		if units[i].Position != units[j].Position {
			return units[i].Position < units[j].Position
		}
		return units[i].Type < units[j].Type
	})
}

func sortPowers(players []Power) {
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
}
