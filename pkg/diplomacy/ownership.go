package diplomacy

import (
	"fmt"
	"sort"
)

// SupplyCenterMap marks which lands of a board are supply centers.
type SupplyCenterMap struct {
	Map     *Map
	Centers map[string]bool
}

// NewSupplyCenterMap validates that every center is a land on m. Coast
// names are accepted and stored under their land.
func NewSupplyCenterMap(m *Map, centers ...string) (*SupplyCenterMap, error) {
	sc := &SupplyCenterMap{Map: m, Centers: make(map[string]bool, len(centers))}
	for _, c := range centers {
		t, ok := m.Territory(c)
		if !ok {
			return nil, fmt.Errorf("%w: supply center %q", ErrUnknownTerritory, c)
		}
		if t.Land().Kind != LandTerritory {
			return nil, fmt.Errorf("%w: supply center %q is not land", ErrInvalidMap, c)
		}
		sc.Centers[t.Land().Name] = true
	}
	return sc, nil
}

// IsCenter reports whether the territory (or its land) is a supply center.
func (sc *SupplyCenterMap) IsCenter(name string) bool {
	return sc.Centers[sc.Map.Canonical(name)]
}

// Sorted returns the supply centers in sorted order.
func (sc *SupplyCenterMap) Sorted() []string {
	return sortedKeys(sc.Centers)
}

// OwnershipMap records, per player, which supply centers it currently owns
// and which are its home centers. Every named territory is a supply center.
type OwnershipMap struct {
	Supply *SupplyCenterMap
	Owned  map[Power]map[string]bool
	Home   map[Power]map[string]bool
}

// NewOwnershipMap checks that every owned and home territory is a supply
// center and that no center has two owners.
func NewOwnershipMap(supply *SupplyCenterMap, owned, home map[Power]map[string]bool) (*OwnershipMap, error) {
	own := &OwnershipMap{
		Supply: supply,
		Owned:  make(map[Power]map[string]bool, len(owned)),
		Home:   make(map[Power]map[string]bool, len(home)),
	}
	owner := make(map[string]Power)
	for _, p := range sortedPowers(owned) {
		set := make(map[string]bool, len(owned[p]))
		for t := range owned[p] {
			name := supply.Map.Canonical(t)
			if !supply.Centers[name] {
				return nil, fmt.Errorf("%w: %s owns non-center %q", ErrInvalidMap, p, t)
			}
			if prev, taken := owner[name]; taken {
				return nil, fmt.Errorf("%w: %q owned by both %s and %s", ErrInvalidMap, name, prev, p)
			}
			owner[name] = p
			set[name] = true
		}
		own.Owned[p] = set
	}
	for p, centers := range home {
		set := make(map[string]bool, len(centers))
		for t := range centers {
			name := supply.Map.Canonical(t)
			if !supply.Centers[name] {
				return nil, fmt.Errorf("%w: %s home %q is not a center", ErrInvalidMap, p, t)
			}
			set[name] = true
		}
		own.Home[p] = set
	}
	return own, nil
}

// IsOwned reports whether player owns the territory (or its land).
func (o *OwnershipMap) IsOwned(player Power, territory string) bool {
	return o.Owned[player][o.Supply.Map.Canonical(territory)]
}

// IsHome reports whether the territory (or its land) is a home center of player.
func (o *OwnershipMap) IsHome(player Power, territory string) bool {
	return o.Home[player][o.Supply.Map.Canonical(territory)]
}

// Owner returns the player owning a center, if any.
func (o *OwnershipMap) Owner(territory string) (Power, bool) {
	name := o.Supply.Map.Canonical(territory)
	for p, set := range o.Owned {
		if set[name] {
			return p, true
		}
	}
	return "", false
}

// CenterCount returns the number of centers owned by player.
func (o *OwnershipMap) CenterCount(player Power) int {
	return len(o.Owned[player])
}

// Clone returns a deep copy sharing the immutable supply map.
func (o *OwnershipMap) Clone() *OwnershipMap {
	return &OwnershipMap{Supply: o.Supply, Owned: cloneSets(o.Owned), Home: cloneSets(o.Home)}
}

func cloneSets(in map[Power]map[string]bool) map[Power]map[string]bool {
	out := make(map[Power]map[string]bool, len(in))
	for p, set := range in {
		c := make(map[string]bool, len(set))
		for k := range set {
			c[k] = true
		}
		out[p] = c
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedPowers[V any](m map[Power]V) []Power {
	out := make([]Power, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortPowers(out)
	return out
}
