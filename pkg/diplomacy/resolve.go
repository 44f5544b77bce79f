package diplomacy

import (
	"sort"

	"github.com/rs/zerolog"
)

// Resolution state constants for the Kruijswijk algorithm.
type resolutionState int

const (
	rsUnresolved resolutionState = iota
	rsGuessing
	rsResolved
)

// DefaultMaxSteps bounds the number of resolve calls for one turn.
const DefaultMaxSteps = 100000

// ResolveOptions tunes a single adjudication.
type ResolveOptions struct {
	// MaxSteps caps recursive resolve calls. Zero means DefaultMaxSteps.
	MaxSteps int
	// Logger receives debug traces of paradox handling. Nil disables them.
	Logger *zerolog.Logger
}

// Adjudication is the outcome of one movement phase.
type Adjudication struct {
	Map      *Map
	Retreats RetreatMap

	idx     *orderIndex
	success map[string]bool
}

// ResolveTurn adjudicates one movement phase and returns, per player and
// unit, whether a retreat is required and where to. Every unit on the board
// must have exactly one order.
func ResolveTurn(m *Map, orders []Order) (RetreatMap, error) {
	return ResolveTurnWithOptions(m, orders, ResolveOptions{})
}

// ResolveTurnWithOptions is ResolveTurn with explicit options.
func ResolveTurnWithOptions(m *Map, orders []Order, opts ResolveOptions) (RetreatMap, error) {
	adj, err := AdjudicateWithOptions(m, orders, opts)
	if err != nil {
		return nil, err
	}
	return adj.Retreats, nil
}

// Adjudicate resolves every order and keeps the per-order outcome.
func Adjudicate(m *Map, orders []Order) (*Adjudication, error) {
	return AdjudicateWithOptions(m, orders, ResolveOptions{})
}

// AdjudicateWithOptions is Adjudicate with explicit options.
func AdjudicateWithOptions(m *Map, orders []Order, opts ResolveOptions) (*Adjudication, error) {
	idx, err := newOrderIndex(m, orders)
	if err != nil {
		return nil, err
	}
	r := newResolver(m, idx, opts)
	if err := r.run(); err != nil {
		return nil, err
	}
	retreats := computeRetreats(r)
	if r.err != nil {
		return nil, r.err
	}
	return &Adjudication{
		Map:      m,
		Retreats: retreats,
		idx:      idx,
		success:  r.result,
	}, nil
}

// Succeeded reports whether the order given to u succeeded. For holding,
// supporting and convoying units success means the order took effect.
func (a *Adjudication) Succeeded(u Unit) bool {
	key := a.Map.Canonical(u.Position)
	o := a.idx.home[key]
	return o != nil && o.OrderUnit() == u && a.success[key]
}

// Orders returns the adjudicated orders sorted by origin.
func (a *Adjudication) Orders() []Order {
	out := make([]Order, 0, len(a.idx.origins))
	for _, origin := range a.idx.origins {
		out = append(out, a.idx.home[origin])
	}
	return out
}

// Results classifies every order for display.
func (a *Adjudication) Results() []ResolvedOrder {
	out := make([]ResolvedOrder, 0, len(a.idx.origins))
	for _, o := range a.Orders() {
		out = append(out, ResolvedOrder{Order: o, Result: a.classify(o)})
	}
	return out
}

func (a *Adjudication) classify(o Order) OrderResult {
	u := o.OrderUnit()
	if a.Retreats[o.OrderPlayer()][u] != nil {
		return ResultDislodged
	}
	if a.Succeeded(u) {
		return ResultSucceeded
	}
	switch o := o.(type) {
	case Move, ConvoyMove:
		return ResultBounced
	case Support:
		if !a.idx.supportMismatch(o) {
			return ResultCut
		}
	}
	return ResultFailed
}

// Units returns every unit that keeps its place on the board after the
// movement phase: moved units at their destinations, dislodged units
// excluded.
func (a *Adjudication) Units() PlayerUnits {
	out := make(PlayerUnits)
	for player, units := range a.Retreats {
		for u, retreat := range units {
			if retreat != nil {
				continue
			}
			if out[player] == nil {
				out[player] = make(map[Unit]bool)
			}
			out[player][u] = true
		}
	}
	return out
}

// resolver holds the transient state of one turn. It is created per call
// and never shared.
type resolver struct {
	m   *Map
	idx *orderIndex

	state  map[string]resolutionState
	result map[string]bool
	deps   []string

	steps    int
	maxSteps int
	err      error
	log      zerolog.Logger
}

func newResolver(m *Map, idx *orderIndex, opts ResolveOptions) *resolver {
	r := &resolver{
		m:        m,
		idx:      idx,
		state:    make(map[string]resolutionState, len(idx.origins)),
		result:   make(map[string]bool, len(idx.origins)),
		maxSteps: opts.MaxSteps,
		log:      zerolog.Nop(),
	}
	if r.maxSteps <= 0 {
		r.maxSteps = DefaultMaxSteps
	}
	if opts.Logger != nil {
		r.log = *opts.Logger
	}
	return r
}

func (r *resolver) run() error {
	for _, origin := range r.idx.origins {
		r.resolve(origin)
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

// resolveOrder resolves the order of the unit issuing o.
func (r *resolver) resolveOrder(o Order) bool {
	return r.resolve(r.m.Canonical(o.OrderUnit().Position))
}

// resolve returns whether the order originating at key succeeds, guessing
// and backtracking through dependency cycles.
func (r *resolver) resolve(key string) bool {
	if r.err != nil {
		return false
	}
	if r.state[key] == rsResolved {
		return r.result[key]
	}
	r.steps++
	if r.steps > r.maxSteps {
		r.err = ErrResolutionDiverged
		r.log.Debug().Int("steps", r.steps).Str("order", r.idx.home[key].String()).Msg("Step cap exceeded")
		return false
	}

	if r.state[key] == rsGuessing {
		if !r.pending(key) {
			r.deps = append(r.deps, key)
		}
		return r.result[key]
	}

	oldLen := len(r.deps)

	r.result[key] = false
	r.state[key] = rsGuessing
	failResult := r.adjudicate(key)

	if len(r.deps) == oldLen {
		// A backup rule further down may already have settled this order.
		if r.state[key] != rsResolved {
			r.result[key] = failResult
			r.state[key] = rsResolved
		}
		return r.result[key]
	}

	// Only the order that opened the cycle may settle it; otherwise the
	// cycle runs through an ancestor still being guessed.
	firstCycle := append([]string(nil), r.deps[oldLen:]...)
	if firstCycle[0] != key {
		if !contains(firstCycle, key) {
			r.deps = append(r.deps, key)
		}
		r.result[key] = failResult
		return failResult
	}

	r.reset(firstCycle)
	r.deps = r.deps[:oldLen]

	r.result[key] = true
	r.state[key] = rsGuessing
	successResult := r.adjudicate(key)

	secondCycle := append([]string(nil), r.deps[oldLen:]...)
	cycle := union(firstCycle, secondCycle)

	if failResult == successResult {
		r.reset(cycle)
		r.deps = r.deps[:oldLen]
		r.result[key] = failResult
		r.state[key] = rsResolved
		return failResult
	}

	r.backupRule(cycle)
	r.deps = r.deps[:oldLen]
	return r.resolve(key)
}

func (r *resolver) pending(key string) bool {
	return contains(r.deps, key)
}

func (r *resolver) reset(keys []string) {
	for _, k := range keys {
		r.state[k] = rsUnresolved
	}
}

// backupRule settles a cycle with two consistent outcomes, or none. When a
// move in the cycle targets a convoying fleet, every convoy order in the
// cycle fails. Otherwise every move in the cycle succeeds. Remaining members
// are re-evaluated normally.
func (r *resolver) backupRule(cycle []string) {
	disruption := false
	for _, k := range cycle {
		if mv, ok := r.idx.home[k].(Move); ok {
			if _, convoying := r.idx.orderAt(mv.Destination).(ConvoyTransport); convoying {
				disruption = true
				break
			}
		}
	}

	rule := "circular movement"
	if disruption {
		rule = "convoy disruption"
	}
	r.log.Debug().Str("rule", rule).Strs("cycle", cycle).Msg("Paradox backup rule applied")

	for _, k := range cycle {
		switch r.idx.home[k].(type) {
		case ConvoyMove:
			r.result[k] = !disruption
			r.state[k] = rsResolved
		case ConvoyTransport:
			if disruption {
				r.result[k] = false
				r.state[k] = rsResolved
			} else {
				r.state[k] = rsUnresolved
			}
		case Move:
			if disruption {
				r.state[k] = rsUnresolved
			} else {
				r.result[k] = true
				r.state[k] = rsResolved
			}
		default:
			r.state[k] = rsUnresolved
		}
	}
}

// adjudicate evaluates one order against the current guesses.
func (r *resolver) adjudicate(key string) bool {
	switch o := r.idx.home[key].(type) {
	case Hold:
		return !r.isDislodged(o.Unit)
	case Move:
		return r.adjudicateMove(o)
	case ConvoyMove:
		if !r.hasPath(o) {
			return false
		}
		return r.adjudicateMove(o)
	case Support:
		return r.adjudicateSupport(o)
	case ConvoyTransport:
		return !r.isDislodged(o.Unit)
	default:
		return false
	}
}

// adjudicateMove decides a Move or ConvoyMove: its attack must beat every
// competing prevent strength and then either the head-to-head defender or
// the hold strength of the destination.
func (r *resolver) adjudicateMove(o Order) bool {
	dest, _ := destinationOf(o)
	attack := r.attackStrength(o)

	prevent := 0
	for _, c := range r.competitors(o, dest) {
		if s := r.preventStrength(c); s > prevent {
			prevent = s
		}
	}
	if attack <= prevent {
		return false
	}

	if h2h, ok := r.headToHead(o); ok {
		return attack > r.defendStrength(h2h)
	}
	return attack > r.holdStrength(dest)
}

// competitors returns every other moving order into dest.
func (r *resolver) competitors(o Order, dest string) []Order {
	var out []Order
	self := o.OrderUnit()
	for _, mv := range r.idx.attackersOf(dest) {
		if mv.Unit != self {
			out = append(out, mv)
		}
	}
	for _, cm := range r.idx.convoyAttackersOf(dest) {
		if cm.Unit != self {
			out = append(out, cm)
		}
	}
	return out
}

// headToHead returns the move of the unit at o's destination when it heads
// straight back into o's origin. Convoyed moves never fight head to head.
func (r *resolver) headToHead(o Order) (Move, bool) {
	mv, ok := o.(Move)
	if !ok {
		return Move{}, false
	}
	opp, ok := r.idx.orderAt(mv.Destination).(Move)
	if !ok || !r.m.SameTerritory(opp.Destination, mv.Unit.Position) {
		return Move{}, false
	}
	return opp, true
}

func (r *resolver) attackStrength(o Order) int {
	if cm, ok := o.(ConvoyMove); ok && !r.hasPath(cm) {
		return 0
	}
	u := o.OrderUnit()
	dest, _ := destinationOf(o)
	attacked := r.idx.orderAt(dest)
	supports := r.idx.supportsFor(u.Position, dest)

	if attacked == nil {
		return 1 + r.countSupports(supports, "")
	}
	if _, h2h := r.headToHead(o); !h2h {
		if _, moving := destinationOf(attacked); moving && r.resolveOrder(attacked) {
			return 1 + r.countSupports(supports, "")
		}
	}
	if attacked.OrderPlayer() == o.OrderPlayer() {
		return 0
	}
	return 1 + r.countSupports(supports, attacked.OrderPlayer())
}

func (r *resolver) preventStrength(o Order) int {
	if cm, ok := o.(ConvoyMove); ok && !r.hasPath(cm) {
		return 0
	}
	if h2h, ok := r.headToHead(o); ok && r.resolveOrder(h2h) {
		return 0
	}
	dest, _ := destinationOf(o)
	return 1 + r.countSupports(r.idx.supportsFor(o.OrderUnit().Position, dest), "")
}

func (r *resolver) defendStrength(mv Move) int {
	return 1 + r.countSupports(r.idx.supportsFor(mv.Unit.Position, mv.Destination), "")
}

func (r *resolver) holdStrength(territory string) int {
	occupant := r.idx.orderAt(territory)
	if occupant == nil {
		return 0
	}
	if _, moving := destinationOf(occupant); moving {
		if r.resolveOrder(occupant) {
			return 0
		}
		return 1
	}
	return 1 + r.countSupports(r.idx.supportsFor(territory, territory), "")
}

// countSupports resolves each support and counts the successful ones,
// ignoring supports given by exclude.
func (r *resolver) countSupports(supports []Support, exclude Power) int {
	n := 0
	for _, s := range supports {
		if r.resolveOrder(s) && (exclude == "" || s.Player != exclude) {
			n++
		}
	}
	return n
}

func (r *resolver) adjudicateSupport(s Support) bool {
	if r.idx.supportMismatch(s) {
		return false
	}
	for _, a := range r.idx.attackersOf(s.Unit.Position) {
		if a.Player != s.Player && !r.m.SameTerritory(a.Unit.Position, s.Destination) {
			return false
		}
	}
	for _, c := range r.idx.convoyAttackersOf(s.Unit.Position) {
		if c.Player != s.Player && !r.m.SameTerritory(c.Unit.Position, s.Destination) && r.hasPath(c) {
			return false
		}
	}
	return !r.isDislodged(s.Unit)
}

// isDislodged reports whether any move into u's territory succeeds,
// assuming u stays put.
func (r *resolver) isDislodged(u Unit) bool {
	for _, a := range r.idx.attackersOf(u.Position) {
		if r.resolveOrder(a) {
			return true
		}
	}
	for _, c := range r.idx.convoyAttackersOf(u.Position) {
		if r.resolveOrder(c) {
			return true
		}
	}
	return false
}

// hasPath searches for a chain of successful convoying fleets from the
// seas bordering the troop's coasts to a sea bordering the destination.
// Every fleet visited is resolved, which may recurse into the cycle logic.
func (r *resolver) hasPath(cm ConvoyMove) bool {
	fleets := make(map[string]bool)
	for _, t := range r.idx.transportsFor(cm.Unit.Position, cm.Destination) {
		fleets[t.Unit.Position] = true
	}
	if len(fleets) == 0 {
		return false
	}
	target := r.m.Canonical(cm.Destination)

	var queue []string
	visited := make(map[string]bool)
	source, _ := r.m.Territory(r.m.Canonical(cm.Unit.Position))
	for _, coast := range source.Coasts {
		for _, sea := range r.m.Neighbors(coast.Name) {
			if fleets[sea] && !visited[sea] {
				visited[sea] = true
				queue = append(queue, sea)
			}
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		sea := queue[0]
		queue = queue[1:]
		if !r.resolve(sea) {
			continue
		}
		for _, next := range r.m.Neighbors(sea) {
			t, _ := r.m.Territory(next)
			if t.Kind == CoastTerritory && t.Parent.Name == target {
				return true
			}
			if fleets[next] && !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func union(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, s := range b {
		if !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
