package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/freeeve/dipjudge/internal/logger"
	"github.com/freeeve/dipjudge/pkg/diplomacy"
)

// ErrExpectationFailed is returned by Run when the final board differs from
// the scenario's expect block.
var ErrExpectationFailed = errors.New("scenario: expectation failed")

// Options tunes a scenario run.
type Options struct {
	MaxSteps int
	// Strict resolves adjustment phases without civil disorder.
	Strict bool
}

// Report is the outcome of every played phase plus the final board.
type Report struct {
	Name       string        `json:"name,omitempty"`
	Phases     []PhaseReport `json:"phases"`
	Final      Board         `json:"final"`
	Mismatches []string      `json:"mismatches,omitempty"`
}

// PhaseReport records one adjudicated phase.
type PhaseReport struct {
	TurnID   string                     `json:"turnId"`
	Year     int                        `json:"year"`
	Season   diplomacy.Season           `json:"season"`
	Phase    diplomacy.PhaseType        `json:"phase"`
	Orders   []OrderReport              `json:"orders"`
	Retreats map[diplomacy.Power][]Exit `json:"retreats,omitempty"`
	Deltas   map[diplomacy.Power]int    `json:"deltas,omitempty"`
}

// OrderReport is one order and, in movement phases, its result.
type OrderReport struct {
	Player diplomacy.Power `json:"player"`
	Order  string          `json:"order"`
	Result string          `json:"result,omitempty"`
}

// Exit lists where a dislodged unit may retreat; none means it must disband.
type Exit struct {
	Unit         string   `json:"unit"`
	Destinations []string `json:"destinations"`
}

// Board is a GameState summary.
type Board struct {
	Year     int                          `json:"year"`
	Season   diplomacy.Season             `json:"season"`
	Phase    diplomacy.PhaseType          `json:"phase"`
	Units    map[diplomacy.Power][]string `json:"units"`
	Centers  map[diplomacy.Power][]string `json:"centers"`
	Winner   diplomacy.Power              `json:"winner,omitempty"`
	Position string                       `json:"position,omitempty"`
}

// Run plays every phase of sc from its starting position. Each phase gets
// its own turn id on the context logger.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Report, error) {
	gs, err := sc.State()
	if err != nil {
		return nil, err
	}

	report := &Report{Name: sc.Name}
	for i, po := range sc.Phases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		turnCtx := logger.WithTurnID(ctx, logger.NewTurnID())
		pr, err := playPhase(turnCtx, gs, po, opts)
		if err != nil {
			return report, fmt.Errorf("scenario: phase %d (%s %d %s): %w", i+1, gs.Season, gs.Year, gs.Phase, err)
		}
		report.Phases = append(report.Phases, *pr)
	}

	report.Final, err = summarize(gs)
	if err != nil {
		return report, err
	}
	if sc.Expect != nil {
		report.Mismatches = sc.Expect.check(report.Final)
		if len(report.Mismatches) > 0 {
			return report, fmt.Errorf("%w: %d mismatches", ErrExpectationFailed, len(report.Mismatches))
		}
	}
	return report, nil
}

func playPhase(ctx context.Context, gs *diplomacy.GameState, po PhaseOrders, opts Options) (*PhaseReport, error) {
	log := logger.ForTurn(ctx)
	pr := &PhaseReport{
		TurnID: logger.TurnIDFromContext(ctx),
		Year:   gs.Year,
		Season: gs.Season,
		Phase:  gs.Phase,
	}
	for _, name := range sortedNames(po.Orders) {
		logger.LogOrders(log, name, po.Orders[name])
	}

	switch gs.Phase {
	case diplomacy.PhaseMovement:
		var orders []diplomacy.Order
		for _, name := range sortedNames(po.Orders) {
			parsed, err := diplomacy.ParseOrders(gs.Player(power(name)), po.Orders[name])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			orders = append(orders, parsed...)
		}
		adj, err := diplomacy.AdvanceMovement(gs, orders, diplomacy.ResolveOptions{MaxSteps: opts.MaxSteps, Logger: &log})
		if err != nil {
			return nil, err
		}
		for _, r := range adj.Results() {
			pr.Orders = append(pr.Orders, OrderReport{Player: r.Order.OrderPlayer(), Order: r.Order.String(), Result: r.Result.String()})
		}
		pr.Retreats = exits(adj.Retreats)
		log.Info().Int("orders", len(pr.Orders)).Int("dislodged", countExits(pr.Retreats)).Msg("Movement adjudicated")

	case diplomacy.PhaseRetreat:
		var orders []diplomacy.RetreatOrder
		for _, name := range sortedNames(po.Orders) {
			for _, line := range nonEmpty(po.Orders[name]) {
				o, err := diplomacy.ParseRetreatOrder(gs.Retreats, power(name), line)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				orders = append(orders, o)
			}
		}
		orders = withDefaultDisbands(gs.Retreats, orders)
		for _, o := range orders {
			pr.Orders = append(pr.Orders, OrderReport{Player: o.OrderPlayer(), Order: o.String()})
		}
		if err := diplomacy.AdvanceRetreat(gs, orders); err != nil {
			return nil, err
		}
		log.Info().Int("orders", len(orders)).Msg("Retreats resolved")

	case diplomacy.PhaseAdjustment:
		pr.Deltas = gs.Adjustments
		var orders []diplomacy.AdjustmentOrder
		for _, name := range sortedNames(po.Orders) {
			for _, line := range nonEmpty(po.Orders[name]) {
				o, err := diplomacy.ParseAdjustmentOrder(gs.Ownership, gs.Units, power(name), line)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				orders = append(orders, o)
			}
		}
		for _, o := range orders {
			pr.Orders = append(pr.Orders, OrderReport{Player: o.OrderPlayer(), Order: o.String()})
		}
		if err := diplomacy.AdvanceAdjustment(gs, orders, opts.Strict); err != nil {
			return nil, err
		}
		log.Info().Int("orders", len(orders)).Bool("strict", opts.Strict).Msg("Adjustments resolved")

	default:
		return nil, fmt.Errorf("unknown phase %q", gs.Phase)
	}
	return pr, nil
}

// withDefaultDisbands adds a disband for every dislodged unit without a
// retreat order.
func withDefaultDisbands(rm diplomacy.RetreatMap, orders []diplomacy.RetreatOrder) []diplomacy.RetreatOrder {
	ordered := make(map[diplomacy.Power]map[diplomacy.Unit]bool)
	for _, o := range orders {
		if ordered[o.OrderPlayer()] == nil {
			ordered[o.OrderPlayer()] = make(map[diplomacy.Unit]bool)
		}
		ordered[o.OrderPlayer()][o.OrderUnit()] = true
	}
	dislodged := rm.Dislodged()
	for _, p := range sortedPowers(dislodged) {
		for _, u := range dislodged[p] {
			if !ordered[p][u] {
				orders = append(orders, diplomacy.RetreatDisband{Player: p, Unit: u})
			}
		}
	}
	return orders
}

func exits(rm diplomacy.RetreatMap) map[diplomacy.Power][]Exit {
	out := make(map[diplomacy.Power][]Exit)
	for p, units := range rm.Dislodged() {
		for _, u := range units {
			dests := append([]string{}, rm[p][u].Destinations...)
			sort.Strings(dests)
			out[p] = append(out[p], Exit{Unit: u.String(), Destinations: dests})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func countExits(byPower map[diplomacy.Power][]Exit) int {
	n := 0
	for _, e := range byPower {
		n += len(e)
	}
	return n
}

func summarize(gs *diplomacy.GameState) (Board, error) {
	b := Board{
		Year:    gs.Year,
		Season:  gs.Season,
		Phase:   gs.Phase,
		Units:   make(map[diplomacy.Power][]string),
		Centers: make(map[diplomacy.Power][]string),
	}
	for _, p := range gs.Units.Players() {
		for _, u := range gs.Units.Sorted(p) {
			b.Units[p] = append(b.Units[p], u.String())
		}
	}
	for p, set := range gs.Ownership.Owned {
		if len(set) == 0 {
			continue
		}
		for c := range set {
			b.Centers[p] = append(b.Centers[p], c)
		}
		sort.Strings(b.Centers[p])
	}
	if w, ok := diplomacy.SoloWinner(gs); ok {
		b.Winner = w
	}
	pos, err := diplomacy.EncodePosition(gs)
	if err != nil {
		return b, fmt.Errorf("scenario: %w", err)
	}
	b.Position = pos
	return b, nil
}

func (e *Expectation) check(b Board) []string {
	var out []string
	if e.Position != "" && e.Position != b.Position {
		out = append(out, fmt.Sprintf("position: expected %s, got %s", e.Position, b.Position))
	}
	if e.Year != 0 && e.Year != b.Year {
		out = append(out, fmt.Sprintf("year: expected %d, got %d", e.Year, b.Year))
	}
	if e.Season != "" && diplomacy.Season(e.Season) != b.Season {
		out = append(out, fmt.Sprintf("season: expected %s, got %s", e.Season, b.Season))
	}
	if e.Phase != "" && diplomacy.PhaseType(e.Phase) != b.Phase {
		out = append(out, fmt.Sprintf("phase: expected %s, got %s", e.Phase, b.Phase))
	}
	for _, name := range sortedNames(e.Units) {
		want := make([]string, 0, len(e.Units[name]))
		for _, line := range e.Units[name] {
			u, err := diplomacy.ParseUnit(line)
			if err != nil {
				out = append(out, fmt.Sprintf("%s: bad unit %q", name, line))
				continue
			}
			want = append(want, u.String())
		}
		sort.Strings(want)
		got := append([]string{}, b.Units[power(name)]...)
		sort.Strings(got)
		if fmt.Sprint(want) != fmt.Sprint(got) {
			out = append(out, fmt.Sprintf("%s units: expected %v, got %v", name, want, got))
		}
	}
	for _, name := range sortedNames(e.Centers) {
		if got := len(b.Centers[power(name)]); got != e.Centers[name] {
			out = append(out, fmt.Sprintf("%s centers: expected %d, got %d", name, e.Centers[name], got))
		}
	}
	return out
}

func nonEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" && l[0] != '#' {
			out = append(out, l)
		}
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedPowers[V any](m map[diplomacy.Power]V) []diplomacy.Power {
	out := make([]diplomacy.Power, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
