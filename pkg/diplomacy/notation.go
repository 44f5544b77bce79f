package diplomacy

import (
	"fmt"
	"strings"
)

// Order notation, one order per line:
//
//	A vie H                    hold
//	A bud - rum                move
//	A lon - nwy via convoy     convoyed move
//	A gal S A bud - rum        support move
//	A tyr S A vie H            support hold
//	F mao C A bre - spa        convoy
//	A vie R boh                retreat
//	F tri D                    disband (retreat or adjustment phase)
//	A vie B                    build
//
// Keywords are case-insensitive; territory names are taken verbatim.

// ParseOrder parses a movement-phase order for one of p's units.
func ParseOrder(p *Player, line string) (Order, error) {
	tokens := strings.Fields(line)
	u, rest, err := parseUnit(tokens)
	if err != nil {
		return nil, syntaxError(line, err)
	}
	if len(rest) == 0 {
		return nil, syntaxError(line, fmt.Errorf("missing action"))
	}

	action, rest := strings.ToUpper(rest[0]), rest[1:]
	switch action {
	case "H", "HOLD":
		if len(rest) != 0 {
			return nil, syntaxError(line, fmt.Errorf("trailing tokens after hold"))
		}
		return p.Hold(u)

	case "-", "->":
		if len(rest) == 0 {
			return nil, syntaxError(line, fmt.Errorf("move missing target"))
		}
		dest := rest[0]
		switch via := strings.ToUpper(strings.Join(rest[1:], " ")); via {
		case "":
			return p.Move(u, dest)
		case "VIA CONVOY", "VIA C", "VIA":
			return p.ConvoyMove(u, dest)
		default:
			return nil, syntaxError(line, fmt.Errorf("unexpected %q after move target", via))
		}

	case "S":
		supported, tail, err := parseUnit(rest)
		if err != nil {
			return nil, syntaxError(line, fmt.Errorf("supported unit: %w", err))
		}
		switch {
		case len(tail) == 0, len(tail) == 1 && strings.EqualFold(tail[0], "H"):
			return p.Support(u, supported, supported.Position)
		case len(tail) == 2 && (tail[0] == "-" || tail[0] == "->"):
			return p.Support(u, supported, tail[1])
		}
		return nil, syntaxError(line, fmt.Errorf("malformed support"))

	case "C":
		transported, tail, err := parseUnit(rest)
		if err != nil {
			return nil, syntaxError(line, fmt.Errorf("convoyed unit: %w", err))
		}
		if len(tail) != 2 || (tail[0] != "-" && tail[0] != "->") {
			return nil, syntaxError(line, fmt.Errorf("malformed convoy"))
		}
		return p.Transport(u, transported, tail[1])
	}
	return nil, syntaxError(line, fmt.Errorf("unknown action %q", action))
}

// ParseOrders parses one order per line, skipping blank lines and lines
// starting with '#'.
func ParseOrders(p *Player, lines []string) ([]Order, error) {
	orders := make([]Order, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		o, err := ParseOrder(p, line)
		if err != nil {
			return nil, fmt.Errorf("notation: parsing %q: %w", line, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ParseRetreatOrder parses "A vie R boh" or "A vie D" against rm.
func ParseRetreatOrder(rm RetreatMap, player Power, line string) (RetreatOrder, error) {
	tokens := strings.Fields(line)
	u, rest, err := parseUnit(tokens)
	if err != nil {
		return nil, syntaxError(line, err)
	}
	switch {
	case len(rest) == 1 && strings.EqualFold(rest[0], "D"):
		return NewRetreatDisband(rm, player, u)
	case len(rest) == 2 && (strings.EqualFold(rest[0], "R") || rest[0] == "-" || rest[0] == "->"):
		return NewRetreatMove(rm, player, u, rest[1])
	}
	return nil, syntaxError(line, fmt.Errorf("malformed retreat"))
}

// ParseAdjustmentOrder parses "A vie B" or "F tri D".
func ParseAdjustmentOrder(own *OwnershipMap, units PlayerUnits, player Power, line string) (AdjustmentOrder, error) {
	tokens := strings.Fields(line)
	u, rest, err := parseUnit(tokens)
	if err != nil {
		return nil, syntaxError(line, err)
	}
	if len(rest) == 1 {
		switch strings.ToUpper(rest[0]) {
		case "B":
			return NewAdjustmentCreate(own, units, player, u)
		case "D":
			return NewAdjustmentDisband(units, player, u)
		}
	}
	return nil, syntaxError(line, fmt.Errorf("malformed adjustment"))
}

// ParseUnit parses "A vie" or "F stp/nc".
func ParseUnit(s string) (Unit, error) {
	u, rest, err := parseUnit(strings.Fields(s))
	if err != nil {
		return Unit{}, err
	}
	if len(rest) != 0 {
		return Unit{}, fmt.Errorf("trailing tokens after unit %q", s)
	}
	return u, nil
}

func parseUnit(tokens []string) (Unit, []string, error) {
	if len(tokens) < 2 {
		return Unit{}, nil, fmt.Errorf("too few tokens")
	}
	var ut UnitType
	switch strings.ToUpper(tokens[0]) {
	case "A":
		ut = Troop
	case "F":
		ut = Fleet
	default:
		return Unit{}, nil, fmt.Errorf("unknown unit type %q", tokens[0])
	}
	return Unit{Type: ut, Position: tokens[1]}, tokens[2:], nil
}

func syntaxError(line string, err error) error {
	return illegal(line, fmt.Errorf("%w: %v", ErrInvalidOrder, err))
}
