package diplomacy

import "fmt"

// Order is one movement-phase order. The set of implementations is closed:
// Hold, Move, Support, ConvoyMove and ConvoyTransport. Orders are built by
// the validating constructors in validate.go and are immutable afterwards.
type Order interface {
	OrderPlayer() Power
	OrderUnit() Unit
	String() string
	isOrder()
}

// Hold keeps a unit in place.
type Hold struct {
	Player Power
	Unit   Unit
}

// Move sends a unit to an adjacent territory.
type Move struct {
	Player      Power
	Unit        Unit
	Destination string
}

// Support adds strength to Supported moving to Destination, or to Supported
// staying put when Destination equals its position.
type Support struct {
	Player      Power
	Unit        Unit
	Supported   Unit
	Destination string
}

// ConvoyMove sends a troop across a chain of convoying fleets.
type ConvoyMove struct {
	Player      Power
	Unit        Unit
	Destination string
}

// ConvoyTransport orders a fleet at sea to carry Transported to Destination.
type ConvoyTransport struct {
	Player      Power
	Unit        Unit
	Transported Unit
	Destination string
}

func (o Hold) OrderPlayer() Power            { return o.Player }
func (o Move) OrderPlayer() Power            { return o.Player }
func (o Support) OrderPlayer() Power         { return o.Player }
func (o ConvoyMove) OrderPlayer() Power      { return o.Player }
func (o ConvoyTransport) OrderPlayer() Power { return o.Player }

func (o Hold) OrderUnit() Unit            { return o.Unit }
func (o Move) OrderUnit() Unit            { return o.Unit }
func (o Support) OrderUnit() Unit         { return o.Unit }
func (o ConvoyMove) OrderUnit() Unit      { return o.Unit }
func (o ConvoyTransport) OrderUnit() Unit { return o.Unit }

func (Hold) isOrder()            {}
func (Move) isOrder()            {}
func (Support) isOrder()         {}
func (ConvoyMove) isOrder()      {}
func (ConvoyTransport) isOrder() {}

func (o Hold) String() string {
	return fmt.Sprintf("%s H", o.Unit)
}

func (o Move) String() string {
	return fmt.Sprintf("%s - %s", o.Unit, o.Destination)
}

func (o Support) String() string {
	if o.Destination == o.Supported.Position {
		return fmt.Sprintf("%s S %s H", o.Unit, o.Supported)
	}
	return fmt.Sprintf("%s S %s - %s", o.Unit, o.Supported, o.Destination)
}

func (o ConvoyMove) String() string {
	return fmt.Sprintf("%s - %s via convoy", o.Unit, o.Destination)
}

func (o ConvoyTransport) String() string {
	return fmt.Sprintf("%s C %s - %s", o.Unit, o.Transported, o.Destination)
}

// destinationOf returns where a moving order is headed. ok is false for
// orders that keep their unit in place.
func destinationOf(o Order) (dest string, ok bool) {
	switch o := o.(type) {
	case Move:
		return o.Destination, true
	case ConvoyMove:
		return o.Destination, true
	}
	return "", false
}

// OrderResult describes the outcome of adjudicating an order.
type OrderResult int

const (
	ResultSucceeded OrderResult = iota // Order carried out
	ResultFailed                       // Convoy disrupted or support invalid
	ResultDislodged                    // Unit was dislodged
	ResultBounced                      // Move bounced
	ResultCut                          // Support was cut
)

func (r OrderResult) String() string {
	switch r {
	case ResultSucceeded:
		return "succeeded"
	case ResultFailed:
		return "failed"
	case ResultDislodged:
		return "dislodged"
	case ResultBounced:
		return "bounced"
	case ResultCut:
		return "cut"
	default:
		return "unknown"
	}
}

// ResolvedOrder pairs an order with its adjudication result.
type ResolvedOrder struct {
	Order  Order
	Result OrderResult
}
