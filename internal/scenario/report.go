package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r as aligned, human-readable tables.
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if r.Name != "" {
		fmt.Fprintf(tw, "# %s\n", r.Name)
	}
	for _, pr := range r.Phases {
		fmt.Fprintf(tw, "\n== %s %d %s ==\n", title(string(pr.Season)), pr.Year, pr.Phase)
		for _, o := range pr.Orders {
			if o.Result != "" {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Player, o.Order, o.Result)
			} else {
				fmt.Fprintf(tw, "%s\t%s\n", o.Player, o.Order)
			}
		}
		for _, p := range sortedPowers(pr.Deltas) {
			if d := pr.Deltas[p]; d != 0 {
				fmt.Fprintf(tw, "%s\t%+d\n", p, d)
			}
		}
		for _, p := range sortedPowers(pr.Retreats) {
			for _, e := range pr.Retreats[p] {
				dests := "disband"
				if len(e.Destinations) > 0 {
					dests = strings.Join(e.Destinations, " ")
				}
				fmt.Fprintf(tw, "%s\t%s\tretreat: %s\n", p, e.Unit, dests)
			}
		}
	}

	f := r.Final
	fmt.Fprintf(tw, "\n== Board: %s %d %s ==\n", title(string(f.Season)), f.Year, f.Phase)
	for _, p := range sortedPowers(f.Units) {
		fmt.Fprintf(tw, "%s\t%d centers\t%s\n", p, len(f.Centers[p]), strings.Join(f.Units[p], ", "))
	}
	if f.Position != "" {
		fmt.Fprintf(tw, "position\t%s\n", f.Position)
	}
	if f.Winner != "" {
		fmt.Fprintf(tw, "winner\t%s\n", f.Winner)
	}
	for _, m := range r.Mismatches {
		fmt.Fprintf(tw, "MISMATCH\t%s\n", m)
	}
	return tw.Flush()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
