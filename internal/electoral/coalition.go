package electoral

import "sort"

// Derived coalition columns and their sentinels.
const (
	ColOpposition      = "OPPOSITION_COALITION"
	ColRuling          = "RULING_COALITION"
	ColMC              = "MC_TOTAL"
	ColCoalitionWinner = "COALITION_WINNER"

	// NoData marks a unit where no coalition received votes.
	NoData = "NO_DATA"
	// NoVotes marks a unit where no party received votes.
	NoVotes = "NO_VOTES"
)

// CoalitionColumns are the derived totals in tie-break order.
var CoalitionColumns = []string{ColOpposition, ColRuling, ColMC}

var coalitionParts = map[string][]string{
	ColOpposition: {"PAN_2024", "PRI_2024", "PRD_2024", "PAN_PRI_PRD_2024"},
	ColRuling:     {"MORENA_2024", "PT_2024", "PVEM_2024", "PVEM_PT_MORENA_2024"},
	ColMC:         {"MC_2024"},
}

// CoalitionLabels are display names for the coalition columns.
var CoalitionLabels = map[string]string{
	ColOpposition: "Coalición Opositora",
	ColRuling:     "Coalición Oficialista",
	ColMC:         "Movimiento Ciudadano",
}

// CoalitionTotal adds the member columns of coalition, treating missing addends as 0.
func CoalitionTotal(r *Record, coalition string) float64 {
	var total float64
	for _, col := range coalitionParts[coalition] {
		total += r.Value(col)
	}
	return total
}

// CoalitionWinner returns the coalition column with the most votes.
// Ties go to the earliest in CoalitionColumns order; NoData when every total is <= 0.
func CoalitionWinner(totals map[string]float64) string {
	best, bestVotes := "", 0.0
	for _, col := range CoalitionColumns {
		v := totals[col]
		if best == "" || v > bestVotes {
			best, bestVotes = col, v
		}
	}
	if bestVotes <= 0 {
		return NoData
	}
	return best
}

// ApplyCoalitions derives the coalition totals and the coalition winner for every record.
// Existing values in those columns are overwritten.
func ApplyCoalitions(c *Collection) {
	for _, col := range CoalitionColumns {
		c.AddNumberColumn(col)
	}
	c.AddLabelColumn(ColCoalitionWinner)
	for _, r := range c.Records {
		totals := make(map[string]float64, len(CoalitionColumns))
		for _, col := range CoalitionColumns {
			totals[col] = CoalitionTotal(r, col)
			r.Numbers[col] = totals[col]
		}
		r.Labels[ColCoalitionWinner] = CoalitionWinner(totals)
	}
}

// Ranked is a named vote count.
type Ranked struct {
	Name  string
	Votes float64
}

// Rank orders votes descending. Equal counts keep their input order.
func Rank(votes []Ranked) []Ranked {
	out := append([]Ranked(nil), votes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	return out
}

// PredominantParty returns the base party with the most current-year votes in r.
// NoVotes is returned when no party has a positive count.
func PredominantParty(r *Record) Ranked {
	best := Ranked{Name: NoVotes}
	for _, p := range BaseParties {
		v := r.Value(PartyColumn(p, CurrentYear))
		if v > best.Votes {
			best = Ranked{Name: p, Votes: v}
		}
	}
	return best
}
