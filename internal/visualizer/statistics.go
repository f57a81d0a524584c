package visualizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/danielpemor/DashWeb/internal/electoral"
	"gonum.org/v1/gonum/stat"
)

// NotAvailable names a missing runner-up.
const NotAvailable = "N/A"

// Statistics is the scalar summary of one view.
type Statistics struct {
	Status   Status          `json:"status"`
	Level    electoral.Level `json:"level"`
	Warnings []string        `json:"warnings,omitempty"`

	TotalVotes        float64 `json:"total_votes"`
	TotalRegistered   float64 `json:"total_registered"`
	ParticipationMean float64 `json:"participation_mean"`
	AbstentionMean    float64 `json:"abstention_mean"`
	Units             int     `json:"units"`

	FocusParty *string  `json:"focus_party"`
	FocusVotes *float64 `json:"focus_votes"`

	OppositionVotes float64 `json:"opposition_votes"`
	RulingVotes     float64 `json:"ruling_votes"`
	MCVotes         float64 `json:"mc_votes"`

	PartyWinner        string  `json:"party_winner,omitempty"`
	PartyWinnerVotes   float64 `json:"party_winner_votes"`
	PartyRunnerUp      string  `json:"party_runner_up,omitempty"`
	PartyRunnerUpVotes float64 `json:"party_runner_up_votes"`
	PartyMargin        float64 `json:"party_margin"`
	PartyMarginPct     float64 `json:"party_margin_pct"`

	CoalitionWinner        string  `json:"coalition_winner"`
	CoalitionWinnerVotes   float64 `json:"coalition_winner_votes"`
	CoalitionRunnerUp      string  `json:"coalition_runner_up"`
	CoalitionRunnerUpVotes float64 `json:"coalition_runner_up_votes"`
	CoalitionMargin        float64 `json:"coalition_margin"`
	CoalitionMarginPct     float64 `json:"coalition_margin_pct"`
}

// ComputeStatistics summarizes units. focus names a current-year vote column to total separately.
func ComputeStatistics(units *electoral.Collection, focus string) *Statistics {
	s := &Statistics{Status: StatusEmpty}
	if units.Len() == 0 {
		return s
	}
	s.Status = StatusOK
	s.Units = units.Len()

	totalCol := electoral.TotalVotesColumn(electoral.CurrentYear)
	if units.HasNumber(totalCol) {
		s.TotalVotes = units.Sum(totalCol)
	} else {
		for _, col := range currentPartyColumns(units) {
			s.TotalVotes += units.Sum(col)
		}
	}
	registered := electoral.RegisteredColumn(electoral.CurrentYear)
	if units.HasNumber(registered) {
		s.TotalRegistered = units.Sum(registered)
	}
	s.ParticipationMean = columnMean(units, electoral.ColParticipation)
	s.AbstentionMean = columnMean(units, electoral.ColAbstention)

	suffix := "_" + strconv.Itoa(electoral.CurrentYear)
	if strings.HasSuffix(focus, suffix) && focus != registered && units.HasNumber(focus) {
		party := strings.TrimSuffix(focus, suffix)
		votes := units.Sum(focus)
		s.FocusParty, s.FocusVotes = &party, &votes
	}

	s.OppositionVotes = units.Sum(electoral.ColOpposition)
	s.RulingVotes = units.Sum(electoral.ColRuling)
	s.MCVotes = units.Sum(electoral.ColMC)

	var parties []electoral.Ranked
	for _, col := range currentPartyColumns(units) {
		if v := units.Sum(col); v > 0 {
			parties = append(parties, electoral.Ranked{Name: strings.TrimSuffix(col, suffix), Votes: v})
		}
	}
	if len(parties) > 0 {
		ranked := electoral.Rank(parties)
		s.PartyWinner, s.PartyWinnerVotes = ranked[0].Name, ranked[0].Votes
		s.PartyRunnerUp = NotAvailable
		if len(ranked) > 1 {
			s.PartyRunnerUp, s.PartyRunnerUpVotes = ranked[1].Name, ranked[1].Votes
			s.PartyMargin = s.PartyWinnerVotes - s.PartyRunnerUpVotes
			s.PartyMarginPct = marginPct(s.PartyMargin, s.PartyWinnerVotes)
		}
	}

	coalitions := electoral.Rank([]electoral.Ranked{
		{Name: electoral.CoalitionLabels[electoral.ColOpposition], Votes: s.OppositionVotes},
		{Name: electoral.CoalitionLabels[electoral.ColRuling], Votes: s.RulingVotes},
		{Name: electoral.CoalitionLabels[electoral.ColMC], Votes: s.MCVotes},
	})
	s.CoalitionWinner, s.CoalitionWinnerVotes = coalitions[0].Name, coalitions[0].Votes
	s.CoalitionRunnerUp, s.CoalitionRunnerUpVotes = coalitions[1].Name, coalitions[1].Votes
	if s.CoalitionWinnerVotes <= 0 {
		s.CoalitionWinner = electoral.NoData
	}
	s.CoalitionMargin = s.CoalitionWinnerVotes - s.CoalitionRunnerUpVotes
	s.CoalitionMarginPct = marginPct(s.CoalitionMargin, s.CoalitionWinnerVotes)
	return s
}

func currentPartyColumns(units *electoral.Collection) []string {
	var out []string
	for _, p := range electoral.BaseParties {
		if col := electoral.PartyColumn(p, electoral.CurrentYear); units.HasNumber(col) {
			out = append(out, col)
		}
	}
	return out
}

// columnMean averages the present values of col; 0 when the column or its values are missing.
func columnMean(units *electoral.Collection, col string) float64 {
	if !units.HasNumber(col) {
		return 0
	}
	xs := presentValues(units, col)
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func presentValues(units *electoral.Collection, col string) []float64 {
	xs := make([]float64, 0, units.Len())
	for _, r := range units.Records {
		if v := r.Number(col); !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	return xs
}

func marginPct(margin, winner float64) float64 {
	if winner <= 0 {
		return 0
	}
	return margin / winner * 100
}
