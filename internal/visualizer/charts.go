package visualizer

import (
	"strings"

	"github.com/danielpemor/DashWeb/internal/electoral"
)

// minCoalitionShare is the share of party votes, in percent, a joint candidacy needs to be charted.
const minCoalitionShare = 0.5

// Bar is one entry of the vote distribution chart.
type Bar struct {
	Name    string  `json:"name"`
	Votes   float64 `json:"votes"`
	Percent float64 `json:"percent"`
}

type PartyChart struct {
	Status   Status          `json:"status"`
	Level    electoral.Level `json:"level"`
	Warnings []string        `json:"warnings,omitempty"`
	Bars     []Bar           `json:"bars"`
}

type ParticipationChart struct {
	Status          Status          `json:"status"`
	Level           electoral.Level `json:"level"`
	Warnings        []string        `json:"warnings,omitempty"`
	Participation   float64         `json:"participation"`
	Abstention      float64         `json:"abstention"`
	Votes           float64         `json:"votes"`
	Registered      float64         `json:"registered"`
	AbstentionVotes float64         `json:"abstention_votes"`
}

// ComputePartyChart totals current-year votes per party and per joint candidacy.
// Candidacies under minCoalitionShare of the party votes are left out; bars are sorted by votes.
func ComputePartyChart(units *electoral.Collection) *PartyChart {
	chart := &PartyChart{Status: StatusEmpty, Bars: []Bar{}}
	if units.Len() == 0 {
		return chart
	}

	var bars []electoral.Ranked
	var partyVotes float64
	for _, col := range currentPartyColumns(units) {
		if v := units.Sum(col); v > 0 {
			bars = append(bars, electoral.Ranked{Name: strings.TrimSuffix(col, "_2024"), Votes: v})
			partyVotes += v
		}
	}
	base := partyVotes
	if base == 0 {
		base = 1
	}
	for _, c := range electoral.Coalitions {
		col := electoral.PartyColumn(c, electoral.CurrentYear)
		if !units.HasNumber(col) {
			continue
		}
		if v := units.Sum(col); v > 0 && v/base*100 >= minCoalitionShare {
			bars = append(bars, electoral.Ranked{Name: strings.ReplaceAll(c, "_", "-"), Votes: v})
		}
	}
	if len(bars) == 0 {
		return chart
	}

	var shown float64
	for _, b := range bars {
		shown += b.Votes
	}
	for _, b := range electoral.Rank(bars) {
		chart.Bars = append(chart.Bars, Bar{Name: b.Name, Votes: b.Votes, Percent: b.Votes / shown * 100})
	}
	chart.Status = StatusOK
	return chart
}

// ComputeParticipationChart splits the electorate into voters and abstainers.
func ComputeParticipationChart(units *electoral.Collection) *ParticipationChart {
	chart := &ParticipationChart{Status: StatusEmpty}
	if units.Len() == 0 || !units.HasNumber(electoral.ColParticipation) {
		return chart
	}
	chart.Status = StatusOK
	chart.Participation = columnMean(units, electoral.ColParticipation)
	chart.Abstention = 100 - chart.Participation
	if col := electoral.TotalVotesColumn(electoral.CurrentYear); units.HasNumber(col) {
		chart.Votes = units.Sum(col)
	}
	if col := electoral.RegisteredColumn(electoral.CurrentYear); units.HasNumber(col) {
		chart.Registered = units.Sum(col)
	}
	if chart.Registered > 0 {
		chart.AbstentionVotes = chart.Registered - chart.Votes
	}
	return chart
}
