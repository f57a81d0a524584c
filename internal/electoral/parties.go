package electoral

import (
	"fmt"
	"strings"
)

// BaseParties are the parties with per-year vote columns (PARTY_YEAR).
var BaseParties = []string{"PAN", "PRI", "PRD", "PVEM", "PT", "MC", "MORENA"}

// Years are the election years carried by the source data.
var Years = []int{2012, 2018, 2024}

// CurrentYear is the election the coalition and winner metrics refer to.
const CurrentYear = 2024

// Coalitions are the joint-candidacy vote columns reported for the current year.
var Coalitions = []string{
	"PAN_PRI_PRD", "PAN_PRI", "PAN_PRD", "PRI_PRD",
	"PVEM_PT_MORENA", "PVEM_PT", "PVEM_MORENA", "PT_MORENA",
}

// PartyColumn names the vote column of party (or coalition) in year.
func PartyColumn(party string, year int) string {
	return fmt.Sprintf("%s_%d", party, year)
}

// TotalVotesColumn names the total-vote column of year.
func TotalVotesColumn(year int) string {
	return fmt.Sprintf("TOTAL_VOTOS_%d", year)
}

// RegisteredColumn names the registered-voters column of year.
func RegisteredColumn(year int) string {
	return fmt.Sprintf("LISTA_NOMINAL_%d", year)
}

// Participation and abstention columns.
const (
	ColParticipation = "PARTICIPACION_PCT"
	ColAbstention    = "ABSTENCION_PCT"
)

// IsPercentColumn reports whether col holds a participation or abstention percentage.
func IsPercentColumn(col string) bool {
	for _, p := range []string{"PARTICIPACION", "PARTICIPATION", "ABSTENCION", "ABSTENTION"} {
		if strings.Contains(col, p) {
			return true
		}
	}
	return false
}

// IsLabelColumn reports whether a source column is categorical and must not be parsed as a number.
func IsLabelColumn(col string) bool {
	if strings.HasPrefix(col, "TIPO_") || strings.HasPrefix(col, "TENDENCIA_") {
		return true
	}
	switch col {
	case "GANADOR_2024", "SEGUNDO_2024", "TIPO_SECCION":
		return true
	}
	return false
}

// IsIDColumn reports whether col is an administrative identifier.
func IsIDColumn(col string) bool {
	return contains(IDColumns, col)
}
