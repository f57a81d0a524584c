package electoral

import "sort"

// State is a catalog entry for one federal entity.
type State struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Loaded bool    `json:"loaded"`
}

// NationalCenter is the map center used when no state is selected.
var NationalCenter = State{Name: "Nacional", Lat: 23.6345, Lon: -102.5528}

var states = map[int64]State{
	1:  {ID: 1, Name: "Aguascalientes", Lat: 21.88, Lon: -102.28},
	2:  {ID: 2, Name: "Baja California", Lat: 30.54, Lon: -115.72},
	3:  {ID: 3, Name: "Baja California Sur", Lat: 26.04, Lon: -111.67},
	4:  {ID: 4, Name: "Campeche", Lat: 19.83, Lon: -90.53},
	5:  {ID: 5, Name: "Coahuila", Lat: 27.06, Lon: -101.71},
	6:  {ID: 6, Name: "Colima", Lat: 19.24, Lon: -103.72},
	7:  {ID: 7, Name: "Chiapas", Lat: 16.75, Lon: -93.12},
	8:  {ID: 8, Name: "Chihuahua", Lat: 28.63, Lon: -106.08},
	9:  {ID: 9, Name: "Ciudad de México", Lat: 19.43, Lon: -99.13},
	10: {ID: 10, Name: "Durango", Lat: 24.56, Lon: -104.66},
	11: {ID: 11, Name: "Guanajuato", Lat: 21.02, Lon: -101.26},
	12: {ID: 12, Name: "Guerrero", Lat: 17.44, Lon: -99.54},
	13: {ID: 13, Name: "Hidalgo", Lat: 20.09, Lon: -98.76},
	14: {ID: 14, Name: "Jalisco", Lat: 20.67, Lon: -103.35},
	15: {ID: 15, Name: "México", Lat: 19.29, Lon: -99.65},
	16: {ID: 16, Name: "Michoacán", Lat: 19.57, Lon: -101.71},
	17: {ID: 17, Name: "Morelos", Lat: 18.68, Lon: -99.10},
	18: {ID: 18, Name: "Nayarit", Lat: 21.75, Lon: -104.85},
	19: {ID: 19, Name: "Nuevo León", Lat: 25.59, Lon: -99.99},
	20: {ID: 20, Name: "Oaxaca", Lat: 17.07, Lon: -96.72},
	21: {ID: 21, Name: "Puebla", Lat: 19.04, Lon: -98.20},
	22: {ID: 22, Name: "Querétaro", Lat: 20.59, Lon: -100.39},
	23: {ID: 23, Name: "Quintana Roo", Lat: 19.18, Lon: -88.48},
	24: {ID: 24, Name: "San Luis Potosí", Lat: 22.15, Lon: -100.98},
	25: {ID: 25, Name: "Sinaloa", Lat: 25.00, Lon: -107.48},
	26: {ID: 26, Name: "Sonora", Lat: 29.30, Lon: -110.33},
	27: {ID: 27, Name: "Tabasco", Lat: 17.98, Lon: -92.93},
	28: {ID: 28, Name: "Tamaulipas", Lat: 24.27, Lon: -98.84},
	29: {ID: 29, Name: "Tlaxcala", Lat: 19.32, Lon: -98.24},
	30: {ID: 30, Name: "Veracruz", Lat: 19.53, Lon: -96.93},
	31: {ID: 31, Name: "Yucatán", Lat: 20.71, Lon: -89.09},
	32: {ID: 32, Name: "Zacatecas", Lat: 22.77, Lon: -102.58},
}

// LookupState returns the catalog entry for id.
func LookupState(id int64) (State, bool) {
	s, ok := states[id]
	return s, ok
}

// StateName returns the state's name, "N/A" when unknown.
func StateName(id int64) string {
	if s, ok := states[id]; ok {
		return s.Name
	}
	return "N/A"
}

// States returns the whole catalog ordered by id.
func States() []State {
	out := make([]State, 0, len(states))
	for _, s := range states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
