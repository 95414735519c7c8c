package models

import "encoding/json"

// Route is a resolved trip. Fare is nil when the distance is beyond the fare table.
type Route struct {
	Path     []string
	Distance float64
	Fare     *int
}

// SearchResult is the wire form of a resolution: either the route fields or an
// error message, never both.
type SearchResult struct {
	Route *Route
	Err   string
}

func NewSearchResult(route Route, err error) SearchResult {
	if err != nil {
		return SearchResult{Err: err.Error()}
	}
	return SearchResult{Route: &route}
}

func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Route == nil {
		msg := r.Err
		if msg == "" {
			msg = "no route"
		}
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: msg})
	}

	path := r.Route.Path
	if path == nil {
		path = []string{}
	}
	return json.Marshal(struct {
		Path     []string `json:"path"`
		Distance float64  `json:"distance"`
		Fare     *int     `json:"fare"`
	}{
		Path:     path,
		Distance: r.Route.Distance,
		Fare:     r.Route.Fare,
	})
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path     []string `json:"path"`
		Distance float64  `json:"distance"`
		Fare     *int     `json:"fare"`
		Error    string   `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error != "" {
		*r = SearchResult{Err: raw.Error}
		return nil
	}
	*r = SearchResult{Route: &Route{Path: raw.Path, Distance: raw.Distance, Fare: raw.Fare}}
	return nil
}
