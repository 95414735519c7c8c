package models

// Station is a named point on a line. Position is a km marker along that line,
// not a trip distance.
type Station struct {
	Line     string  `json:"line" dynamodbav:"line"`
	Name     string  `json:"station" dynamodbav:"station"`
	Position float64 `json:"distance" dynamodbav:"distance"`

	// Seq records insertion order for stable listing. Stores assign it.
	Seq int64 `json:"-" dynamodbav:"seq"`
}

// FareBand maps every distance up to MaxDistance (inclusive) onto Fare.
type FareBand struct {
	MaxDistance float64 `json:"maxDistance" yaml:"maxDistance" validate:"gte=0"`
	Fare        int     `json:"fare" yaml:"fare" validate:"gte=0"`
}
