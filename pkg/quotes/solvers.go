package quotes

// Solver identifies one known solver with its declared fee and
// reputation metadata. The registry is fixed; real solver competition
// happens off-box and the eventual settlement solver may differ.
type Solver struct {
	ID                   string
	FeePercent           float64 // declared fee, e.g. 0.15 for 0.15%
	Reputation           int     // higher is better; breaks ranking ties
	EstimatedTimeSeconds int
}

// DefaultSolvers is the registry of known solver identities
var DefaultSolvers = []Solver{
	{ID: "defuse-labs", FeePercent: 0.10, Reputation: 98, EstimatedTimeSeconds: 45},
	{ID: "meridian", FeePercent: 0.15, Reputation: 95, EstimatedTimeSeconds: 30},
	{ID: "atlas-routes", FeePercent: 0.20, Reputation: 91, EstimatedTimeSeconds: 25},
	{ID: "northbeam", FeePercent: 0.25, Reputation: 88, EstimatedTimeSeconds: 20},
}
