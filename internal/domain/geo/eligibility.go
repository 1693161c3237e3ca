package geo

// Config holds the restaurant origin and the delivery radius. It is built once
// at startup and never mutated.
type Config struct {
	Origin      Coordinate
	MaxRadiusKm float64
}

// Eligibility is the outcome of a delivery radius check.
type Eligibility struct {
	WithinRadius bool
	DistanceKm   float64
	MaxRadiusKm  float64
}

// Checker decides whether a customer location is inside the delivery radius.
type Checker struct {
	cfg Config
}

// NewChecker returns a Checker for the given origin and radius.
func NewChecker(cfg Config) *Checker {
	return &Checker{cfg: cfg}
}

// Config returns the checker's configuration.
func (c *Checker) Config() Config {
	return c.cfg
}

// Check measures the distance from the origin to loc. The radius boundary is
// inclusive.
func (c *Checker) Check(loc Coordinate) Eligibility {
	d := Distance(c.cfg.Origin, loc)
	return Eligibility{
		WithinRadius: d <= c.cfg.MaxRadiusKm,
		DistanceKm:   d,
		MaxRadiusKm:  c.cfg.MaxRadiusKm,
	}
}
