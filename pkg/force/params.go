package force

import (
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Default simulation parameters.
const (
	DefaultCharge           = -1000.0
	DefaultNodeRadius       = 12.0
	DefaultCollisionPadding = 10.0
	DefaultBaseRadius       = 50.0
	DefaultPerEdgeRadius    = 100.0
	DefaultRadialStrength   = 0.8
	DefaultTickBudget       = 100
	DefaultEnergyThreshold  = 0.005
)

// Config holds the tunable inputs of [Configure].
type Config struct {
	Charge           float64 `toml:"charge" json:"charge"`
	NodeRadius       float64 `toml:"node_radius" json:"nodeRadius"`
	CollisionPadding float64 `toml:"collision_padding" json:"collisionPadding"`
	BaseRadius       float64 `toml:"base_radius" json:"baseRadius"`
	PerEdgeRadius    float64 `toml:"per_edge_radius" json:"perEdgeRadius"`
	RadialStrength   float64 `toml:"radial_strength" json:"radialStrength"`
	TickBudget       int     `toml:"tick_budget" json:"tickBudget"`
	EnergyThreshold  float64 `toml:"energy_threshold" json:"energyThreshold"`
}

// DefaultConfig returns the hub-and-spoke defaults.
func DefaultConfig() Config {
	return Config{
		Charge:           DefaultCharge,
		NodeRadius:       DefaultNodeRadius,
		CollisionPadding: DefaultCollisionPadding,
		BaseRadius:       DefaultBaseRadius,
		PerEdgeRadius:    DefaultPerEdgeRadius,
		RadialStrength:   DefaultRadialStrength,
		TickBudget:       DefaultTickBudget,
		EnergyThreshold:  DefaultEnergyThreshold,
	}
}

// Validate checks that the configuration describes a usable simulation.
func (c Config) Validate() error {
	if c.Charge > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "charge must be repulsive (<= 0), got %v", c.Charge)
	}
	if err := errors.ValidatePositive("node_radius", c.NodeRadius); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"collision_padding", c.CollisionPadding},
		{"base_radius", c.BaseRadius},
		{"per_edge_radius", c.PerEdgeRadius},
		{"radial_strength", c.RadialStrength},
		{"energy_threshold", c.EnergyThreshold},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if c.RadialStrength > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "radial_strength must be at most 1, got %v", c.RadialStrength)
	}
	if c.TickBudget < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tick_budget must be at least 1, got %d", c.TickBudget)
	}
	return nil
}

// Params is the configuration handed to a force solver.
type Params struct {
	Charge          float64            `json:"charge"`
	CollisionRadius float64            `json:"collisionRadius"`
	RadialStrength  float64            `json:"radialStrength"`
	Center          graph.Point        `json:"center"`
	Radial          map[string]float64 `json:"radial"` // target distance from Center per node
	TickBudget      int                `json:"tickBudget"`
	EnergyThreshold float64            `json:"energyThreshold"`

	// Nodes lists the simulated node ids in graph insertion order.
	Nodes []string `json:"nodes"`
}

// Configure derives simulation parameters for g.
//
// Repulsion is a constant independent of the node count. The collision
// radius is the node radius plus padding, so nodes never overlap. Each node
// is pulled toward a circle of radius BaseRadius + InDegree*PerEdgeRadius
// around the origin: heavily consumed nodes sit further out, which gives the
// hub-and-spoke picture.
func Configure(g *graph.Graph, cfg Config) Params {
	p := Params{
		Charge:          cfg.Charge,
		CollisionRadius: cfg.NodeRadius + cfg.CollisionPadding,
		RadialStrength:  cfg.RadialStrength,
		Radial:          make(map[string]float64, g.NodeCount()),
		TickBudget:      cfg.TickBudget,
		EnergyThreshold: cfg.EnergyThreshold,
	}
	for _, n := range g.Nodes() {
		p.Radial[n.ID] = cfg.BaseRadius + float64(n.InDegree)*cfg.PerEdgeRadius
		p.Nodes = append(p.Nodes, n.ID)
	}
	return p
}
