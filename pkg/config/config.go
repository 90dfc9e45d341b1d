// Package config loads engine settings from a TOML file.
//
// Every section is optional and every missing key keeps its default:
//
//	[curvature]
//	spread = 0.5
//
//	[layout]
//	orientation = "TB"
//	rank_sep_tb = 180
//
//	[force]
//	charge = -800
//	tick_budget = 200
//
//	[server]
//	addr = ":8080"
//	watch = true
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "24h"
//
// Unknown keys are rejected so typos do not go unnoticed. In [layout], a
// spacing of 0 (margin, rank_sep_lr, rank_sep_tb, node_sep, margin_x,
// margin_y) means no spacing, while box dimensions must be positive.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/force"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/layout"
)

const (
	// DefaultAddr is the listen address of the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultCacheTTL bounds how long a rendered artifact is reused.
	DefaultCacheTTL = "168h"
)

// Config is the complete engine configuration.
type Config struct {
	Curvature Curvature    `toml:"curvature"`
	Layout    Layout       `toml:"layout"`
	Force     force.Config `toml:"force"`
	Server    Server       `toml:"server"`
	Cache     Cache        `toml:"cache"`
}

// Curvature configures the multi-edge curvature assigner.
type Curvature struct {
	Spread float64 `toml:"spread"`
}

// Layout configures the hierarchical layout engine.
type Layout struct {
	Orientation     string  `toml:"orientation"`
	NodeWidth       float64 `toml:"node_width"`
	HeaderHeight    float64 `toml:"header_height"`
	RowHeight       float64 `toml:"row_height"`
	Margin          float64 `toml:"margin"`
	CollapsedHeight float64 `toml:"collapsed_height"`
	RankSepLR       float64 `toml:"rank_sep_lr"`
	RankSepTB       float64 `toml:"rank_sep_tb"`
	NodeSep         float64 `toml:"node_sep"`
	MarginX         float64 `toml:"margin_x"`
	MarginY         float64 `toml:"margin_y"`
	MaxRounds       int     `toml:"max_rounds"`
}

// Server configures the HTTP server.
type Server struct {
	Addr  string `toml:"addr"`
	Watch bool   `toml:"watch"`
}

// Cache selects the render cache backend: "file" (the user cache
// directory), "redis", "mongo" or "none". URL is the connection string of
// the networked backends.
type Cache struct {
	Backend   string `toml:"backend"`
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	TTL       string `toml:"ttl"`
}

var cacheBackends = map[string]bool{"file": true, "redis": true, "mongo": true, "none": true}

// TTLDuration parses TTL. Call Validate first.
func (c Cache) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c Cache) validate() error {
	backend := strings.ToLower(c.Backend)
	if !cacheBackends[backend] {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q is not one of file, redis, mongo, none", c.Backend)
	}
	if (backend == "redis" || backend == "mongo") && c.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.url is required for the %s backend", backend)
	}
	if d, err := time.ParseDuration(c.TTL); err != nil || d < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl %q is not a valid duration", c.TTL)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	o := layout.DefaultOptions()
	return Config{
		Curvature: Curvature{Spread: graph.DefaultSpread},
		Layout: Layout{
			Orientation:     string(o.Orientation),
			NodeWidth:       o.NodeWidth,
			HeaderHeight:    o.HeaderHeight,
			RowHeight:       o.RowHeight,
			Margin:          o.Margin,
			CollapsedHeight: o.CollapsedHeight,
			RankSepLR:       o.RankSepLR,
			RankSepTB:       o.RankSepTB,
			NodeSep:         o.NodeSep,
			MarginX:         o.MarginX,
			MarginY:         o.MarginY,
			MaxRounds:       o.MaxRounds,
		},
		Force:  force.DefaultConfig(),
		Server: Server{Addr: DefaultAddr},
		Cache:  Cache{Backend: "file", Namespace: "lineage", TTL: DefaultCacheTTL},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration from r over the defaults and validates it.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	sort.Strings(names)
	return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := errors.ValidatePositive("curvature.spread", c.Curvature.Spread); err != nil {
		return err
	}
	if err := c.Layout.validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.LayoutOptions().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.Force.Validate(); err != nil {
		return fmt.Errorf("force: %w", err)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	return c.Cache.validate()
}

// validate rejects zero box dimensions and negative spacings, which
// layout.Options would otherwise read as "default" and [layout.Zero].
func (l Layout) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"node_width", l.NodeWidth},
		{"header_height", l.HeaderHeight},
		{"row_height", l.RowHeight},
		{"collapsed_height", l.CollapsedHeight},
	} {
		if err := errors.ValidatePositive(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"margin", l.Margin},
		{"rank_sep_lr", l.RankSepLR},
		{"rank_sep_tb", l.RankSepTB},
		{"node_sep", l.NodeSep},
		{"margin_x", l.MarginX},
		{"margin_y", l.MarginY},
	} {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if l.MaxRounds < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_rounds must be at least 1, got %d", l.MaxRounds)
	}
	return nil
}

// LayoutOptions converts the [layout] section. Every value is explicit, so a
// zero spacing becomes [layout.Zero].
func (c Config) LayoutOptions() layout.Options {
	l := c.Layout
	spacing := func(v float64) float64 {
		if v == 0 {
			return layout.Zero
		}
		return v
	}
	return layout.Options{
		Orientation:     layout.Orientation(strings.ToUpper(l.Orientation)),
		NodeWidth:       l.NodeWidth,
		HeaderHeight:    l.HeaderHeight,
		RowHeight:       l.RowHeight,
		Margin:          spacing(l.Margin),
		CollapsedHeight: l.CollapsedHeight,
		RankSepLR:       spacing(l.RankSepLR),
		RankSepTB:       spacing(l.RankSepTB),
		NodeSep:         spacing(l.NodeSep),
		MarginX:         spacing(l.MarginX),
		MarginY:         spacing(l.MarginY),
		MaxRounds:       l.MaxRounds,
	}
}
