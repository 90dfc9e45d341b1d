package layout

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

// Orientation is the axis ranks are laid out along.
type Orientation string

const (
	// LeftToRight places ranks as columns, sources on the left.
	LeftToRight Orientation = "LR"
	// TopToBottom places ranks as rows, sources at the top.
	TopToBottom Orientation = "TB"
)

// ParseOrientation accepts "LR" or "TB" in any case.
func ParseOrientation(s string) (Orientation, error) {
	if err := errors.ValidateOrientation(s); err != nil {
		return "", err
	}
	return Orientation(strings.ToUpper(s)), nil
}

// Default dimensions, in layout units.
const (
	DefaultNodeWidth       = 260.0
	DefaultHeaderHeight    = 85.0
	DefaultRowHeight       = 36.0
	DefaultMargin          = 20.0
	DefaultCollapsedHeight = 50.0
	DefaultRankSepLR       = 250.0
	DefaultRankSepTB       = 150.0
	DefaultNodeSep         = 60.0
	DefaultMarginX         = 50.0
	DefaultMarginY         = 50.0
	DefaultMaxRounds       = 8
)

// Zero requests a spacing of exactly zero. Margin, RankSepLR, RankSepTB,
// NodeSep, MarginX and MarginY treat their zero value as "use the default",
// so an explicit zero is spelled Zero.
const Zero = -1.0

// Options configures [Compute]. Zero values select the defaults above.
type Options struct {
	Orientation Orientation

	// Node box: an expanded node is HeaderHeight + RowHeight per attribute +
	// Margin tall; a collapsed node is CollapsedHeight tall.
	NodeWidth       float64
	HeaderHeight    float64
	RowHeight       float64
	Margin          float64
	CollapsedHeight float64

	// Spacing between ranks (per orientation) and between nodes of a rank.
	RankSepLR float64
	RankSepTB float64
	NodeSep   float64
	MarginX   float64
	MarginY   float64

	// MaxRounds bounds the barycenter ordering passes.
	MaxRounds int

	Logger *log.Logger

	resolved bool // set by WithDefaults
}

// DefaultOptions returns left-to-right options with default dimensions.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns o with every zero field set to its default, every
// [Zero] spacing set to 0 and the orientation normalised to upper case.
// Calling it again on its result returns the result unchanged.
func (o Options) WithDefaults() Options {
	if o.resolved {
		return o
	}
	if o.Orientation == "" {
		o.Orientation = LeftToRight
	} else {
		o.Orientation = Orientation(strings.ToUpper(string(o.Orientation)))
	}
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	spacing := func(v *float64, d float64) {
		if *v == Zero {
			*v = 0
			return
		}
		def(v, d)
	}
	def(&o.NodeWidth, DefaultNodeWidth)
	def(&o.HeaderHeight, DefaultHeaderHeight)
	def(&o.RowHeight, DefaultRowHeight)
	def(&o.CollapsedHeight, DefaultCollapsedHeight)
	spacing(&o.Margin, DefaultMargin)
	spacing(&o.RankSepLR, DefaultRankSepLR)
	spacing(&o.RankSepTB, DefaultRankSepTB)
	spacing(&o.NodeSep, DefaultNodeSep)
	spacing(&o.MarginX, DefaultMarginX)
	spacing(&o.MarginY, DefaultMarginY)
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	o.resolved = true
	return o
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}

// Validate checks the orientation and that every dimension is usable.
func (o Options) Validate() error {
	o = o.WithDefaults()
	if err := errors.ValidateOrientation(string(o.Orientation)); err != nil {
		return err
	}
	positive := []struct {
		name string
		v    float64
	}{
		{"node_width", o.NodeWidth},
		{"header_height", o.HeaderHeight},
		{"row_height", o.RowHeight},
		{"collapsed_height", o.CollapsedHeight},
	}
	for _, p := range positive {
		if err := errors.ValidatePositive(p.name, p.v); err != nil {
			return err
		}
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"margin", o.Margin},
		{"rank_sep_lr", o.RankSepLR},
		{"rank_sep_tb", o.RankSepTB},
		{"node_sep", o.NodeSep},
		{"margin_x", o.MarginX},
		{"margin_y", o.MarginY},
	}
	for _, p := range nonNegative {
		if err := errors.ValidateNonNegative(p.name, p.v); err != nil {
			return err
		}
	}
	if o.MaxRounds < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_rounds must be at least 1, got %d", o.MaxRounds)
	}
	return nil
}

// RankSep returns the spacing between ranks for the configured orientation.
func (o Options) RankSep() float64 {
	o = o.WithDefaults()
	if o.Orientation == TopToBottom {
		return o.RankSepTB
	}
	return o.RankSepLR
}

// NodeSize returns the box of n for its current expanded state.
func (o Options) NodeSize(n *graph.Node) graph.Size {
	o = o.WithDefaults()
	if !n.Expanded {
		return graph.Size{Width: o.NodeWidth, Height: o.CollapsedHeight}
	}
	return graph.Size{
		Width:  o.NodeWidth,
		Height: o.HeaderHeight + o.RowHeight*float64(len(n.Attributes)) + o.Margin,
	}
}
