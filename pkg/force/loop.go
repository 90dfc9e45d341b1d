package force

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/graph"
)

// Force names understood by [Solver.SetForce].
const (
	ForceCharge  = "charge"  // float64 strength
	ForceCollide = "collide" // float64 radius
	ForceRadial  = "radial"  // Radial
)

// Radial is the value passed for [ForceRadial].
type Radial struct {
	Center   graph.Point
	Radius   map[string]float64
	Strength float64
}

// Solver is the physics simulation the loop drives. Tick advances the
// simulation by one step and returns its remaining kinetic energy.
type Solver interface {
	SetForce(name string, value any)
	Tick() float64
	Position(id string) (graph.Point, bool)
	Pin(id string, x, y float64)
	Unpin(id string)
}

// Apply sets the charge, collide and radial forces of s from p.
func (p Params) Apply(s Solver) {
	s.SetForce(ForceCharge, p.Charge)
	s.SetForce(ForceCollide, p.CollisionRadius)
	s.SetForce(ForceRadial, Radial{Center: p.Center, Radius: p.Radial, Strength: p.RadialStrength})
}

// State is the lifecycle state of a [Loop].
type State int

const (
	Idle State = iota
	Running
	Settled
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Settled:
		return "settled"
	}
	return "idle"
}

// Settlement describes why a run stopped.
type Settlement struct {
	Ticks    int
	Energy   float64
	Budgeted bool // true when the tick budget ran out before the energy threshold
}

// LoopOptions configures a [Loop].
type LoopOptions struct {
	// OnSettle is called once per run, outside the loop's lock, after every
	// node has been pinned.
	OnSettle func(Settlement)
	Logger   *log.Logger
}

// Loop drives a [Solver] one tick per frame until the tick budget is spent or
// the energy drops below the threshold, then pins every node where it is.
//
// Start may be called while a previous run is still scheduled: the pending
// frame is cancelled first and a generation counter makes any frame of the
// old run that is already executing a no-op, so two runs never tick the
// solver concurrently. Pinned nodes stay put until Release or Reset.
//
// Loop is safe for concurrent use.
type Loop struct {
	solver Solver
	sched  FrameScheduler
	opts   LoopOptions
	logger *log.Logger

	mu       sync.Mutex
	params   Params
	gen      uint64
	frame    FrameID
	hasFrame bool
	state    State
	ticks    int
	pinned   map[string]bool
}

// NewLoop creates an idle loop.
func NewLoop(s Solver, sched FrameScheduler, opts LoopOptions) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loop{
		solver: s,
		sched:  sched,
		opts:   opts,
		logger: logger,
		pinned: make(map[string]bool),
	}
}

// Start cancels any run in progress, configures the solver from p and
// schedules the first tick.
func (l *Loop) Start(p Params) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startLocked(p)
}

func (l *Loop) startLocked(p Params) {
	l.cancelLocked()
	l.gen++
	l.params = p
	l.ticks = 0
	l.state = Running
	p.Apply(l.solver)
	l.scheduleLocked()
	l.logger.Debug("force: run started", "generation", l.gen, "nodes", len(p.Nodes), "budget", p.TickBudget)
}

// Stop cancels the scheduled frame without pinning anything.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelLocked()
	l.gen++
	if l.state == Running {
		l.state = Idle
	}
}

// DragEnd pins node id at the position it was dropped.
func (l *Loop) DragEnd(id string, x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.solver.Pin(id, x, y)
	l.pinned[id] = true
}

// Release unpins node id so the simulation may move it again.
func (l *Loop) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.solver.Unpin(id)
	delete(l.pinned, id)
}

// Reset unpins every node and starts a new run with the last parameters.
func (l *Loop) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.pinned {
		l.solver.Unpin(id)
	}
	clear(l.pinned)
	l.startLocked(l.params)
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Ticks returns the number of ticks of the current run.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Pinned reports whether node id is pinned.
func (l *Loop) Pinned(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pinned[id]
}

func (l *Loop) cancelLocked() {
	if l.hasFrame {
		l.sched.CancelFrame(l.frame)
		l.hasFrame = false
	}
}

func (l *Loop) scheduleLocked() {
	gen := l.gen
	l.frame = l.sched.RequestFrame(func() { l.tick(gen) })
	l.hasFrame = true
}

func (l *Loop) tick(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || l.state != Running {
		l.mu.Unlock()
		return
	}
	l.hasFrame = false

	energy := l.solver.Tick()
	l.ticks++
	budgeted := l.ticks >= l.params.TickBudget
	if !budgeted && energy >= l.params.EnergyThreshold {
		l.scheduleLocked()
		l.mu.Unlock()
		return
	}

	for _, id := range l.params.Nodes {
		if p, ok := l.solver.Position(id); ok {
			l.solver.Pin(id, p.X, p.Y)
			l.pinned[id] = true
		}
	}
	l.state = Settled
	s := Settlement{Ticks: l.ticks, Energy: energy, Budgeted: budgeted && energy >= l.params.EnergyThreshold}
	onSettle := l.opts.OnSettle
	l.mu.Unlock()

	l.logger.Debug("force: settled", "ticks", s.Ticks, "energy", s.Energy, "budgeted", s.Budgeted)
	if onSettle != nil {
		onSettle(s)
	}
}
