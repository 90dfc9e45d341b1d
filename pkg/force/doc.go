// Package force configures and drives a force-directed lineage view.
//
// The package does not contain a physics solver. [Configure] derives the
// forces from the graph (constant repulsion, a collision radius, and a
// radial pull whose target distance grows with each node's in-degree) and
// [Loop] advances any [Solver] implementation one tick per frame until the
// tick budget is spent or the simulation cools down, then pins every node in
// place so the picture stops moving.
//
//	params := force.Configure(g, force.DefaultConfig())
//	loop := force.NewLoop(solver, force.NewTimerScheduler(0), force.LoopOptions{})
//	loop.Start(params)
//
// Frames come from a [FrameScheduler]. [TimerScheduler] uses timers;
// [ManualScheduler] runs frames only when stepped, which makes runs
// reproducible in tests.
package force
