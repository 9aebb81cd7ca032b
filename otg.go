package otg

import (
	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Result is the outcome of an update cycle. The integer values are stable
// and kept for parity with existing tooling.
type Result int

const (
	// Working means the trajectory is being followed.
	Working Result = 0
	// Finished means the target state has been reached and is being held.
	Finished Result = 1
	// Error is an unspecific failure.
	Error Result = -1
	// ErrorInvalidInput rejects non-finite numbers or inconsistent limits.
	ErrorInvalidInput Result = -100
	// ErrorTrajectoryDuration rejects a synchronized duration beyond the
	// configured ceiling, which usually indicates a degenerate input.
	ErrorTrajectoryDuration Result = -101
	// ErrorExecutionTimeCalculation means step 1 found no feasible profile
	// for some axis.
	ErrorExecutionTimeCalculation Result = -110
	// ErrorSynchronizationCalculation means no common duration satisfies
	// every axis, or a step-2 re-solve failed.
	ErrorSynchronizationCalculation Result = -111
)

func (r Result) String() string {
	switch r {
	case Working:
		return "working"
	case Finished:
		return "finished"
	case ErrorInvalidInput:
		return "error: invalid input"
	case ErrorTrajectoryDuration:
		return "error: trajectory duration"
	case ErrorExecutionTimeCalculation:
		return "error: execution time calculation"
	case ErrorSynchronizationCalculation:
		return "error: synchronization calculation"
	default:
		return "error"
	}
}

// defaultMaxDuration is the trajectory duration ceiling in seconds.
const defaultMaxDuration = 7.6e3

// Generator is the cyclic driver of the trajectory pipeline. Call Update
// once per control cycle; it replans whenever the input changed and samples
// the current trajectory at the advanced time otherwise. A Generator is not
// safe for concurrent use.
type Generator struct {
	dof       int
	deltaTime float64
	logger    golog.Logger
	clk       clock.Clock

	// MaxDuration is the trajectory duration ceiling; a synchronized
	// duration beyond it fails with ErrorTrajectoryDuration. Zero or
	// negative disables the check.
	MaxDuration float64

	current    *Input
	hasCurrent bool

	active, spare         *profileTrajectory
	pathActive, pathSpare *pathTrajectory

	trajectory Trajectory
	trajType   TrajectoryType
	time       float64
}

// New returns a generator for the given number of degrees of freedom and
// control cycle period in seconds.
func New(dof int, deltaTime float64, logger golog.Logger) (*Generator, error) {
	if dof < 1 {
		return nil, errors.Errorf("need at least one degree of freedom, got %d", dof)
	}
	if !(deltaTime > 0) {
		return nil, errors.Errorf("control cycle period must be positive, got %v", deltaTime)
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &Generator{
		dof:         dof,
		deltaTime:   deltaTime,
		logger:      logger,
		clk:         clock.New(),
		MaxDuration: defaultMaxDuration,
		current:     NewInput(dof),
		active:      newProfileTrajectory(dof),
		spare:       newProfileTrajectory(dof),
		pathActive:  newPathTrajectory(dof),
		pathSpare:   newPathTrajectory(dof),
	}, nil
}

// DoF returns the number of degrees of freedom.
func (g *Generator) DoF() int { return g.dof }

// DeltaTime returns the control cycle period in seconds.
func (g *Generator) DeltaTime() float64 { return g.deltaTime }

// Update runs one control cycle: it validates the input, replans if the
// input differs from the previous cycle, advances the time on the current
// trajectory, and fills the output with the commanded state. On an error
// result the previous trajectory is untouched and remains samplable.
func (g *Generator) Update(input *Input, output *Output) Result {
	start := g.clk.Now()
	output.NewCalculation = false

	if err := input.Validate(g.dof); err != nil {
		g.logger.Warnw("rejecting invalid input", "error", err)
		return ErrorInvalidInput
	}

	if !g.hasCurrent || !input.Equal(g.current) {
		if res := g.calculate(input); res != Working {
			g.logger.Warnw("trajectory calculation failed", "result", res.String(), "input", input.String())
			return res
		}
		g.time = 0
		output.NewCalculation = true
		input.copyInto(g.current)
		g.hasCurrent = true
		g.logger.Debugw("replanned trajectory", "duration", g.trajectory.Duration())
	}

	g.time += g.deltaTime
	output.Time = g.time
	g.trajectory.AtTime(g.time, output.NewPosition, output.NewVelocity, output.NewAcceleration)
	output.Trajectory = &g.trajectory
	output.Type = g.trajType
	output.CalculationDuration = float64(g.clk.Since(start).Nanoseconds()) / 1e3

	// Expect the commanded state to come back as the next cycle's current
	// state; the equality check then skips replanning.
	copy(g.current.CurrentPosition, output.NewPosition)
	copy(g.current.CurrentVelocity, output.NewVelocity)
	copy(g.current.CurrentAcceleration, output.NewAcceleration)

	if g.time > g.trajectory.Duration() {
		return Finished
	}
	return Working
}

// calculate builds a new trajectory into the spare buffers and swaps them in
// only on success, so a failed calculation leaves the previous trajectory
// intact.
func (g *Generator) calculate(input *Input) Result {
	if input.Path != nil {
		if res := g.pathSpare.calculate(input); res != calcWorking {
			return resultFromCalc(res)
		}
		g.pathActive, g.pathSpare = g.pathSpare, g.pathActive
		g.trajectory = Trajectory{path: g.pathActive}
		g.trajType = TypePath
		return Working
	}

	if res := g.spare.calculate(input, g.deltaTime); res != calcWorking {
		return resultFromCalc(res)
	}
	if g.MaxDuration > 0 && g.spare.duration > g.MaxDuration {
		return ErrorTrajectoryDuration
	}
	g.active, g.spare = g.spare, g.active
	g.trajectory = Trajectory{profile: g.active}
	g.trajType = TypeWaypoint
	return Working
}

func resultFromCalc(res calculationResult) Result {
	switch res {
	case calcErrorExecutionTime:
		return ErrorExecutionTimeCalculation
	case calcErrorSynchronization:
		return ErrorSynchronizationCalculation
	default:
		return Error
	}
}
