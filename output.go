package otg

// TrajectoryType reports which pipeline produced the current trajectory.
type TrajectoryType int

const (
	TypeWaypoint TrajectoryType = iota
	TypePath
)

// Output is the per-cycle result record of the generator. The New* slices
// hold the commanded state for the next control cycle.
type Output struct {
	NewPosition     []float64
	NewVelocity     []float64
	NewAcceleration []float64

	// NewCalculation reports whether this cycle replanned the trajectory.
	NewCalculation bool

	// CalculationDuration is the time spent replanning, in microseconds.
	CalculationDuration float64

	// Time is the current time on the trajectory in seconds.
	Time float64

	// Trajectory is the currently tracked trajectory. It stays valid and
	// samplable until the next successful replan.
	Trajectory *Trajectory

	Type TrajectoryType
}

// NewOutput returns an output with all per-axis slices allocated.
func NewOutput(dof int) *Output {
	return &Output{
		NewPosition:     make([]float64, dof),
		NewVelocity:     make([]float64, dof),
		NewAcceleration: make([]float64, dof),
	}
}

// PassToInput feeds the commanded state back as the next cycle's current
// state, the usual wiring when no external feedback is available.
func (o *Output) PassToInput(in *Input) {
	copy(in.CurrentPosition, o.NewPosition)
	copy(in.CurrentVelocity, o.NewVelocity)
	copy(in.CurrentAcceleration, o.NewAcceleration)
}
