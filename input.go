package otg

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ControlInterface selects which target the generator drives toward.
type ControlInterface int

const (
	// PositionControl reaches a target position, velocity, and acceleration.
	PositionControl ControlInterface = iota
	// VelocityControl reaches a target velocity and acceleration; the
	// position follows freely and the velocity limits do not apply.
	VelocityControl
)

// Synchronization selects how the axes share a common duration.
type Synchronization int

const (
	// SynchronizationTime forces every enabled axis onto the duration of the
	// slowest axis.
	SynchronizationTime Synchronization = iota
	// SynchronizationTimeIfNecessary only stretches axes whose target state
	// is not at rest.
	SynchronizationTimeIfNecessary
	// SynchronizationNone lets every axis run its own minimum-time profile.
	SynchronizationNone
)

// DurationDiscretization selects whether the trajectory duration may take
// any value or must be a multiple of the control cycle.
type DurationDiscretization int

const (
	DiscretizationContinuous DurationDiscretization = iota
	DiscretizationDiscrete
)

// Input is the per-cycle parameter record of the generator. All slices have
// one entry per degree of freedom. The generator replans whenever any field
// differs from the previous cycle.
type Input struct {
	ControlInterface       ControlInterface
	Synchronization        Synchronization
	DurationDiscretization DurationDiscretization

	CurrentPosition     []float64
	CurrentVelocity     []float64
	CurrentAcceleration []float64

	TargetPosition     []float64
	TargetVelocity     []float64
	TargetAcceleration []float64

	MaxVelocity     []float64
	MaxAcceleration []float64
	MaxJerk         []float64

	// MinVelocity and MinAcceleration are optional; nil means the negated
	// maxima apply.
	MinVelocity     []float64
	MinAcceleration []float64

	Enabled []bool

	// MinimumDuration optionally bounds the trajectory duration from below.
	MinimumDuration *float64

	// Path switches the generator into experimental path mode.
	Path *Path
}

// NewInput returns an input with all per-axis slices allocated and every
// axis enabled.
func NewInput(dof int) *Input {
	in := &Input{
		CurrentPosition:     make([]float64, dof),
		CurrentVelocity:     make([]float64, dof),
		CurrentAcceleration: make([]float64, dof),
		TargetPosition:      make([]float64, dof),
		TargetVelocity:      make([]float64, dof),
		TargetAcceleration:  make([]float64, dof),
		MaxVelocity:         make([]float64, dof),
		MaxAcceleration:     make([]float64, dof),
		MaxJerk:             make([]float64, dof),
		Enabled:             make([]bool, dof),
	}
	for d := range in.Enabled {
		in.Enabled[d] = true
	}
	return in
}

// Validate checks the input against the given number of degrees of freedom:
// slice lengths, finiteness, and the limit invariants min <= 0 <= max and
// max_jerk > 0. Per-axis failures are accumulated.
func (in *Input) Validate(dof int) error {
	var err error

	check := func(name string, values []float64, required bool) {
		if values == nil {
			if required {
				err = multierr.Append(err, errors.Errorf("%s is not set", name))
			}
			return
		}
		if len(values) != dof {
			err = multierr.Append(err, errors.Errorf("%s has %d entries, expected %d", name, len(values), dof))
			return
		}
		for d, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				err = multierr.Append(err, errors.Errorf("%s[%d] is not finite", name, d))
			}
		}
	}
	check("current_position", in.CurrentPosition, true)
	check("current_velocity", in.CurrentVelocity, true)
	check("current_acceleration", in.CurrentAcceleration, true)
	check("target_position", in.TargetPosition, true)
	check("target_velocity", in.TargetVelocity, true)
	check("target_acceleration", in.TargetAcceleration, true)
	check("max_velocity", in.MaxVelocity, true)
	check("max_acceleration", in.MaxAcceleration, true)
	check("max_jerk", in.MaxJerk, true)
	check("min_velocity", in.MinVelocity, false)
	check("min_acceleration", in.MinAcceleration, false)
	if len(in.Enabled) != dof {
		err = multierr.Append(err, errors.Errorf("enabled has %d entries, expected %d", len(in.Enabled), dof))
	}
	if err != nil {
		return err
	}

	for d := 0; d < dof; d++ {
		if in.MaxJerk[d] <= 0 {
			err = multierr.Append(err, errors.Errorf("max_jerk[%d] = %v must be positive", d, in.MaxJerk[d]))
		}
		if in.MaxAcceleration[d] < 0 {
			err = multierr.Append(err, errors.Errorf("max_acceleration[%d] = %v must be non-negative", d, in.MaxAcceleration[d]))
		}
		if in.ControlInterface == PositionControl && in.MaxVelocity[d] < 0 {
			err = multierr.Append(err, errors.Errorf("max_velocity[%d] = %v must be non-negative", d, in.MaxVelocity[d]))
		}
		if in.MinVelocity != nil && in.MinVelocity[d] > 0 {
			err = multierr.Append(err, errors.Errorf("min_velocity[%d] = %v must be non-positive", d, in.MinVelocity[d]))
		}
		if in.MinAcceleration != nil && in.MinAcceleration[d] > 0 {
			err = multierr.Append(err, errors.Errorf("min_acceleration[%d] = %v must be non-positive", d, in.MinAcceleration[d]))
		}
	}

	if in.MinimumDuration != nil && (*in.MinimumDuration < 0 || math.IsNaN(*in.MinimumDuration) || math.IsInf(*in.MinimumDuration, 0)) {
		err = multierr.Append(err, errors.Errorf("minimum_duration = %v must be a finite non-negative number", *in.MinimumDuration))
	}

	if in.Path != nil {
		if in.ControlInterface != PositionControl {
			err = multierr.Append(err, errors.New("path mode requires the position interface"))
		}
		if in.Path.dof != dof {
			err = multierr.Append(err, errors.Errorf("path has %d degrees of freedom, expected %d", in.Path.dof, dof))
		} else if err == nil {
			pdq := make([]float64, dof)
			pddq := make([]float64, dof)
			if !validatePathBoundary(in.Path, in, pdq, pddq) {
				err = multierr.Append(err, errors.New("path boundary conditions are not consistent across axes"))
			}
		}
	}

	return err
}

// Equal reports whether two inputs would produce the same trajectory. Any
// difference triggers a replan in the driver. Paths compare by identity.
func (in *Input) Equal(other *Input) bool {
	if in.ControlInterface != other.ControlInterface ||
		in.Synchronization != other.Synchronization ||
		in.DurationDiscretization != other.DurationDiscretization {
		return false
	}
	if !floatsEqual(in.CurrentPosition, other.CurrentPosition) ||
		!floatsEqual(in.CurrentVelocity, other.CurrentVelocity) ||
		!floatsEqual(in.CurrentAcceleration, other.CurrentAcceleration) ||
		!floatsEqual(in.TargetPosition, other.TargetPosition) ||
		!floatsEqual(in.TargetVelocity, other.TargetVelocity) ||
		!floatsEqual(in.TargetAcceleration, other.TargetAcceleration) ||
		!floatsEqual(in.MaxVelocity, other.MaxVelocity) ||
		!floatsEqual(in.MaxAcceleration, other.MaxAcceleration) ||
		!floatsEqual(in.MaxJerk, other.MaxJerk) ||
		!floatsEqual(in.MinVelocity, other.MinVelocity) ||
		!floatsEqual(in.MinAcceleration, other.MinAcceleration) {
		return false
	}
	if len(in.Enabled) != len(other.Enabled) {
		return false
	}
	for d := range in.Enabled {
		if in.Enabled[d] != other.Enabled[d] {
			return false
		}
	}
	if (in.MinimumDuration == nil) != (other.MinimumDuration == nil) {
		return false
	}
	if in.MinimumDuration != nil && *in.MinimumDuration != *other.MinimumDuration {
		return false
	}
	return in.Path == other.Path
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// copyInto deep-copies the input into dst, which must have been created for
// the same number of degrees of freedom.
func (in *Input) copyInto(dst *Input) {
	dst.ControlInterface = in.ControlInterface
	dst.Synchronization = in.Synchronization
	dst.DurationDiscretization = in.DurationDiscretization
	copy(dst.CurrentPosition, in.CurrentPosition)
	copy(dst.CurrentVelocity, in.CurrentVelocity)
	copy(dst.CurrentAcceleration, in.CurrentAcceleration)
	copy(dst.TargetPosition, in.TargetPosition)
	copy(dst.TargetVelocity, in.TargetVelocity)
	copy(dst.TargetAcceleration, in.TargetAcceleration)
	copy(dst.MaxVelocity, in.MaxVelocity)
	copy(dst.MaxAcceleration, in.MaxAcceleration)
	copy(dst.MaxJerk, in.MaxJerk)
	copy(dst.Enabled, in.Enabled)

	dst.MinVelocity = copyOptional(dst.MinVelocity, in.MinVelocity)
	dst.MinAcceleration = copyOptional(dst.MinAcceleration, in.MinAcceleration)

	if in.MinimumDuration == nil {
		dst.MinimumDuration = nil
	} else {
		v := *in.MinimumDuration
		dst.MinimumDuration = &v
	}
	dst.Path = in.Path
}

func copyOptional(dst, src []float64) []float64 {
	if src == nil {
		return nil
	}
	if len(dst) != len(src) {
		dst = make([]float64, len(src))
	}
	copy(dst, src)
	return dst
}

// String dumps the input field per field for diagnostics.
func (in *Input) String() string {
	var b strings.Builder
	join := func(name string, values []float64) {
		if values == nil {
			return
		}
		fmt.Fprintf(&b, "inp.%s = [", name)
		for i, v := range values {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%.15g", v)
		}
		b.WriteString("]\n")
	}
	b.WriteString("\n")
	join("current_position", in.CurrentPosition)
	join("current_velocity", in.CurrentVelocity)
	join("current_acceleration", in.CurrentAcceleration)
	join("target_position", in.TargetPosition)
	join("target_velocity", in.TargetVelocity)
	join("target_acceleration", in.TargetAcceleration)
	join("max_velocity", in.MaxVelocity)
	join("max_acceleration", in.MaxAcceleration)
	join("max_jerk", in.MaxJerk)
	join("min_velocity", in.MinVelocity)
	join("min_acceleration", in.MinAcceleration)
	return b.String()
}
