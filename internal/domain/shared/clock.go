package shared

import "time"

// Clock is an abstraction for wall-clock time, allowing time to be mocked in tests.
// Game time is measured in frames and comes from the World, never from a Clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock implements Clock with a controllable time for testing
type MockClock struct {
	CurrentTime time.Time
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// NewMockClock creates a MockClock starting at the given time.
// A zero start time is replaced with the current time.
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now()
	}
	return &MockClock{CurrentTime: startTime}
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// FramesPerSecond is the simulation rate of the game at its fastest speed.
const FramesPerSecond = 24

// FrameDuration converts a frame count into the wall time it represents.
func FrameDuration(frames int) time.Duration {
	return time.Duration(frames) * time.Second / FramesPerSecond
}
