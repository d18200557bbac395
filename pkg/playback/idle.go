package playback

import "image/color"

const (
	idleMin = 0
	idleMax = 255
)

// IdleAnimator pulses a flat color while no video has arrived yet.
type IdleAnimator struct {
	intensity int
	step      int
}

// NewIdleAnimator starts at zero, stepping upward.
func NewIdleAnimator() *IdleAnimator {
	return &IdleAnimator{intensity: idleMin, step: 1}
}

// Step advances the triangular wave by one and returns the new intensity.
func (a *IdleAnimator) Step() uint8 {
	a.intensity += a.step
	switch {
	case a.step > 0 && a.intensity >= idleMax:
		a.intensity = idleMax
		a.step = -a.step
	case a.step < 0 && a.intensity <= idleMin:
		a.intensity = idleMin
		a.step = -a.step
	}
	return uint8(a.intensity)
}

// Intensity returns the current intensity without advancing.
func (a *IdleAnimator) Intensity() uint8 {
	return uint8(a.intensity)
}

// Color returns the color for an intensity: blue only, fully opaque.
func (a *IdleAnimator) Color(intensity uint8) color.RGBA {
	return color.RGBA{R: 0, G: 0, B: intensity, A: 255}
}
