package playback

import "testing"

func TestIdleAnimator_RisesToMax(t *testing.T) {
	a := NewIdleAnimator()
	var v uint8
	for i := 1; i <= 255; i++ {
		v = a.Step()
		if int(v) != i {
			t.Fatalf("step %d = %d", i, v)
		}
	}
	if v != 255 || a.step != -1 {
		t.Errorf("after 255 steps: intensity %d, step %d", v, a.step)
	}
	if got := a.Step(); got != 254 {
		t.Errorf("first step down = %d, want 254", got)
	}
}

func TestIdleAnimator_FallsToMin(t *testing.T) {
	a := &IdleAnimator{intensity: 255, step: -1}
	var v uint8
	for i := 0; i < 255; i++ {
		v = a.Step()
	}
	if v != 0 || a.step != 1 {
		t.Errorf("after 255 steps down: intensity %d, step %d", v, a.step)
	}
	if got := a.Step(); got != 1 {
		t.Errorf("first step up = %d, want 1", got)
	}
}

func TestIdleAnimator_StaysInRange(t *testing.T) {
	a := NewIdleAnimator()
	b := NewIdleAnimator()
	for i := 0; i < 2000; i++ {
		va, vb := a.Step(), b.Step()
		if a.intensity < 0 || a.intensity > 255 {
			t.Fatalf("intensity %d out of range at step %d", a.intensity, i)
		}
		if va != vb {
			t.Fatalf("animators diverged at step %d", i)
		}
	}
}

func TestIdleAnimator_Color(t *testing.T) {
	a := NewIdleAnimator()
	c := a.Color(128)
	if c.R != 0 || c.G != 0 || c.B != 128 || c.A != 255 {
		t.Errorf("Color(128) = %+v", c)
	}
}
