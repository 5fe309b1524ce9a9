package math

import "testing"

func TestLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float32
		want    float32
	}{
		{"start", 3, 7, 0, 3},
		{"end", 3, 7, 1, 7},
		{"midpoint", 0, 10, 0.5, 5},
		{"extrapolate forward", 0, 10, 2, 20},
		{"extrapolate backward", 0, 10, -1, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); got != tt.want {
				t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.5, 0.0, 1.0) != 1.0 {
		t.Error("Clamp did not clamp high")
	}
	if Clamp(-3, 0, 10) != 0 {
		t.Error("Clamp did not clamp low")
	}
	if Clamp(float32(0.25), 0, 1) != 0.25 {
		t.Error("Clamp changed an in-range value")
	}
}

func TestVec3Lerp_Endpoints(t *testing.T) {
	a := NewVec3(0.1, -2.7, 3.3)
	b := NewVec3(9.9, 0.3, -1.1)

	if a.Lerp(b, 0) != a {
		t.Errorf("Lerp(0) = %+v, want %+v", a.Lerp(b, 0), a)
	}
	if a.Lerp(b, 1) != b {
		t.Errorf("Lerp(1) = %+v, want %+v", a.Lerp(b, 1), b)
	}
}

func TestQuaternionSlerp(t *testing.T) {
	identity := NewQuatIdentity()
	quarter := NewQuatFromAxisAngle(NewVec3(0, 1, 0), K_HALF_PI)
	half := NewQuatFromAxisAngle(NewVec3(0, 1, 0), K_PI/4)

	if got := identity.Slerp(quarter, 0); got != identity {
		t.Errorf("Slerp(0) = %+v, want %+v", got, identity)
	}
	if got := identity.Slerp(quarter, 1); got != quarter {
		t.Errorf("Slerp(1) = %+v, want %+v", got, quarter)
	}
	if got := identity.Slerp(quarter, 0.5); !got.Compare(half, 1e-5) {
		t.Errorf("Slerp(0.5) = %+v, want %+v", got, half)
	}

	// the shorter arc is taken when the inputs are in opposite hemispheres
	got := identity.Slerp(quarter.Negate(), 0.5)
	if !got.Compare(half, 1e-5) {
		t.Errorf("Slerp to negated quarter = %+v, want %+v", got, half)
	}

	// nearly identical inputs use the linear weights
	near := Quaternion{0, 0, 1e-6, 1}
	if got := identity.Slerp(near, 0.5); !IsFinite(got.W) || !got.Compare(identity, 1e-5) {
		t.Errorf("Slerp of near-identical quaternions = %+v", got)
	}

	// unit length is preserved for unit inputs
	if n := identity.Slerp(quarter, 0.3).Normal(); n < 0.9999 || n > 1.0001 {
		t.Errorf("slerped quaternion has length %v", n)
	}
}

func TestQuaternionSlerp_Opposite(t *testing.T) {
	q := NewQuatIdentity()
	got := q.Slerp(Quaternion{0, 0, 0, -1}, 0.5)
	// the negated identity is the same rotation, so the short path stays put
	if !got.Compare(q, 1e-5) {
		t.Errorf("Slerp to negated identity = %+v", got)
	}
}

func TestDegRad(t *testing.T) {
	if got := RadToDeg(DegToRad(90)); got < 89.999 || got > 90.001 {
		t.Errorf("round trip = %v", got)
	}
}
