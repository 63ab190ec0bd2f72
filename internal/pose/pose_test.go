package pose

import (
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/circular-marker-ar/internal/detection"
)

func TestComputeCameraParamExactConics(t *testing.T) {
	zHint := r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}
	tests := []struct {
		name      string
		normal    r3.Vector
		center    r3.Vector
		placement detection.Placement
	}{
		{"default placement on axis", r3.Vector{X: 0.5, Y: 0.2, Z: -1}, r3.Vector{Z: 300}, detection.PlacementDefault},
		{"flipped placement on axis", r3.Vector{X: -0.5, Y: 0.2, Z: -1}, r3.Vector{Z: 300}, detection.PlacementFlipped},
		{"default placement off axis", r3.Vector{X: 0.4, Y: -0.3, Z: -1}, r3.Vector{X: 20, Y: -10, Z: 400}, detection.PlacementDefault},
		{"flipped placement off axis", r3.Vector{X: -0.6, Y: 0.1, Z: -1}, r3.Vector{X: -15, Y: 25, Z: 350}, detection.PlacementFlipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(tt.normal, zHint, tt.center, 8)

			got, err := ComputeCameraParam(s.marker(tt.placement))
			require.NoError(t, err)

			assert.Less(t, frobenius(got.R, s.expected.R), 1e-6)
			assert.InDelta(t, 0, got.T.Sub(s.expected.T).Norm(), 1e-6*s.expected.T.Norm())
			assert.NoError(t, got.Validate())
		})
	}
}

func TestComputeCameraParamWrongPlacement(t *testing.T) {
	// The other branch is a valid pose too, just not the true one.
	s := newScene(r3.Vector{X: 0.3, Y: 0.1, Z: -1}, r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}, r3.Vector{Z: 300}, 8)

	right, err := ComputeCameraParam(s.marker(detection.PlacementDefault))
	require.NoError(t, err)
	wrong, err := ComputeCameraParam(s.marker(detection.PlacementFlipped))
	require.NoError(t, err)

	assert.Less(t, frobenius(right.R, s.expected.R), 1e-6)
	assert.Greater(t, frobenius(wrong.R, s.expected.R), 0.5)
	assert.NoError(t, wrong.Validate())
}

func TestComputeCameraParamFromPixels(t *testing.T) {
	in := NewIntrinsics(DefaultFocal, DefaultWidth, DefaultHeight)
	zHint := r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}

	tests := []struct {
		name      string
		normal    r3.Vector
		center    r3.Vector
		placement detection.Placement
	}{
		{"default placement", r3.Vector{X: 0.5, Y: 0.2, Z: -1}, r3.Vector{Z: 300}, detection.PlacementDefault},
		{"flipped placement", r3.Vector{X: -0.4, Y: 0.3, Z: -1}, r3.Vector{X: 10, Y: -20, Z: 350}, detection.PlacementFlipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(tt.normal, zHint, tt.center, 8)

			var contours []detection.Contour
			for _, c := range []struct {
				center r3.Vector
				radius float64
			}{{s.outerCenter, s.radiusOuter}, {s.innerCenter, s.radiusInner}} {
				var contour detection.Contour
				for _, p := range circlePoints(c.center, s.normal, s.axis, c.radius, 300) {
					px, ok := in.Project(p)
					require.True(t, ok)
					contour = append(contour, image.Point{X: int(math.Round(px.X)), Y: int(math.Round(px.Y))})
				}
				contours = append(contours, contour)
			}

			ellipses, found := detection.NewEllipseDetector(detection.DefaultDetectorConfig()).Detect(contours)
			require.True(t, found)

			cfg := detection.DefaultPairingConfig()
			cfg.Placement = tt.placement
			markers, found := detection.NewMarkerPairing(cfg, in.Matrix()).Detect(ellipses)
			require.True(t, found)
			require.Len(t, markers, 1)

			got, err := ComputeCameraParam(markers[0])
			require.NoError(t, err)

			assert.Less(t, frobenius(got.R, s.expected.R), 0.05)
			assert.Less(t, got.T.Sub(s.expected.T).Norm(), 0.01*s.expected.T.Norm())

			// Perspective moves the ellipse centre a few pixels off the
			// projected circle centre.
			origin, ok := in.ProjectEye(got.T)
			require.True(t, ok)
			assert.InDelta(t, markers[0].OuterImage.Center.X, origin.X, 4.0)
			assert.InDelta(t, markers[0].OuterImage.Center.Y, origin.Y, 4.0)
		})
	}
}

func TestComputeCameraParamDegenerate(t *testing.T) {
	s := newScene(r3.Vector{X: 0.5, Y: 0.2, Z: -1}, r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}, r3.Vector{Z: 300}, 8)
	valid := s.marker(detection.PlacementDefault)

	tests := []struct {
		name     string
		mutate   func(m *detection.Marker)
		expected error
	}{
		{
			name: "circular normalized conic",
			mutate: func(m *detection.Marker) {
				m.Outer.Conic = detection.Conic{-1, 0, -1, 0, 0, -1}.Normalized()
			},
			expected: ErrDegeneratePose,
		},
		{
			name: "singular conic",
			mutate: func(m *detection.Marker) {
				m.Outer.Conic = detection.Conic{1, 0, 0, 0, 0, 0}
			},
			expected: ErrDegeneratePose,
		},
		{
			name: "concentric circles",
			mutate: func(m *detection.Marker) {
				m.Inner = newScene(r3.Vector{X: 0.5, Y: 0.2, Z: -1}, r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}, r3.Vector{Z: 300}, 0).
					marker(detection.PlacementDefault).Inner
			},
			expected: ErrDegeneratePose,
		},
		{
			name:     "invalid placement",
			mutate:   func(m *detection.Marker) { m.Placement = 2 },
			expected: ErrInvalidPlacement,
		},
		{
			name:     "zero radius",
			mutate:   func(m *detection.Marker) { m.RadiusOuter = 0 },
			expected: ErrInvalidRadius,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)

			got, err := ComputeCameraParam(m)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, CameraPose{}, got)
		})
	}
}

func TestModelView(t *testing.T) {
	p := CameraPose{
		R: [3][3]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
		},
		T: r3.Vector{X: 10, Y: 11, Z: 12},
	}

	expected := [16]float64{
		1, 4, 7, 0,
		2, 5, 8, 0,
		3, 6, 9, 0,
		10, 11, 12, 1,
	}
	assert.Equal(t, expected, p.ModelView())
}

func TestApplyMatchesModelView(t *testing.T) {
	s := newScene(r3.Vector{X: 0.4, Y: -0.3, Z: -1}, r3.Vector{X: 0.1, Y: 0.9, Z: 0.2}, r3.Vector{X: 20, Y: -10, Z: 400}, 8)
	p := s.expected
	m := p.ModelView()

	v := r3.Vector{X: 3, Y: -4, Z: 5}
	got := p.Apply(v)
	assert.InDelta(t, m[0]*v.X+m[4]*v.Y+m[8]*v.Z+m[12], got.X, 1e-9)
	assert.InDelta(t, m[1]*v.X+m[5]*v.Y+m[9]*v.Z+m[13], got.Y, 1e-9)
	assert.InDelta(t, m[2]*v.X+m[6]*v.Y+m[10]*v.Z+m[14], got.Z, 1e-9)
}

func TestValidate(t *testing.T) {
	identity := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	tests := []struct {
		name    string
		pose    CameraPose
		wantErr bool
	}{
		{"identity", CameraPose{R: identity}, false},
		{"rotation", CameraPose{R: [3][3]float64{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}, T: r3.Vector{Z: -5}}, false},
		{"reflection", CameraPose{R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}}}, true},
		{"scaled", CameraPose{R: [3][3]float64{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}}}, true},
		{"nan rotation", CameraPose{R: [3][3]float64{{math.NaN(), 0, 0}, {0, 1, 0}, {0, 0, 1}}}, true},
		{"infinite translation", CameraPose{R: identity, T: r3.Vector{X: math.Inf(1)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pose.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDegeneratePose)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
