package biometric

import (
	"context"
	"image"
	"math"

	dErrors "facegate/pkg/domain-errors"
)

// Detector extracts a facial landmark mesh from an image. Real detection
// runs in an external model service; the core only depends on this contract.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (LandmarkSet, error)
}

// MeshPoints is the landmark count the stub emits, matching the 468-point
// face mesh convention.
const MeshPoints = 468

// StubDetector is a deterministic development stand-in. It synthesizes a
// neutral open-eyed face mesh sized to the image so the rest of the pipeline
// can run end to end without a model backend. It never reports a face for
// images below a minimum size, which approximates "no face detected".
type StubDetector struct {
	// MinDimension is the smallest width/height that still yields a mesh.
	MinDimension int
	// ClosedEyes flattens the eye rings so the liveness gate rejects the
	// capture; used to exercise rejection paths end to end.
	ClosedEyes bool
}

// NewStubDetector returns the default stub.
func NewStubDetector() *StubDetector {
	return &StubDetector{MinDimension: 64}
}

// Detect synthesizes the mesh. The layout is a centered face oval occupying
// ~60% of the frame with eye and mouth rings placed at their conventional
// indices.
func (d *StubDetector) Detect(_ context.Context, img image.Image) (LandmarkSet, error) {
	if img == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no image")
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	min := d.MinDimension
	if min == 0 {
		min = 64
	}
	if b.Dx() < min || b.Dy() < min {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no face detected")
	}

	cx, cy := w/2, h/2
	rx, ry := w*0.3, h*0.35

	set := make(LandmarkSet, MeshPoints)
	for i := range set {
		// Spiral fill keeps coordinates varied and deterministic.
		t := float64(i) / MeshPoints
		angle := t * 12 * math.Pi
		set[i] = Landmark{
			X: cx + rx*t*math.Cos(angle),
			Y: cy + ry*t*math.Sin(angle),
		}
	}

	eyeHalfH := ry * 0.08
	if d.ClosedEyes {
		eyeHalfH = ry * 0.002
	}
	placeEye(set, leftEyeIndices, cx-rx*0.45, cy-ry*0.25, rx*0.18, eyeHalfH)
	placeEye(set, rightEyeIndices, cx+rx*0.45, cy-ry*0.25, rx*0.18, eyeHalfH)
	placeMouth(set, cx, cy+ry*0.45, rx*0.3, ry*0.06)

	return set, nil
}

// placeEye lays the six-point eye ring so the aspect ratio reads as open.
func placeEye(set LandmarkSet, indices []int, cx, cy, halfW, halfH float64) {
	pts := []Landmark{
		{X: cx - halfW, Y: cy},          // outer corner
		{X: cx - halfW/2, Y: cy - halfH}, // upper
		{X: cx + halfW/2, Y: cy - halfH}, // upper
		{X: cx + halfW, Y: cy},          // inner corner
		{X: cx + halfW/2, Y: cy + halfH}, // lower
		{X: cx - halfW/2, Y: cy + halfH}, // lower
	}
	for i, idx := range indices {
		if idx < len(set) {
			set[idx] = pts[i]
		}
	}
}

// placeMouth lays the twelve-point mouth ring in a closed position.
func placeMouth(set LandmarkSet, cx, cy, halfW, halfH float64) {
	for i, idx := range mouthIndices {
		if idx >= len(set) {
			continue
		}
		angle := float64(i) / float64(len(mouthIndices)) * 2 * math.Pi
		set[idx] = Landmark{
			X: cx + halfW*math.Cos(angle),
			Y: cy + halfH*math.Sin(angle),
		}
	}
}
