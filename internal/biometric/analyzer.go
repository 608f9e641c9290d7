package biometric

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"facegate/internal/platform/logger"
)

// Thresholds and weights for the liveness score. The weights sum to 1.0 in
// standard mode; advanced mode can push the raw score above 1.0 before the
// final clamp.
const (
	earThreshold      = 0.2
	mouthThreshold    = 0.7
	faceSizeThreshold = 0.1
	sharpnessFloor    = 50.0
	brightnessLow     = 50.0
	brightnessHigh    = 200.0
	varianceFloor     = 10.0

	weightEyes       = 0.4
	weightFaceSize   = 0.3
	weightSharpness  = 0.2
	weightBrightness = 0.1
	weightMouth      = 0.1
	weightVariance   = 0.1

	// ratioFallback keeps the score computable when the geometry degenerates
	// (coincident reference points).
	ratioFallback = 0.3
)

// Liveness thresholds per security level.
const (
	ThresholdStandard = 0.6
	ThresholdStrict   = 0.7
)

// AnalyzerConfig tunes the liveness verdict.
type AnalyzerConfig struct {
	// LivenessThreshold is the minimum weighted score for a live verdict.
	LivenessThreshold float64
	// Advanced enables the mouth-closure and landmark-variance checks.
	Advanced bool
}

// DefaultAnalyzerConfig returns the standard security level.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{LivenessThreshold: ThresholdStandard}
}

// Analyzer computes the liveness verdict and confidence breakdown for one
// capture. It is stateless and safe for concurrent use.
type Analyzer struct {
	cfg    AnalyzerConfig
	logger *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer builds an Analyzer with the given config.
func NewAnalyzer(cfg AnalyzerConfig, opts ...AnalyzerOption) *Analyzer {
	if cfg.LivenessThreshold == 0 {
		cfg.LivenessThreshold = ThresholdStandard
	}
	a := &Analyzer{cfg: cfg, logger: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores one capture. img may be nil when only landmarks are
// available; quality checks then run against zeroed metrics and fail, which
// is the conservative outcome. advanced overrides the configured mode when
// true.
func (a *Analyzer) Analyze(img image.Image, set LandmarkSet, advanced bool) LivenessResult {
	start := time.Now()
	advanced = advanced || a.cfg.Advanced

	var quality QualityMetrics
	var imgArea float64
	if img != nil {
		quality = ComputeQuality(img)
		b := img.Bounds()
		imgArea = float64(b.Dx() * b.Dy())
	}

	if len(set) == 0 {
		return LivenessResult{
			FaceDetected: false,
			Quality:      quality,
			Elapsed:      time.Since(start),
			AdvancedMode: advanced,
		}
	}

	leftEAR := eyeAspectRatio(pick(set, leftEyeIndices))
	rightEAR := eyeAspectRatio(pick(set, rightEyeIndices))
	avgEAR := (leftEAR + rightEAR) / 2.0
	mouthAR := mouthAspectRatio(pick(set, mouthIndices))
	faceArea := boundingBoxArea(set, imgArea)

	var score float64
	var factors []string

	if avgEAR > earThreshold {
		score += weightEyes
		factors = append(factors, fmt.Sprintf("Eyes open (EAR: %.3f)", avgEAR))
	}
	if faceArea > faceSizeThreshold {
		score += weightFaceSize
		factors = append(factors, fmt.Sprintf("Appropriate face size (%.3f)", faceArea))
	}
	if quality.Sharpness > sharpnessFloor {
		score += weightSharpness
		factors = append(factors, fmt.Sprintf("Good sharpness (%.1f)", quality.Sharpness))
	}
	if quality.Brightness > brightnessLow && quality.Brightness < brightnessHigh {
		score += weightBrightness
		factors = append(factors, fmt.Sprintf("Good lighting (%.1f)", quality.Brightness))
	}

	if advanced {
		if mouthAR < mouthThreshold {
			score += weightMouth
			factors = append(factors, "Natural mouth position")
		}
		if landmarkVariance(set) > varianceFloor {
			score += weightVariance
			factors = append(factors, "Natural facial variation")
		}
	}

	confidence := math.Min(score, 1.0)
	// Eyes-open is a hard gate: a photo with closed eyes can still collect
	// every quality point, so the score alone is not sufficient.
	isLive := score >= a.cfg.LivenessThreshold && avgEAR > earThreshold

	embedding, err := EncodeLandmarks(set)
	if err != nil {
		// Unreachable for non-empty sets; keep the verdict but log it.
		a.logger.Warn("embedding encode failed", "error", err)
	}

	return LivenessResult{
		FaceDetected:     true,
		IsLive:           isLive,
		Confidence:       confidence,
		LandmarksCount:   len(set),
		EyeAspectRatio:   avgEAR,
		MouthAspectRatio: mouthAR,
		FaceArea:         faceArea,
		Quality:          quality,
		Factors:          factors,
		Embedding:        embedding,
		Elapsed:          time.Since(start),
		AdvancedMode:     advanced,
	}
}

// FailedChecks itemizes which liveness gates a result missed, with
// remediation-grade wording for the caller.
func FailedChecks(r LivenessResult) []string {
	var failed []string
	if r.EyeAspectRatio <= earThreshold {
		failed = append(failed, "Eyes appear closed or partially closed")
	}
	if r.FaceArea <= faceSizeThreshold {
		failed = append(failed, "Face too small or distant")
	}
	if r.Quality.Sharpness < sharpnessFloor {
		failed = append(failed, "Image not sharp enough")
	}
	if r.Quality.Brightness < brightnessLow || r.Quality.Brightness > brightnessHigh {
		failed = append(failed, "Poor lighting conditions")
	}
	return failed
}

// eyeAspectRatio implements the multi-point EAR over six eye landmarks:
// (|p1-p5| + |p2-p4| + |p1-p4|) / (3 * |p0-p3|).
func eyeAspectRatio(eye []Landmark) float64 {
	if len(eye) < 6 {
		return ratioFallback
	}
	a := dist(eye[1], eye[5])
	b := dist(eye[2], eye[4])
	c := dist(eye[0], eye[3])
	d := dist(eye[1], eye[4])
	if c == 0 {
		return ratioFallback
	}
	return (a + b + d) / (3.0 * c)
}

// mouthAspectRatio: (|p2-p10| + |p4-p8|) / (2 * |p0-p6|) over the 12-point
// mouth ring.
func mouthAspectRatio(mouth []Landmark) float64 {
	if len(mouth) < 12 {
		return ratioFallback
	}
	a := dist(mouth[2], mouth[10])
	b := dist(mouth[4], mouth[8])
	c := dist(mouth[0], mouth[6])
	if c == 0 {
		return ratioFallback
	}
	return (a + b) / (2.0 * c)
}

// boundingBoxArea returns the landmark bounding box area relative to the
// image area, or the absolute pixel area scaled down when no image is
// available.
func boundingBoxArea(set LandmarkSet, imgArea float64) float64 {
	minX, minY := set[0].X, set[0].Y
	maxX, maxY := set[0].X, set[0].Y
	for _, p := range set {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	box := (maxX - minX) * (maxY - minY)
	if imgArea > 0 {
		return box / imgArea
	}
	// Without pixel dimensions assume a 640x480 frame, the capture default.
	return box / (640.0 * 480.0)
}

// landmarkVariance is the mean of the per-axis coordinate variances, the
// flatness test used by advanced mode.
func landmarkVariance(set LandmarkSet) float64 {
	n := float64(len(set))
	var sumX, sumY float64
	for _, p := range set {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n

	var varX, varY float64
	for _, p := range set {
		varX += (p.X - meanX) * (p.X - meanX)
		varY += (p.Y - meanY) * (p.Y - meanY)
	}
	return (varX/n + varY/n) / 2.0
}

func pick(set LandmarkSet, indices []int) []Landmark {
	out := make([]Landmark, 0, len(indices))
	for _, i := range indices {
		if i < len(set) {
			out = append(out, set[i])
		}
	}
	return out
}

func dist(a, b Landmark) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
