// Package biometric turns captured facial landmarks into a liveness verdict
// and a fixed-length embedding suitable for proof generation. Landmark
// detection itself is an external collaborator behind the Detector interface.
package biometric

import "time"

// Landmark is a single facial mesh point in pixel coordinates. Z is optional
// depth information; detectors that only produce 2D points leave it zero.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// LandmarkSet is the ordered mesh for one capture. It is owned by a single
// request and never mutated after creation.
type LandmarkSet []Landmark

// EmbeddingSize is the fixed length of every embedding. Downstream hashing
// depends on this never varying.
const EmbeddingSize = 256

// Embedding is a fixed-length vector with every element in [0,255].
type Embedding []int

// QualityMetrics carries raw image statistics used by the liveness score.
// Sharpness is a Laplacian-variance proxy, brightness the grayscale mean
// (0-255), contrast the grayscale standard deviation.
type QualityMetrics struct {
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

// LivenessResult is produced once per capture and consumed by the proof
// engine. It is not persisted.
type LivenessResult struct {
	FaceDetected     bool           `json:"face_detected"`
	IsLive           bool           `json:"liveness_detected"`
	Confidence       float64        `json:"confidence"`
	LandmarksCount   int            `json:"landmarks_count"`
	EyeAspectRatio   float64        `json:"eye_aspect_ratio"`
	MouthAspectRatio float64        `json:"mouth_aspect_ratio"`
	FaceArea         float64        `json:"face_area"`
	Quality          QualityMetrics `json:"quality_metrics"`
	Factors          []string       `json:"confidence_factors"`
	Embedding        Embedding      `json:"-"`
	Elapsed          time.Duration  `json:"-"`
	AdvancedMode     bool           `json:"advanced_mode"`
}

// Mesh landmark indices for the regions the analyzer measures. These follow
// the 468-point face mesh convention; only the first six points of each eye
// ring are used for the aspect ratio.
var (
	leftEyeIndices  = []int{33, 7, 163, 144, 145, 153}
	rightEyeIndices = []int{362, 382, 381, 380, 374, 373}
	mouthIndices    = []int{61, 84, 17, 314, 405, 320, 307, 375, 321, 308, 324, 318}
)
