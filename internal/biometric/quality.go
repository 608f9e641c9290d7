package biometric

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
)

// ComputeQuality derives sharpness, brightness, and contrast from the pixel
// buffer. Sharpness is the variance of a 4-neighbour Laplacian, the standard
// edge-energy proxy; brightness and contrast are the grayscale mean and
// standard deviation.
func ComputeQuality(img image.Image) QualityMetrics {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return QualityMetrics{Brightness: 128}
	}

	gray := make([]float64, w*h)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Luma weights on 16-bit channels scaled back to 0-255.
			v := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			gray[y*w+x] = v
			sum += v
		}
	}
	n := float64(w * h)
	mean := sum / n

	var varSum float64
	for _, v := range gray {
		d := v - mean
		varSum += d * d
	}
	contrast := math.Sqrt(varSum / n)

	sharpness := laplacianVariance(gray, w, h)

	return QualityMetrics{
		Sharpness:  sharpness,
		Brightness: mean,
		Contrast:   contrast,
	}
}

// laplacianVariance applies the 4-neighbour Laplacian kernel over the
// interior pixels and returns the variance of the response.
func laplacianVariance(gray []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	count := 0
	var sum float64
	lap := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := 4*gray[y*w+x] - gray[(y-1)*w+x] - gray[(y+1)*w+x] - gray[y*w+x-1] - gray[y*w+x+1]
			lap = append(lap, v)
			sum += v
			count++
		}
	}
	mean := sum / float64(count)

	var varSum float64
	for _, v := range lap {
		d := v - mean
		varSum += d * d
	}
	return varSum / float64(count)
}
