package biometric

import (
	dErrors "facegate/pkg/domain-errors"
)

// neutralValue fills the embedding when the capture is degenerate (all
// sampled coordinates identical); dividing by the zero range would otherwise
// poison the vector.
const neutralValue = 128

// EncodeLandmarks derives the fixed-length embedding from a landmark set.
// Every other landmark is sampled, x/y coordinates flattened, min-max
// normalized into [0,255], and the vector zero-padded to EmbeddingSize.
// The same landmark set always produces the same embedding.
func EncodeLandmarks(set LandmarkSet) (Embedding, error) {
	if len(set) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no landmarks")
	}

	raw := make([]float64, 0, EmbeddingSize)
	for i := 0; i < len(set) && len(raw) < EmbeddingSize; i += 2 {
		raw = append(raw, set[i].X)
		if len(raw) < EmbeddingSize {
			raw = append(raw, set[i].Y)
		}
	}

	minV, maxV := raw[0], raw[0]
	for _, v := range raw {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	out := make(Embedding, EmbeddingSize)
	if maxV == minV {
		for i := range out {
			out[i] = neutralValue
		}
		return out, nil
	}

	scale := maxV - minV
	for i, v := range raw {
		n := int((v - minV) / scale * 255)
		if n > 255 {
			n = 255
		}
		if n < 0 {
			n = 0
		}
		out[i] = n
	}
	// Positions past the sampled values stay zero: deterministic padding.
	return out, nil
}
