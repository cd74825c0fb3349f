package render

import "math/rand/v2"

// FeaturePointCount is the number of mock feature points drawn.
const FeaturePointCount = 20

const featurePointRadius = 2.0

// FeaturePoints builds the feature visualisation: a placeholder background
// with FeaturePointCount dots at uniformly random positions drawn from rng.
func FeaturePoints(size Size, rng *rand.Rand) []Command {
	w, h := float64(size.Width), float64(size.Height)

	cmds := make([]Command, 0, 2+FeaturePointCount)
	cmds = append(cmds, clearCmd(), fillRect(Rect{W: w, H: h}, PlaceholderColor))
	for i := 0; i < FeaturePointCount; i++ {
		cmds = append(cmds, fillCircle(rng.Float64()*w, rng.Float64()*h, featurePointRadius, FeatureColor))
	}
	return cmds
}
