package identify

// Distance component names.
const (
	ComponentArtist          = "artist"
	ComponentAlbum           = "album"
	ComponentTracks          = "tracks"
	ComponentMissingTracks   = "missing_tracks"
	ComponentUnmatchedTracks = "unmatched_tracks"
)

// componentWeights control how much each component contributes to the
// normalized distance. Title similarity dominates; missing/unmatched
// penalties are deliberately light so partial rips still match.
var componentWeights = map[string]float64{
	ComponentArtist:          3.0,
	ComponentAlbum:           5.0,
	ComponentTracks:          3.0,
	ComponentMissingTracks:   1.0,
	ComponentUnmatchedTracks: 1.0,
}

// Distance is a weighted collection of named dissimilarity components,
// each in [0,1]. The zero value is a perfect match.
type Distance struct {
	components map[string]float64
}

// Add records a component value, clamped to [0,1]. Unknown component
// names get weight 1.
func (d *Distance) Add(name string, value float64) {
	if d.components == nil {
		d.components = make(map[string]float64)
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	d.components[name] = value
}

// Component returns the recorded value for a component, 0 if absent.
func (d Distance) Component(name string) float64 {
	return d.components[name]
}

// NormalizedDistance returns the weighted mean of all recorded
// components, in [0,1]. An empty distance is 0 (perfect match).
func (d Distance) NormalizedDistance() float64 {
	return d.normalized(nil)
}

// DistanceExcluding returns the normalized distance with the named
// components left out. Used when rescanning files already resident in
// the library, where known gaps should not count against the match.
func (d Distance) DistanceExcluding(names ...string) float64 {
	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}
	return d.normalized(excluded)
}

func (d Distance) normalized(excluded map[string]bool) float64 {
	var sum, weights float64
	for name, value := range d.components {
		if excluded[name] {
			continue
		}
		w, ok := componentWeights[name]
		if !ok {
			w = 1.0
		}
		sum += w * value
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}
