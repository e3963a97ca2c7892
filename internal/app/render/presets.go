package render

import (
	"fmt"
	"time"
)

// Preset is one rung of the encode ladder. Slower rungs trade wall time for
// quality; each rung carries its own deadline.
type Preset struct {
	Name    string
	Speed   string // ffmpeg -preset value
	CRF     int
	Timeout time.Duration
}

var (
	PresetQuality  = Preset{Name: "quality", Speed: "slow", CRF: 18, Timeout: 10 * time.Minute}
	PresetBalanced = Preset{Name: "balanced", Speed: "veryfast", CRF: 23, Timeout: 5 * time.Minute}
	PresetFast     = Preset{Name: "fast", Speed: "ultrafast", CRF: 28, Timeout: 3 * time.Minute}
)

// ladder is ordered from slowest and best to fastest and roughest.
var ladder = []Preset{PresetQuality, PresetBalanced, PresetFast}

// PresetByName resolves a preset by its public name.
func PresetByName(name string) (Preset, error) {
	for _, p := range ladder {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown encode preset %q", name)
}

// nextFaster returns the rung below p, or false when p is already the
// fastest.
func nextFaster(p Preset) (Preset, bool) {
	for i, candidate := range ladder {
		if candidate.Name == p.Name && i+1 < len(ladder) {
			return ladder[i+1], true
		}
	}
	return Preset{}, false
}
