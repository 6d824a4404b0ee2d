package analysis

import (
	"fmt"

	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
)

// Band is an equalizer frequency band in Hz, low inclusive, high exclusive.
type Band struct {
	LowHz  int `json:"lowHz"`
	HighHz int `json:"highHz"`
}

// Bands are the equalizer bands every preset applies its gains to.
var Bands = []Band{
	{0, 250}, {250, 500}, {500, 2000}, {2000, 4000}, {4000, 6000}, {6000, 8000},
}

// Preset is a named set of per-band gains in dB.
type Preset struct {
	Mode    evaluation.EQMode `json:"mode"`
	GainsDB []float64         `json:"gainsDb"`
}

var presetGains = map[evaluation.EQMode][]float64{
	evaluation.EQNone:    {0, 0, 0, 0, 0, 0},
	evaluation.EQRock:    {2, 3, 4, 3, 2, 1},
	evaluation.EQPop:     {1, 2, 3, 3, 2, 1},
	evaluation.EQJazz:    {0, 1, 2, 2, 1, 0},
	evaluation.EQClassic: {1, 1, 0, -1, -2, -3},
}

// Presets returns every preset in display order.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetGains))
	for _, mode := range evaluation.AllEQModes() {
		p, _ := PresetFor(mode)
		out = append(out, p)
	}
	return out
}

// PresetFor returns the preset for mode.
func PresetFor(mode evaluation.EQMode) (Preset, error) {
	gains, ok := presetGains[mode]
	if !ok {
		return Preset{}, fmt.Errorf("unknown EQ mode %q", mode)
	}
	return Preset{Mode: mode, GainsDB: append([]float64(nil), gains...)}, nil
}
