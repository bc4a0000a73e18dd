package app

import (
	"github.com/coreman2200/scenereel/internal/render"
	"github.com/coreman2200/scenereel/internal/render/shaders/height"
	"github.com/coreman2200/scenereel/internal/render/shaders/points"
)

func registerDefaultShaders(reg *render.Registry) {
	reg.Register(points.New("points"))
	reg.Register(height.New("height"))
}

func applyPostDefaults(eng *render.Engine, budgetmA, whiteCap float64) {
	for k, v := range map[string]float64{
		"Budget_mA":   budgetmA,
		"LEDChan_mA":  20,
		"LimiterKnee": 0.9,
		"WhiteCap":    whiteCap,
		"ExposureEV":  0,
		"OutputGamma": 2.2,
	} {
		eng.SetParam(k, v)
	}
}
