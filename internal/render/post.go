package render

import "math"

// PostPipeline groups post stages; all are optional.
type PostPipeline struct {
	ToneMap func([]Color, *Uniforms)
	Limiter func([]Color, *Uniforms)
}

// DefaultPost tone maps and then limits current.
func DefaultPost() PostPipeline {
	return PostPipeline{ToneMap: FilmicToneMap, Limiter: DefaultLimiter}
}

func (p PostPipeline) apply(buf []Color, u *Uniforms) {
	if p.ToneMap != nil {
		p.ToneMap(buf, u)
	}
	if p.Limiter != nil {
		p.Limiter(buf, u)
	}
}

// FilmicToneMap applies an ACES style curve after exposure, then output gamma.
// Params: "ExposureEV" (default 0), "OutputGamma" (default 2.2).
func FilmicToneMap(buf []Color, u *Uniforms) {
	exposure := float32(math.Pow(2, u.param("ExposureEV", 0)))
	gamma := u.param("OutputGamma", 2.2)
	if gamma <= 0 {
		gamma = 2.2
	}
	inv := 1 / gamma

	curve := func(x float32) float32 {
		x = aces(x * exposure)
		if gamma != 1 {
			x = float32(math.Pow(float64(x), inv))
		}
		return clamp01(x)
	}
	for i := range buf {
		buf[i] = Color{curve(buf[i].R), curve(buf[i].G), curve(buf[i].B)}
	}
}

// Narkowicz 2015 fit.
func aces(x float32) float32 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}

type limits struct {
	whiteCap float32 // max R+G+B per voxel
	chanmA   float32 // current per channel at full scale
	budgetmA float64 // 0 disables the global stage
	knee     float64 // fraction of budget where soft scaling starts
}

func limitsFrom(u *Uniforms) limits {
	l := limits{whiteCap: 3, chanmA: 20, knee: 0.9}
	if v := u.param("WhiteCap", 0); v > 0 {
		l.whiteCap = float32(v)
	}
	if v := u.param("LEDChan_mA", 0); v > 0 {
		l.chanmA = float32(v)
	}
	if v := u.param("Budget_mA", 0); v > 0 {
		l.budgetmA = v
	}
	if v := u.param("LimiterKnee", 0); v > 0 && v < 1 {
		l.knee = v
	}
	return l
}

// DefaultLimiter caps each voxel's channel sum at "WhiteCap" and then keeps
// the estimated frame current under "Budget_mA", compressing smoothly above
// "LimiterKnee"*budget. "PreviewBypass" > 0.5 skips it.
func DefaultLimiter(buf []Color, u *Uniforms) {
	if u == nil || u.param("PreviewBypass", 0) > 0.5 {
		return
	}
	l := limitsFrom(u)

	var total float64
	for i := range buf {
		s := buf[i].R + buf[i].G + buf[i].B
		if s > l.whiteCap {
			buf[i] = scaled(buf[i], l.whiteCap/s)
			s = l.whiteCap
		}
		total += float64(s * l.chanmA)
	}
	if l.budgetmA <= 0 || total <= 0 {
		return
	}

	ratio := total / l.budgetmA
	if ratio <= l.knee {
		return
	}
	// compress the part above the knee so the result approaches but never
	// exceeds the budget
	over := (ratio - l.knee) / (1 - l.knee)
	target := l.knee + (1-l.knee)*(1-math.Exp(-over))
	s := float32(target / ratio)
	for i := range buf {
		buf[i] = scaled(buf[i], s)
	}
}

func scaled(c Color, s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
