package services

import "math"

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
