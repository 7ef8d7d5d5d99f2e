// Package sustainability holds the scoring arithmetic shared by the cart-impact
// projection and checkout, so a projected reward always equals the granted one.
package sustainability

import (
	"math"

	"github.com/google/uuid"
)

// PointsPerEcoLine is the green-point reward for each eco-friendly cart line.
const PointsPerEcoLine = 10

// Line is one cart line as scoring sees it. Quantity is not used for points.
type Line struct {
	Quantity        int
	CarbonFootprint float64
	PlasticContent  float64
	EcoFriendly     bool
}

type Impact struct {
	TotalCO2             float64 `json:"totalCO2"`
	TotalPlastic         float64 `json:"totalPlastic"`
	EcoFriendlyItems     int     `json:"ecoFriendlyItems"`
	TotalItems           int     `json:"totalItems"`
	PotentialGreenPoints int     `json:"potentialGreenPoints"`
	EcoPercentage        int     `json:"ecoPercentage"`
}

// CartImpact projects what the given lines would do if checked out now.
func CartImpact(lines []Line) Impact {
	var co2, plastic float64
	eco := 0
	for _, l := range lines {
		co2 += nonNegative(l.CarbonFootprint) * float64(l.Quantity)
		plastic += nonNegative(l.PlasticContent) * float64(l.Quantity)
		if l.EcoFriendly {
			eco++
		}
	}

	impact := Impact{
		TotalCO2:             RoundTenth(co2),
		TotalPlastic:         RoundWhole(plastic),
		EcoFriendlyItems:     eco,
		TotalItems:           len(lines),
		PotentialGreenPoints: Points(eco),
	}
	if len(lines) > 0 {
		impact.EcoPercentage = int(RoundWhole(float64(eco) / float64(len(lines)) * 100))
	}
	return impact
}

// Reward is the credit granted at checkout: points for every eco-friendly line, and
// the CO2 and plastic of those eco-friendly lines weighted by quantity.
type Reward struct {
	GreenPoints  int
	CO2Saved     float64
	PlasticSaved float64
}

func ComputeReward(lines []Line) Reward {
	var r Reward
	eco := 0
	for _, l := range lines {
		if !l.EcoFriendly {
			continue
		}
		eco++
		r.CO2Saved += nonNegative(l.CarbonFootprint) * float64(l.Quantity)
		r.PlasticSaved += nonNegative(l.PlasticContent) * float64(l.Quantity)
	}
	r.GreenPoints = Points(eco)
	return r
}

func Points(ecoLines int) int {
	return ecoLines * PointsPerEcoLine
}

// RoundTenth rounds half up to one decimal place: 12.34 -> 12.3, 12.36 -> 12.4.
func RoundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// RoundWhole rounds half up to an integer value: 45.5 -> 46.
func RoundWhole(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Rank returns the 1-based position of id in an already ordered ranking,
// or 0 if id is not present.
func Rank(ordered []uuid.UUID, id uuid.UUID) int {
	for i, u := range ordered {
		if u == id {
			return i + 1
		}
	}
	return 0
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
