package domain

import "math"

// Rothfusz regression coefficients (NWS Technical Attachment SR 90-23).
const (
	c1 = -42.379
	c2 = 2.04901523
	c3 = 10.14333127
	c4 = -0.22475541
	c5 = -0.00683783
	c6 = -0.05481717
	c7 = 0.00122874
	c8 = 0.00085282
	c9 = -0.00000199
)

// DefaultRegressionFloorF is the temperature below which the regression does not apply.
const DefaultRegressionFloorF = 80.0

// HeatIndexF returns the meteorological heat index in °F. Below floorF the
// air temperature is returned unchanged.
func HeatIndexF(tempF, rh, floorF float64) float64 {
	if tempF < floorF {
		return tempF
	}
	return rothfusz(tempF, rh)
}

func rothfusz(t, rh float64) float64 {
	hi := c1 + c2*t + c3*rh + c4*t*rh +
		c5*t*t + c6*rh*rh + c7*t*t*rh +
		c8*t*rh*rh + c9*t*t*rh*rh

	switch {
	case rh < 13 && t >= 80 && t <= 112:
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
	case rh > 85 && t >= 80 && t <= 87:
		hi += ((rh - 85) / 10) * ((87 - t) / 5)
	}
	return hi
}

// FahrenheitToCelsius converts for display.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
