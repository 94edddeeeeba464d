package bluetooth

import "math"

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}

// Proximity buckets a distance estimate for display.
func Proximity(meters float64) string {
	switch {
	case meters < 1:
		return "immediate"
	case meters < 5:
		return "near"
	case meters < 15:
		return "far"
	default:
		return "edge"
	}
}
