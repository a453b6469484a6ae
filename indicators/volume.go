package indicators

// VolumeAverage computes the simple mean of the last period volumes.
func VolumeAverage(volumes []float64, period int) (float64, bool) {
	if period <= 0 || len(volumes) < period {
		return 0, false
	}

	sum := 0.0
	for _, v := range volumes[len(volumes)-period:] {
		sum += v
	}
	return sum / float64(period), true
}
