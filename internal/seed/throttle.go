package seed

// ThrottleRatios computes, per topic, how many messages to skip so
// the replayed stream approaches the target frequency. A ratio of N
// means keep one message out of every N.
func ThrottleRatios(counts map[string]int, topicTypes map[string]string, clipSeconds float64, targetImageHz, targetPointCloudHz float64) map[string]int {
	ratios := make(map[string]int, len(counts))
	if clipSeconds <= 0 {
		for topic := range counts {
			ratios[topic] = 1
		}
		return ratios
	}

	for topic, count := range counts {
		originalHz := float64(count) / clipSeconds

		target := targetImageHz
		if isPointCloudType(topicTypes[topic]) {
			target = targetPointCloudHz
		}

		ratio := 1
		if target > 0 && originalHz > target {
			ratio = int(originalHz / target)
			if ratio < 1 {
				ratio = 1
			}
		}
		ratios[topic] = ratio
	}
	return ratios
}

// throttle tracks per-topic message counters and applies keep-1-in-N
// throttling.
type throttle struct {
	ratios   map[string]int
	counters map[string]int
}

func newThrottle(ratios map[string]int) *throttle {
	return &throttle{ratios: ratios, counters: make(map[string]int)}
}

// Keep reports whether the next message on topic should be persisted.
func (t *throttle) Keep(topic string) bool {
	t.counters[topic]++
	ratio := t.ratios[topic]
	if ratio <= 1 {
		return true
	}
	return t.counters[topic]%ratio == 0
}
