package seed

import (
	"math/rand"
	"strconv"
)

// Numeric ranges for the synthetic telemetry metrics.
var (
	batteryRange        = [2]int{15, 100}
	cpuTempRange        = [2]int{45, 85}
	memoryUsageRange    = [2]int{20, 95}
	networkLatencyRange = [2]int{1, 150}
	vibrationRange      = [2]int{0, 25}
	safetyScoreRange    = [2]int{60, 100}
	obstacleDistRange   = [2]int{0, 500}
	speedRange          = [2]int{0, 180}
	confidenceRange     = [2]int{70, 99}
	signalStrengthRange = [2]int{-90, -30}
)

// Zone types with their numeric risk ranges.
var zoneTypes = []string{"safe_zone", "caution_zone", "restricted_zone"}

var zoneRiskRanges = map[string][2]int{
	"safe_zone":       {0, 20},
	"caution_zone":    {20, 60},
	"restricted_zone": {60, 100},
}

// Probabilities for the rarer per-record labels.
const (
	pEvent      = 0.10
	pVision     = 0.06
	pLidarAlert = 0.05
)

func randIn(rng *rand.Rand, r [2]int) string {
	return strconv.Itoa(r[0] + rng.Intn(r[1]-r[0]+1))
}

// SprinkleTelemetry adds synthetic numeric metrics to labels. The core
// performance metrics are always present, the rest appear with fixed
// probabilities. labels is modified in place and returned.
func SprinkleTelemetry(labels map[string]string, rng *rand.Rand) map[string]string {
	labels["battery_pct"] = randIn(rng, batteryRange)
	labels["cpu_temp_c"] = randIn(rng, cpuTempRange)
	labels["memory_pct"] = randIn(rng, memoryUsageRange)
	labels["net_latency_ms"] = randIn(rng, networkLatencyRange)

	if rng.Float64() < 0.7 {
		labels["vibration_level"] = randIn(rng, vibrationRange)
	}
	if rng.Float64() < 0.8 {
		labels["safety_score"] = randIn(rng, safetyScoreRange)
	}
	if rng.Float64() < 0.6 {
		labels["obstacle_dist_cm"] = randIn(rng, obstacleDistRange)
	}
	if rng.Float64() < 0.9 {
		labels["speed_scaled"] = randIn(rng, speedRange)
	}
	if rng.Float64() < 0.75 {
		labels["ai_confidence"] = randIn(rng, confidenceRange)
	}
	if rng.Float64() < 0.85 {
		labels["wifi_dbm"] = randIn(rng, signalStrengthRange)
	}

	if rng.Float64() < 0.4 {
		zone := zoneTypes[rng.Intn(len(zoneTypes))]
		labels["zone_risk"] = randIn(rng, zoneRiskRanges[zone])
		labels["zone_type"] = zone
	}

	if rng.Float64() < pEvent {
		labels["event_severity"] = randIn(rng, [2]int{1, 10})
	}
	if rng.Float64() < pVision {
		labels["vision_confidence"] = randIn(rng, [2]int{50, 95})
	}
	if rng.Float64() < pLidarAlert {
		labels["lidar_quality"] = randIn(rng, [2]int{70, 100})
	}

	return labels
}

// baseLabels returns the labels common to every binary record.
func baseLabels(topic, topicType string, ctx SessionContext, extra map[string]string) map[string]string {
	labels := map[string]string{
		"topic":         topic,
		"type":          topicType,
		"serialization": "cdr",
	}
	for k, v := range ctx.Labels() {
		labels[k] = v
	}
	for k, v := range extra {
		if v != "" {
			labels[k] = v
		}
	}
	return labels
}
