package seed

import (
	"encoding/json"
	"strings"
)

// Row is one flattened JSON record. Rows from the same entry are
// batched into a single JSON array payload.
type Row map[string]any

// FlattenRow converts an interesting structured message into a JSON
// row stamped with ts. It returns nil for topics that are not
// persisted as JSON or payloads that fail to decode.
func FlattenRow(topic, topicType string, payload []byte, tsNS int64, allowedCameraInfoTopics []string) Row {
	switch {
	case strings.HasSuffix(topicType, "sensor_msgs/msg/CameraInfo"):
		if !containsString(allowedCameraInfoTopics, topic) {
			return nil
		}
		m, err := decodeCameraInfo(payload)
		if err != nil {
			return nil
		}
		return Row{
			"ts_ns":            tsNS,
			"frame_id":         m.Header.FrameID,
			"width":            m.Width,
			"height":           m.Height,
			"distortion_model": m.DistortionModel,
		}

	case strings.HasSuffix(topicType, "sensor_msgs/msg/Imu"):
		m, err := decodeImu(payload)
		if err != nil {
			return nil
		}
		return Row{
			"ts_ns":    tsNS,
			"frame_id": m.Header.FrameID,
			"orientation": map[string]float64{
				"x": m.Orientation.X, "y": m.Orientation.Y,
				"z": m.Orientation.Z, "w": m.Orientation.W,
			},
			"angular_velocity": map[string]float64{
				"x": m.AngularVelocity.X, "y": m.AngularVelocity.Y, "z": m.AngularVelocity.Z,
			},
			"linear_acceleration": map[string]float64{
				"x": m.LinearAcceleration.X, "y": m.LinearAcceleration.Y, "z": m.LinearAcceleration.Z,
			},
		}

	case strings.HasSuffix(topicType, "sensor_msgs/msg/MagneticField"):
		m, err := decodeMagneticField(payload)
		if err != nil {
			return nil
		}
		return Row{
			"ts_ns":    tsNS,
			"frame_id": m.Header.FrameID,
			"magnetic_field": map[string]float64{
				"x": m.Field.X, "y": m.Field.Y, "z": m.Field.Z,
			},
		}

	case strings.HasSuffix(topicType, "sensor_msgs/msg/FluidPressure"):
		m, err := decodeScalar(payload)
		if err != nil {
			return nil
		}
		return Row{
			"ts_ns":    tsNS,
			"frame_id": m.Header.FrameID,
			"pressure": m.Value,
			"variance": m.Variance,
		}

	case strings.HasSuffix(topicType, "sensor_msgs/msg/Temperature"):
		m, err := decodeScalar(payload)
		if err != nil {
			return nil
		}
		return Row{
			"ts_ns":       tsNS,
			"frame_id":    m.Header.FrameID,
			"temperature": m.Value,
			"variance":    m.Variance,
		}
	}
	return nil
}

// EncodeRows marshals a batch of rows as a compact JSON array.
func EncodeRows(rows []Row) ([]byte, error) {
	return json.Marshal(rows)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
