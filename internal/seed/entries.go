package seed

import "strings"

// Fixed entry names for the binary streams.
const (
	ImageEntry      = "image"
	PointCloudEntry = "point_cloud"
)

// Content types used when writing records.
const (
	ContentTypeJSON  = "application/json"
	ContentTypeOctet = "application/octet-stream"
	ContentTypeJPEG  = "image/jpeg"
	ContentTypePNG   = "image/png"
)

// jsonEntryNames maps well-known topics to short entry names.
var jsonEntryNames = map[string]string{
	"/rsense/color/camera_info_restamped": "camera_info",
	"/vectornav/Mag_restamped":            "magnetic_field",
	"/vectornav/Pres_restamped":           "pressure",
	"/vectornav/Temp_restamped":           "temperature",
	"/vectornav/IMU_restamped":            "imu",
}

// JSONEntryName returns the ReductStore entry name for a topic's JSON
// rows. Unknown topics get a sanitized "json__" prefixed name.
func JSONEntryName(topic string) string {
	if name, ok := jsonEntryNames[topic]; ok {
		return name
	}
	sanitized := strings.ReplaceAll(strings.TrimLeft(topic, "/"), "/", "_")
	return "json__" + sanitized
}

// isTFType reports whether a message type is a TF transform, which is
// never persisted.
func isTFType(topicType string) bool {
	return strings.HasSuffix(topicType, "tf2_msgs/msg/TFMessage")
}

func isImageType(topicType string) bool {
	return strings.HasSuffix(topicType, "sensor_msgs/msg/Image") ||
		strings.HasSuffix(topicType, "sensor_msgs/msg/CompressedImage")
}

func isCompressedImageType(topicType string) bool {
	return strings.HasSuffix(topicType, "sensor_msgs/msg/CompressedImage")
}

func isPointCloudType(topicType string) bool {
	return strings.HasSuffix(topicType, "sensor_msgs/msg/PointCloud2")
}

// InferImageContentType decides the content type of an encoded image
// from its declared format and magic bytes. It returns "" when the
// payload is neither JPEG nor PNG.
func InferImageContentType(format string, data []byte) string {
	f := strings.ToLower(format)
	if strings.Contains(f, "jpeg") || strings.Contains(f, "jpg") || hasPrefix(data, "\xff\xd8\xff") {
		return ContentTypeJPEG
	}
	if strings.Contains(f, "png") || hasPrefix(data, "\x89PNG\r\n\x1a\n") {
		return ContentTypePNG
	}
	return ""
}

func hasPrefix(data []byte, magic string) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == magic
}
