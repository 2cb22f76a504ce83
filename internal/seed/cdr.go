package seed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// CompressedImage holds the fields of a sensor_msgs/msg/CompressedImage
// message decoded from its CDR wire form.
type CompressedImage struct {
	StampSec  int32
	StampNsec uint32
	FrameID   string
	Format    string
	Data      []byte
}

// cdrDecoder walks a CDR payload. Primitive reads are aligned to the
// primitive's size, measured from the start of the body (after the
// 4-byte encapsulation header).
type cdrDecoder struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func newCDRDecoder(payload []byte) (*cdrDecoder, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("cdr payload too short: %d bytes", len(payload))
	}
	var order binary.ByteOrder
	switch payload[1] {
	case 0x00:
		order = binary.BigEndian
	case 0x01:
		order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("unsupported cdr encapsulation 0x%02x%02x", payload[0], payload[1])
	}
	return &cdrDecoder{buf: payload[4:], order: order}, nil
}

func (d *cdrDecoder) align(size int) {
	if rem := d.pos % size; rem != 0 {
		d.pos += size - rem
	}
}

func (d *cdrDecoder) uint32() (uint32, error) {
	d.align(4)
	if d.pos+4 > len(d.buf) {
		return 0, fmt.Errorf("cdr truncated at offset %d", d.pos)
	}
	v := d.order.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *cdrDecoder) int32() (int32, error) {
	v, err := d.uint32()
	return int32(v), err
}

func (d *cdrDecoder) skip(n int) error {
	if d.pos+n > len(d.buf) {
		return fmt.Errorf("cdr truncated at offset %d", d.pos)
	}
	d.pos += n
	return nil
}

func (d *cdrDecoder) bool() (bool, error) {
	if d.pos >= len(d.buf) {
		return false, fmt.Errorf("cdr truncated at offset %d", d.pos)
	}
	v := d.buf[d.pos] != 0
	d.pos++
	return v, nil
}

func (d *cdrDecoder) float64() (float64, error) {
	d.align(8)
	if d.pos+8 > len(d.buf) {
		return 0, fmt.Errorf("cdr truncated at offset %d", d.pos)
	}
	v := math.Float64frombits(d.order.Uint64(d.buf[d.pos:]))
	d.pos += 8
	return v, nil
}

// skipFloat64s skips a fixed-size float64 array, such as a covariance
// matrix.
func (d *cdrDecoder) skipFloat64s(n int) error {
	d.align(8)
	if d.pos+8*n > len(d.buf) {
		return fmt.Errorf("cdr truncated at offset %d", d.pos)
	}
	d.pos += 8 * n
	return nil
}

// string reads a CDR string: uint32 length including the trailing NUL,
// then the bytes.
func (d *cdrDecoder) string() (string, error) {
	n, err := d.uint32()
	if err != nil {
		return "", err
	}
	if n == 0 || d.pos+int(n) > len(d.buf) {
		return "", fmt.Errorf("cdr string of %d bytes truncated at offset %d", n, d.pos)
	}
	s := string(d.buf[d.pos : d.pos+int(n)-1])
	d.pos += int(n)
	return s, nil
}

func (d *cdrDecoder) bytes() ([]byte, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, err
	}
	if d.pos+int(n) > len(d.buf) {
		return nil, fmt.Errorf("cdr byte sequence of %d bytes truncated at offset %d", n, d.pos)
	}
	out := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return out, nil
}

// header holds the decoded std_msgs/msg/Header fields.
type header struct {
	StampSec  int32
	StampNsec uint32
	FrameID   string
}

func (d *cdrDecoder) header() (header, error) {
	var h header
	var err error
	if h.StampSec, err = d.int32(); err != nil {
		return h, err
	}
	if h.StampNsec, err = d.uint32(); err != nil {
		return h, err
	}
	h.FrameID, err = d.string()
	return h, err
}

// vector3 holds a decoded geometry_msgs/msg/Vector3.
type vector3 struct {
	X, Y, Z float64
}

func (d *cdrDecoder) vector3() (vector3, error) {
	var v vector3
	var err error
	if v.X, err = d.float64(); err != nil {
		return v, err
	}
	if v.Y, err = d.float64(); err != nil {
		return v, err
	}
	v.Z, err = d.float64()
	return v, err
}

// Quaternion, Vector3 and the scalar sensor values below mirror the
// corresponding ROS message layouts.
type quaternion struct {
	X, Y, Z, W float64
}

func (d *cdrDecoder) quaternion() (quaternion, error) {
	var q quaternion
	var err error
	if q.X, err = d.float64(); err != nil {
		return q, err
	}
	if q.Y, err = d.float64(); err != nil {
		return q, err
	}
	if q.Z, err = d.float64(); err != nil {
		return q, err
	}
	q.W, err = d.float64()
	return q, err
}

// imuMessage holds the decoded parts of a sensor_msgs/msg/Imu.
type imuMessage struct {
	Header             header
	Orientation        quaternion
	AngularVelocity    vector3
	LinearAcceleration vector3
}

func decodeImu(payload []byte) (*imuMessage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}
	var m imuMessage
	if m.Header, err = d.header(); err != nil {
		return nil, err
	}
	if m.Orientation, err = d.quaternion(); err != nil {
		return nil, err
	}
	if err = d.skipFloat64s(9); err != nil {
		return nil, err
	}
	if m.AngularVelocity, err = d.vector3(); err != nil {
		return nil, err
	}
	if err = d.skipFloat64s(9); err != nil {
		return nil, err
	}
	if m.LinearAcceleration, err = d.vector3(); err != nil {
		return nil, err
	}
	return &m, nil
}

type magneticFieldMessage struct {
	Header header
	Field  vector3
}

func decodeMagneticField(payload []byte) (*magneticFieldMessage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}
	var m magneticFieldMessage
	if m.Header, err = d.header(); err != nil {
		return nil, err
	}
	if m.Field, err = d.vector3(); err != nil {
		return nil, err
	}
	return &m, nil
}

// scalarMessage covers sensor_msgs/msg/FluidPressure and
// sensor_msgs/msg/Temperature, both a header plus value and variance.
type scalarMessage struct {
	Header   header
	Value    float64
	Variance float64
}

func decodeScalar(payload []byte) (*scalarMessage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}
	var m scalarMessage
	if m.Header, err = d.header(); err != nil {
		return nil, err
	}
	if m.Value, err = d.float64(); err != nil {
		return nil, err
	}
	if m.Variance, err = d.float64(); err != nil {
		return nil, err
	}
	return &m, nil
}

// cameraInfoMessage holds the leading fields of a
// sensor_msgs/msg/CameraInfo. The calibration matrices that follow are
// not decoded.
type cameraInfoMessage struct {
	Header          header
	Height          uint32
	Width           uint32
	DistortionModel string
}

func decodeCameraInfo(payload []byte) (*cameraInfoMessage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}
	var m cameraInfoMessage
	if m.Header, err = d.header(); err != nil {
		return nil, err
	}
	if m.Height, err = d.uint32(); err != nil {
		return nil, err
	}
	if m.Width, err = d.uint32(); err != nil {
		return nil, err
	}
	if m.DistortionModel, err = d.string(); err != nil {
		return nil, err
	}
	return &m, nil
}

// pointCloudMessage holds the decoded parts of a
// sensor_msgs/msg/PointCloud2 needed for labelling and storage.
type pointCloudMessage struct {
	Header    header
	Height    uint32
	Width     uint32
	PointStep uint32
	RowStep   uint32
	Data      []byte
	IsDense   bool
}

func decodePointCloud2(payload []byte) (*pointCloudMessage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}
	var m pointCloudMessage
	if m.Header, err = d.header(); err != nil {
		return nil, err
	}
	if m.Height, err = d.uint32(); err != nil {
		return nil, err
	}
	if m.Width, err = d.uint32(); err != nil {
		return nil, err
	}
	// fields: sequence of sensor_msgs/msg/PointField
	nFields, err := d.uint32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nFields; i++ {
		if _, err = d.string(); err != nil { // name
			return nil, err
		}
		if _, err = d.uint32(); err != nil { // offset
			return nil, err
		}
		if err = d.skip(1); err != nil { // datatype
			return nil, err
		}
		if _, err = d.uint32(); err != nil { // count
			return nil, err
		}
	}
	if _, err = d.bool(); err != nil { // is_bigendian
		return nil, err
	}
	if m.PointStep, err = d.uint32(); err != nil {
		return nil, err
	}
	if m.RowStep, err = d.uint32(); err != nil {
		return nil, err
	}
	if m.Data, err = d.bytes(); err != nil {
		return nil, err
	}
	if m.IsDense, err = d.bool(); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeCompressedImage decodes the CDR form of a
// sensor_msgs/msg/CompressedImage: header stamp, frame id, format
// string and the encoded image bytes.
func DecodeCompressedImage(payload []byte) (*CompressedImage, error) {
	d, err := newCDRDecoder(payload)
	if err != nil {
		return nil, err
	}

	var img CompressedImage
	if img.StampSec, err = d.int32(); err != nil {
		return nil, err
	}
	if img.StampNsec, err = d.uint32(); err != nil {
		return nil, err
	}
	if img.FrameID, err = d.string(); err != nil {
		return nil, err
	}
	if img.Format, err = d.string(); err != nil {
		return nil, err
	}
	if img.Data, err = d.bytes(); err != nil {
		return nil, err
	}
	return &img, nil
}

// ErrUnsupportedType marks topic types the replay pipeline does not decode.
var ErrUnsupportedType = errors.New("unsupported message type")

// ValidatePayload attempts a full CDR decode of payload according to
// topicType and reports the first decode error. It covers exactly the
// message types the replay pipeline consumes.
func ValidatePayload(topicType string, payload []byte) error {
	var err error
	switch {
	case isCompressedImageType(topicType):
		_, err = DecodeCompressedImage(payload)
	case isPointCloudType(topicType):
		_, err = decodePointCloud2(payload)
	case strings.HasSuffix(topicType, "sensor_msgs/msg/Imu"):
		_, err = decodeImu(payload)
	case strings.HasSuffix(topicType, "sensor_msgs/msg/MagneticField"):
		_, err = decodeMagneticField(payload)
	case strings.HasSuffix(topicType, "sensor_msgs/msg/FluidPressure"),
		strings.HasSuffix(topicType, "sensor_msgs/msg/Temperature"):
		_, err = decodeScalar(payload)
	case strings.HasSuffix(topicType, "sensor_msgs/msg/CameraInfo"):
		_, err = decodeCameraInfo(payload)
	default:
		return ErrUnsupportedType
	}
	return err
}
