package seed

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// cdrBuilder assembles little-endian CDR payloads for tests.
type cdrBuilder struct {
	buf bytes.Buffer
}

func newCDRBuilder() *cdrBuilder {
	b := &cdrBuilder{}
	b.buf.Write([]byte{0x00, 0x01, 0x00, 0x00})
	return b
}

func (b *cdrBuilder) align(size int) {
	for (b.buf.Len()-4)%size != 0 {
		b.buf.WriteByte(0)
	}
}

func (b *cdrBuilder) u32(v uint32) *cdrBuilder {
	b.align(4)
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *cdrBuilder) i32(v int32) *cdrBuilder {
	b.align(4)
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *cdrBuilder) f64(v float64) *cdrBuilder {
	b.align(8)
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *cdrBuilder) str(s string) *cdrBuilder {
	b.u32(uint32(len(s) + 1))
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

func (b *cdrBuilder) raw(data []byte) *cdrBuilder {
	b.buf.Write(data)
	return b
}

func (b *cdrBuilder) seq(data []byte) *cdrBuilder {
	b.u32(uint32(len(data)))
	b.buf.Write(data)
	return b
}

func (b *cdrBuilder) payload() []byte {
	return b.buf.Bytes()
}

func (b *cdrBuilder) header(sec int32, nsec uint32, frameID string) *cdrBuilder {
	return b.i32(sec).u32(nsec).str(frameID)
}

func TestDecodeCompressedImage(t *testing.T) {
	imgData := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	payload := newCDRBuilder().
		header(100, 200, "camera_link").
		str("jpeg").
		seq(imgData).
		payload()

	img, err := DecodeCompressedImage(payload)
	if err != nil {
		t.Fatalf("DecodeCompressedImage() error = %v", err)
	}
	if img.StampSec != 100 || img.StampNsec != 200 {
		t.Errorf("stamp = %d.%d, want 100.200", img.StampSec, img.StampNsec)
	}
	if img.FrameID != "camera_link" {
		t.Errorf("FrameID = %q, want %q", img.FrameID, "camera_link")
	}
	if img.Format != "jpeg" {
		t.Errorf("Format = %q, want %q", img.Format, "jpeg")
	}
	if !bytes.Equal(img.Data, imgData) {
		t.Errorf("Data = %v, want %v", img.Data, imgData)
	}
}

func TestDecodeCompressedImageTruncated(t *testing.T) {
	payload := newCDRBuilder().header(1, 2, "f").str("jpeg").payload()
	if _, err := DecodeCompressedImage(payload); err == nil {
		t.Error("DecodeCompressedImage() error = nil, want truncation error")
	}
}

func TestDecodeCompressedImageBadEncapsulation(t *testing.T) {
	if _, err := DecodeCompressedImage([]byte{0x00, 0x09, 0x00, 0x00, 0x01}); err == nil {
		t.Error("DecodeCompressedImage() error = nil, want encapsulation error")
	}
}

func TestDecodeImu(t *testing.T) {
	b := newCDRBuilder().header(5, 6, "imu_link").
		f64(0.1).f64(0.2).f64(0.3).f64(0.4) // orientation
	for i := 0; i < 9; i++ {
		b.f64(0)
	}
	b.f64(1.5).f64(2.5).f64(3.5) // angular velocity
	for i := 0; i < 9; i++ {
		b.f64(0)
	}
	b.f64(9.8).f64(0.0).f64(-9.8) // linear acceleration

	m, err := decodeImu(b.payload())
	if err != nil {
		t.Fatalf("decodeImu() error = %v", err)
	}
	if m.Header.FrameID != "imu_link" {
		t.Errorf("FrameID = %q, want %q", m.Header.FrameID, "imu_link")
	}
	if m.Orientation.W != 0.4 {
		t.Errorf("Orientation.W = %v, want 0.4", m.Orientation.W)
	}
	if m.AngularVelocity.Y != 2.5 {
		t.Errorf("AngularVelocity.Y = %v, want 2.5", m.AngularVelocity.Y)
	}
	if m.LinearAcceleration.Z != -9.8 {
		t.Errorf("LinearAcceleration.Z = %v, want -9.8", m.LinearAcceleration.Z)
	}
}

func TestDecodeScalar(t *testing.T) {
	payload := newCDRBuilder().header(1, 2, "baro").f64(101325.0).f64(0.5).payload()

	m, err := decodeScalar(payload)
	if err != nil {
		t.Fatalf("decodeScalar() error = %v", err)
	}
	if m.Value != 101325.0 {
		t.Errorf("Value = %v, want 101325.0", m.Value)
	}
	if m.Variance != 0.5 {
		t.Errorf("Variance = %v, want 0.5", m.Variance)
	}
}

func TestDecodeCameraInfo(t *testing.T) {
	payload := newCDRBuilder().header(1, 2, "cam").
		u32(480).u32(640).str("plumb_bob").
		payload()

	m, err := decodeCameraInfo(payload)
	if err != nil {
		t.Fatalf("decodeCameraInfo() error = %v", err)
	}
	if m.Height != 480 || m.Width != 640 {
		t.Errorf("dimensions = %dx%d, want 640x480", m.Width, m.Height)
	}
	if m.DistortionModel != "plumb_bob" {
		t.Errorf("DistortionModel = %q, want %q", m.DistortionModel, "plumb_bob")
	}
}

func TestDecodePointCloud2(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := newCDRBuilder().header(1, 2, "lidar")
	b.u32(1) // height
	b.u32(2) // width
	b.u32(1) // one point field
	b.str("x").u32(0).raw([]byte{7}).u32(1) // field name, offset, datatype, count
	b.raw([]byte{0})                        // is_bigendian
	b.u32(4)                                // point_step
	b.u32(8)                                // row_step
	b.seq(data)
	b.raw([]byte{1}) // is_dense

	m, err := decodePointCloud2(b.payload())
	if err != nil {
		t.Fatalf("decodePointCloud2() error = %v", err)
	}
	if m.Height != 1 || m.Width != 2 {
		t.Errorf("dimensions = %dx%d, want 2x1", m.Width, m.Height)
	}
	if m.PointStep != 4 || m.RowStep != 8 {
		t.Errorf("steps = %d/%d, want 4/8", m.PointStep, m.RowStep)
	}
	if !bytes.Equal(m.Data, data) {
		t.Errorf("Data = %v, want %v", m.Data, data)
	}
	if !m.IsDense {
		t.Error("IsDense = false, want true")
	}
}

func TestValidatePayload(t *testing.T) {
	scalar := newCDRBuilder().header(1, 2, "baro").f64(101325.0).f64(0.5).payload()

	tests := []struct {
		name      string
		topicType string
		payload   []byte
		wantErr   bool
	}{
		{"pressure", "sensor_msgs/msg/FluidPressure", scalar, false},
		{"temperature", "sensor_msgs/msg/Temperature", scalar, false},
		{"truncated imu", "sensor_msgs/msg/Imu", scalar, true},
		{"unsupported", "nav_msgs/msg/Odometry", scalar, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.topicType, tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
