package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foxglove/mcap/go/mcap"

	"github.com/reductstore/ros-reductstore-demo/internal/reduct"
)

// fakeStore records every write in memory.
type fakeStore struct {
	ensured []string
	cleared []string
	records []reduct.Record
}

func (f *fakeStore) EnsureBucket(_ context.Context, bucket string) error {
	f.ensured = append(f.ensured, bucket)
	return nil
}

func (f *fakeStore) ClearBucket(_ context.Context, bucket string) error {
	f.cleared = append(f.cleared, bucket)
	return nil
}

func (f *fakeStore) WriteRecord(_ context.Context, _ string, rec reduct.Record) (bool, error) {
	f.records = append(f.records, rec)
	return true, nil
}

func (f *fakeStore) byEntry(entry string) []reduct.Record {
	var out []reduct.Record
	for _, rec := range f.records {
		if rec.Entry == entry {
			out = append(out, rec)
		}
	}
	return out
}

// writeTestRecording builds a small MCAP clip with one compressed image
// and two IMU messages.
func writeTestRecording(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.mcap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create recording: %v", err)
	}
	defer f.Close()

	w, err := mcap.NewWriter(f, &mcap.WriterOptions{Chunked: true})
	if err != nil {
		t.Fatalf("mcap writer: %v", err)
	}
	if err := w.WriteHeader(&mcap.Header{Profile: "ros2"}); err != nil {
		t.Fatalf("write header: %v", err)
	}

	schemas := []*mcap.Schema{
		{ID: 1, Name: "sensor_msgs/msg/CompressedImage", Encoding: "ros2msg"},
		{ID: 2, Name: "sensor_msgs/msg/Imu", Encoding: "ros2msg"},
	}
	channels := []*mcap.Channel{
		{ID: 1, SchemaID: 1, Topic: "/cam/compressed", MessageEncoding: "cdr"},
		{ID: 2, SchemaID: 2, Topic: "/vectornav/IMU_restamped", MessageEncoding: "cdr"},
	}
	for _, s := range schemas {
		if err := w.WriteSchema(s); err != nil {
			t.Fatalf("write schema: %v", err)
		}
	}
	for _, c := range channels {
		if err := w.WriteChannel(c); err != nil {
			t.Fatalf("write channel: %v", err)
		}
	}

	imgPayload := newCDRBuilder().
		header(0, 0, "cam").
		str("jpeg").
		seq([]byte{0xff, 0xd8, 0xff, 0xe0, 0x01}).
		payload()

	imuPayload := func() []byte {
		b := newCDRBuilder().header(0, 0, "imu_link").
			f64(0).f64(0).f64(0).f64(1)
		for i := 0; i < 9; i++ {
			b.f64(0)
		}
		b.f64(0).f64(0).f64(0)
		for i := 0; i < 9; i++ {
			b.f64(0)
		}
		b.f64(0).f64(0).f64(9.81)
		return b.payload()
	}()

	msgs := []*mcap.Message{
		{ChannelID: 1, LogTime: 0, PublishTime: 0, Data: imgPayload},
		{ChannelID: 2, LogTime: 100_000_000, PublishTime: 100_000_000, Data: imuPayload},
		{ChannelID: 2, LogTime: 1_000_000_000, PublishTime: 1_000_000_000, Data: imuPayload},
	}
	for _, m := range msgs {
		if err := w.WriteMessage(m); err != nil {
			t.Fatalf("write message: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return path
}

func testConfig(recording string) Config {
	return Config{
		RecordingPath:           recording,
		Bucket:                  "orion",
		SessionDuration:         time.Second,
		SessionInterval:         time.Hour,
		StartOffset:             -time.Hour,
		EndOffset:               -time.Hour,
		TargetImageHz:           1000,
		TargetPointCloudHz:      1000,
		JSONBatchSize:           100,
		RandomSeed:              42,
		AllowedImageTopics:      []string{"/cam/compressed"},
		AllowedPointCloudTopics: []string{"/none"},
		AllowedCameraInfoTopics: []string{"/none"},
	}
}

func TestSeederRun(t *testing.T) {
	recording := writeTestRecording(t)
	store := &fakeStore{}

	seeder := NewSeeder(testConfig(recording), store)
	stats, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", stats.Sessions)
	}
	if stats.Images != 1 {
		t.Errorf("Images = %d, want 1", stats.Images)
	}
	if stats.JSONRows != 2 {
		t.Errorf("JSONRows = %d, want 2", stats.JSONRows)
	}
	if len(store.ensured) != 1 || store.ensured[0] != "orion" {
		t.Errorf("ensured buckets = %v, want [orion]", store.ensured)
	}
	if len(store.cleared) != 0 {
		t.Errorf("cleared buckets = %v, want none without ClearFirst", store.cleared)
	}

	images := store.byEntry(ImageEntry)
	if len(images) != 1 {
		t.Fatalf("image records = %d, want 1", len(images))
	}
	if images[0].ContentType != ContentTypeJPEG {
		t.Errorf("image content type = %q, want %q", images[0].ContentType, ContentTypeJPEG)
	}
	if images[0].Labels["robot"] != "orion" {
		t.Errorf("image labels[robot] = %q, want orion", images[0].Labels["robot"])
	}
	if images[0].Labels["battery_pct"] == "" {
		t.Error("image labels missing telemetry")
	}

	// IMU rows are flushed as one JSON batch at session end.
	batches := store.byEntry("imu")
	if len(batches) != 1 {
		t.Fatalf("imu batch records = %d, want 1", len(batches))
	}
	if batches[0].ContentType != ContentTypeJSON {
		t.Errorf("batch content type = %q, want %q", batches[0].ContentType, ContentTypeJSON)
	}
	if batches[0].Labels["rows"] != "2" {
		t.Errorf("batch labels[rows] = %q, want 2", batches[0].Labels["rows"])
	}

	var rows []map[string]any
	if err := json.Unmarshal(batches[0].Payload, &rows); err != nil {
		t.Fatalf("batch payload is not a JSON array: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("batch rows = %d, want 2", len(rows))
	}
	if rows[0]["frame_id"] != "imu_link" {
		t.Errorf("row frame_id = %v, want imu_link", rows[0]["frame_id"])
	}
}

func TestSeederRunClearFirst(t *testing.T) {
	recording := writeTestRecording(t)
	store := &fakeStore{}

	cfg := testConfig(recording)
	cfg.ClearFirst = true
	if _, err := NewSeeder(cfg, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(store.cleared) != 1 {
		t.Errorf("cleared buckets = %v, want [orion]", store.cleared)
	}
}

func TestSeederRunCancelled(t *testing.T) {
	recording := writeTestRecording(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSeeder(testConfig(recording), &fakeStore{}).Run(ctx); err == nil {
		t.Error("Run() error = nil, want context error")
	}
}

func TestSeederTimestampsStrictlyIncreasingPerEntry(t *testing.T) {
	recording := writeTestRecording(t)
	store := &fakeStore{}

	cfg := testConfig(recording)
	// Two sessions at the same start time force timestamp collisions.
	cfg.StartOffset = -time.Hour
	cfg.EndOffset = -time.Hour + time.Second
	cfg.SessionInterval = time.Second

	if _, err := NewSeeder(cfg, store).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	seen := make(map[string]int64)
	for _, rec := range store.records {
		if last, ok := seen[rec.Entry]; ok && rec.Timestamp <= last {
			t.Fatalf("entry %s: timestamp %d not after %d", rec.Entry, rec.Timestamp, last)
		}
		seen[rec.Entry] = rec.Timestamp
	}
}
