package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/reductstore/ros-reductstore-demo/internal/logging"
	"github.com/reductstore/ros-reductstore-demo/internal/reduct"
)

// RecordWriter is the subset of the store client the seeder needs.
type RecordWriter interface {
	EnsureBucket(ctx context.Context, bucket string) error
	ClearBucket(ctx context.Context, bucket string) error
	WriteRecord(ctx context.Context, bucket string, rec reduct.Record) (bool, error)
}

// Config controls a seeding run.
type Config struct {
	// RecordingPath is the source MCAP clip
	RecordingPath string

	// Bucket is the target bucket, conventionally the robot name
	Bucket string

	// Robot overrides the robot label, defaults to Bucket
	Robot string

	// SessionDuration is how long each simulated session lasts
	SessionDuration time.Duration

	// SessionInterval is the spacing between session starts
	SessionInterval time.Duration

	// StartOffset and EndOffset bound the session window relative to now
	StartOffset time.Duration
	EndOffset   time.Duration

	// TargetImageHz and TargetPointCloudHz cap the replay frequency of
	// the heavy binary streams
	TargetImageHz      float64
	TargetPointCloudHz float64

	// JSONBatchSize is the number of rows accumulated before a batch
	// record is written
	JSONBatchSize int

	// ClearFirst removes all existing entries before seeding
	ClearFirst bool

	// RandomSeed makes label generation reproducible. A negative value
	// seeds from the clock.
	RandomSeed int64

	// Topic allow-lists for the binary streams
	AllowedImageTopics      []string
	AllowedPointCloudTopics []string
	AllowedCameraInfoTopics []string
}

// Defaults mirrored by the seed command's flag defaults.
const (
	DefaultSessionDuration = 10 * time.Minute
	DefaultSessionInterval = 18 * time.Hour
	DefaultStartOffset     = -24 * time.Hour
	DefaultEndOffset       = 0 * time.Hour
	DefaultImageHz         = 1.0
	DefaultPointCloudHz    = 0.01
	DefaultJSONBatchSize   = 1000
	DefaultRandomSeed      = 42
)

// DefaultAllowedTopics returns the topic allow-lists of the demo
// recording.
func DefaultAllowedTopics() (images, pointClouds, cameraInfo []string) {
	return []string{"/rsense/color/image_raw/compressed_restamped_downsampled"},
		[]string{"/os_node/segmented_point_cloud_no_destagger_restamped"},
		[]string{"/rsense/color/camera_info_restamped"}
}

func (c *Config) applyDefaults() {
	if c.Robot == "" {
		c.Robot = c.Bucket
	}
	if c.SessionDuration <= 0 {
		c.SessionDuration = DefaultSessionDuration
	}
	if c.SessionInterval <= 0 {
		c.SessionInterval = DefaultSessionInterval
	}
	if c.TargetImageHz == 0 {
		c.TargetImageHz = DefaultImageHz
	}
	if c.TargetPointCloudHz == 0 {
		c.TargetPointCloudHz = DefaultPointCloudHz
	}
	if c.JSONBatchSize <= 0 {
		c.JSONBatchSize = DefaultJSONBatchSize
	}
	if c.AllowedImageTopics == nil && c.AllowedPointCloudTopics == nil && c.AllowedCameraInfoTopics == nil {
		c.AllowedImageTopics, c.AllowedPointCloudTopics, c.AllowedCameraInfoTopics = DefaultAllowedTopics()
	}
}

// Stats summarizes what a seeding run wrote.
type Stats struct {
	Sessions    int
	Images      int
	PointClouds int
	JSONRows    int
	Duplicates  int
}

// Progress is reported after every session.
type Progress struct {
	Session       int
	TotalSessions int
	Stats         Stats
}

// Seeder replays an MCAP clip into a ReductStore bucket as a series of
// simulated robot sessions.
type Seeder struct {
	cfg   Config
	store RecordWriter
	rng   *rand.Rand
	alloc *TsAllocator

	// OnProgress, when set, is called after each completed session.
	OnProgress func(Progress)
}

// NewSeeder creates a seeder writing through store.
func NewSeeder(cfg Config, store RecordWriter) *Seeder {
	cfg.applyDefaults()

	seedVal := cfg.RandomSeed
	if seedVal < 0 {
		seedVal = time.Now().UnixNano()
	}

	return &Seeder{
		cfg:   cfg,
		store: store,
		rng:   rand.New(rand.NewSource(seedVal)),
		alloc: NewTsAllocator(),
	}
}

// Run executes the full seeding plan.
func (s *Seeder) Run(ctx context.Context) (*Stats, error) {
	clip, err := LoadClip(s.cfg.RecordingPath)
	if err != nil {
		return nil, err
	}
	logging.Info(fmt.Sprintf("Loaded recording: %d messages, %d topics, %.2fs",
		len(clip.Messages), len(clip.Topics), float64(clip.DurationNS())/1e9))

	if err := s.store.EnsureBucket(ctx, s.cfg.Bucket); err != nil {
		return nil, err
	}
	if s.cfg.ClearFirst {
		logging.Info("Clearing bucket " + s.cfg.Bucket)
		if err := s.store.ClearBucket(ctx, s.cfg.Bucket); err != nil {
			return nil, err
		}
	}

	ratios := s.throttlePlan(clip)
	starts := BuildSessionStarts(time.Now(), s.cfg.StartOffset, s.cfg.EndOffset, s.cfg.SessionInterval)
	if len(starts) == 0 {
		return nil, fmt.Errorf("seed: empty session window")
	}

	clipDurNS := clip.DurationNS()
	if clipDurNS <= 0 {
		clipDurNS = int64(time.Second)
	}
	loopsPerSession := int(s.cfg.SessionDuration.Nanoseconds() / clipDurNS)
	if loopsPerSession < 1 {
		loopsPerSession = 1
	}
	logging.Info(fmt.Sprintf("Seeding %d sessions, %d clip loops each", len(starts), loopsPerSession))

	stats := &Stats{}
	imageThrottle := newThrottle(ratios)
	pcThrottle := newThrottle(ratios)

	for sIdx, startNS := range starts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		sessionCtx := NewSessionContext(s.cfg.Robot, s.rng)
		if err := s.runSession(ctx, clip, sessionCtx, startNS, clipDurNS, loopsPerSession, imageThrottle, pcThrottle, stats); err != nil {
			return stats, err
		}
		stats.Sessions++
		if s.OnProgress != nil {
			s.OnProgress(Progress{Session: sIdx + 1, TotalSessions: len(starts), Stats: *stats})
		}
	}

	logging.Info(fmt.Sprintf("Seeding done: images=%d pointclouds=%d json_rows=%d",
		stats.Images, stats.PointClouds, stats.JSONRows))
	return stats, nil
}

// throttlePlan counts the throttled topics and derives keep ratios.
func (s *Seeder) throttlePlan(clip *Clip) map[string]int {
	counts := make(map[string]int)
	for _, msg := range clip.Messages {
		allowedImage := isImageType(msg.TopicType) && containsString(s.cfg.AllowedImageTopics, msg.Topic)
		allowedPC := isPointCloudType(msg.TopicType) && containsString(s.cfg.AllowedPointCloudTopics, msg.Topic)
		if allowedImage || allowedPC {
			counts[msg.Topic]++
		}
	}

	clipSeconds := float64(clip.DurationNS()) / 1e9
	ratios := ThrottleRatios(counts, clip.Topics, clipSeconds, s.cfg.TargetImageHz, s.cfg.TargetPointCloudHz)
	for topic, ratio := range ratios {
		if ratio > 1 {
			logging.Info(fmt.Sprintf("Throttling %s: keeping 1 in %d messages", topic, ratio))
		}
	}
	return ratios
}

func (s *Seeder) runSession(ctx context.Context, clip *Clip, sessionCtx SessionContext, startNS, clipDurNS int64, loops int, imageThrottle, pcThrottle *throttle, stats *Stats) error {
	sessionEndNS := startNS + s.cfg.SessionDuration.Nanoseconds()
	batches := make(map[string][]Row)

	for loop := 0; loop < loops; loop++ {
		loopOffNS := int64(loop) * clipDurNS

		for _, msg := range clip.Messages {
			if err := ctx.Err(); err != nil {
				return err
			}

			tsOutNS := startNS + loopOffNS + (msg.LogTimeNS - clip.FirstNS)
			if tsOutNS > sessionEndNS {
				break
			}
			if isTFType(msg.TopicType) {
				continue
			}

			// Structured topics become batched JSON rows.
			if row := FlattenRow(msg.Topic, msg.TopicType, msg.Data, tsOutNS, s.cfg.AllowedCameraInfoTopics); row != nil {
				row["topic"] = msg.Topic
				row["type"] = msg.TopicType
				entry := JSONEntryName(msg.Topic)
				batches[entry] = append(batches[entry], row)
				stats.JSONRows++

				if len(batches[entry]) >= s.cfg.JSONBatchSize {
					if err := s.writeJSONBatch(ctx, entry, batches[entry], sessionCtx, stats); err != nil {
						return err
					}
					batches[entry] = nil
				}
				continue
			}

			if isPointCloudType(msg.TopicType) && containsString(s.cfg.AllowedPointCloudTopics, msg.Topic) {
				if !pcThrottle.Keep(msg.Topic) {
					continue
				}
				if err := s.writePointCloud(ctx, msg, tsOutNS, sessionCtx, stats); err != nil {
					return err
				}
				continue
			}

			if isCompressedImageType(msg.TopicType) && containsString(s.cfg.AllowedImageTopics, msg.Topic) {
				if !imageThrottle.Keep(msg.Topic) {
					continue
				}
				if err := s.writeImage(ctx, msg, tsOutNS, sessionCtx, stats); err != nil {
					return err
				}
			}
		}
	}

	for entry, rows := range batches {
		if err := s.writeJSONBatch(ctx, entry, rows, sessionCtx, stats); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) writeJSONBatch(ctx context.Context, entry string, rows []Row, sessionCtx SessionContext, stats *Stats) error {
	if len(rows) == 0 {
		return nil
	}
	payload, err := EncodeRows(rows)
	if err != nil {
		return fmt.Errorf("encode json batch %s: %w", entry, err)
	}

	lastTS, _ := rows[len(rows)-1]["ts_ns"].(int64)
	topic, _ := rows[0]["topic"].(string)
	if topic == "" {
		topic = "unknown"
	}

	labels := map[string]string{
		"rows":  fmt.Sprintf("%d", len(rows)),
		"topic": topic,
		"type":  "json_batch",
	}
	for k, v := range sessionCtx.Labels() {
		labels[k] = v
	}
	SprinkleTelemetry(labels, s.rng)

	stored, err := s.store.WriteRecord(ctx, s.cfg.Bucket, reduct.Record{
		Entry:       entry,
		Timestamp:   s.alloc.AllocUS(entry, lastTS),
		ContentType: ContentTypeJSON,
		Labels:      labels,
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	if !stored {
		stats.Duplicates++
	}
	return nil
}

func (s *Seeder) writePointCloud(ctx context.Context, msg Message, tsNS int64, sessionCtx SessionContext, stats *Stats) error {
	pc, err := decodePointCloud2(msg.Data)
	if err != nil {
		logging.Debug("Skipping undecodable pointcloud on " + msg.Topic)
		return nil
	}

	labels := baseLabels(msg.Topic, msg.TopicType, sessionCtx, map[string]string{
		"kind":       "pointcloud2",
		"height":     fmt.Sprintf("%d", pc.Height),
		"width":      fmt.Sprintf("%d", pc.Width),
		"point_step": fmt.Sprintf("%d", pc.PointStep),
		"row_step":   fmt.Sprintf("%d", pc.RowStep),
		"is_dense":   fmt.Sprintf("%t", pc.IsDense),
	})
	SprinkleTelemetry(labels, s.rng)

	stored, err := s.store.WriteRecord(ctx, s.cfg.Bucket, reduct.Record{
		Entry:       PointCloudEntry,
		Timestamp:   s.alloc.AllocUS(PointCloudEntry, tsNS),
		ContentType: ContentTypeOctet,
		Labels:      labels,
		Payload:     pc.Data,
	})
	if err != nil {
		return err
	}
	if stored {
		stats.PointClouds++
	} else {
		stats.Duplicates++
	}
	return nil
}

func (s *Seeder) writeImage(ctx context.Context, msg Message, tsNS int64, sessionCtx SessionContext, stats *Stats) error {
	img, err := DecodeCompressedImage(msg.Data)
	if err != nil {
		logging.Debug("Skipping undecodable image on " + msg.Topic)
		return nil
	}
	ctype := InferImageContentType(img.Format, img.Data)
	if ctype == "" {
		return nil
	}

	payload, err := RotateClockwise(img.Data, ctype)
	if err != nil {
		logging.Debug("Image rotation failed on " + msg.Topic + ", storing original")
		payload = img.Data
	}

	labels := baseLabels(msg.Topic, msg.TopicType, sessionCtx, nil)
	SprinkleTelemetry(labels, s.rng)

	stored, err := s.store.WriteRecord(ctx, s.cfg.Bucket, reduct.Record{
		Entry:       ImageEntry,
		Timestamp:   s.alloc.AllocUS(ImageEntry, tsNS),
		ContentType: ctype,
		Labels:      labels,
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	if stored {
		stats.Images++
	} else {
		stats.Duplicates++
	}
	return nil
}
