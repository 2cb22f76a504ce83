package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/reduct"
	"github.com/reductstore/ros-reductstore-demo/internal/seed"
	"github.com/reductstore/ros-reductstore-demo/internal/state"
	"github.com/reductstore/ros-reductstore-demo/internal/ui"
)

var (
	seedRecording       string
	seedBucket          string
	seedServerURL       string
	seedToken           string
	seedSessionDuration time.Duration
	seedInterval        time.Duration
	seedStartOffset     time.Duration
	seedEndOffset       time.Duration
	seedImageHz         float64
	seedPointCloudHz    float64
	seedBatchSize       int
	seedClear           bool
	seedYes             bool
	seedRandomSeed      int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with replayed robot telemetry",
	Long: `Replay an MCAP recording into the ReductStore bucket as a series of
simulated robot sessions spread over a time window around now.

Each session replays the clip in a loop for the session duration.
Structured sensor topics become batched JSON rows, compressed camera
frames are stored upright in the "image" entry, and point clouds go to
the "point_cloud" entry. Every record carries session context labels
and synthetic telemetry metrics for dashboards.

The target bucket and server default to the provisioned device state.`,
	Example: `  # Seed using the provisioned identity and server
  reduct-device seed --recording ./data/example-010-amr.mcap

  # Wipe the bucket first (asks for confirmation)
  reduct-device seed --recording clip.mcap --clear

  # Seed a different bucket on an explicit server
  reduct-device seed --recording clip.mcap --bucket orion \
    --server-url http://10.0.0.5:8383 --token reductstore`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedRecording, "recording", "", "Path to the source MCAP recording (required)")
	seedCmd.Flags().StringVar(&seedBucket, "bucket", "", "Target bucket (default: device identity)")
	seedCmd.Flags().StringVar(&seedServerURL, "server-url", "", "Server base URL (default: provisioned server)")
	seedCmd.Flags().StringVar(&seedToken, "token", "", "API token")
	seedCmd.Flags().DurationVar(&seedSessionDuration, "session-duration", seed.DefaultSessionDuration, "Length of each simulated session")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", seed.DefaultSessionInterval, "Spacing between session starts")
	seedCmd.Flags().DurationVar(&seedStartOffset, "start-offset", seed.DefaultStartOffset, "Window start relative to now")
	seedCmd.Flags().DurationVar(&seedEndOffset, "end-offset", seed.DefaultEndOffset, "Window end relative to now")
	seedCmd.Flags().Float64Var(&seedImageHz, "image-hz", seed.DefaultImageHz, "Target image frequency")
	seedCmd.Flags().Float64Var(&seedPointCloudHz, "pointcloud-hz", seed.DefaultPointCloudHz, "Target point cloud frequency")
	seedCmd.Flags().IntVar(&seedBatchSize, "batch-size", seed.DefaultJSONBatchSize, "JSON rows per batch record")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "Remove all existing entries before seeding")
	seedCmd.Flags().BoolVar(&seedYes, "yes", false, "Skip the --clear confirmation prompt")
	seedCmd.Flags().Int64Var(&seedRandomSeed, "random-seed", seed.DefaultRandomSeed, "Label generator seed (negative for non-deterministic)")
	_ = seedCmd.MarkFlagRequired("recording")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	bucket, serverURL, err := resolveSeedTarget()
	if err != nil {
		return err
	}

	if seedClear && !seedYes {
		if !ui.ClearBucketConfirmation(bucket, serverURL) {
			return nil
		}
	}

	ui.PrintCommandHeader("Telemetry Seeding", "reduct-device seed", map[string]string{
		"Recording": seedRecording,
		"Bucket":    bucket,
		"Server":    serverURL,
	})

	client := reduct.NewClient(serverURL, seedToken)

	cfg := seed.Config{
		RecordingPath:      seedRecording,
		Bucket:             bucket,
		SessionDuration:    seedSessionDuration,
		SessionInterval:    seedInterval,
		StartOffset:        seedStartOffset,
		EndOffset:          seedEndOffset,
		TargetImageHz:      seedImageHz,
		TargetPointCloudHz: seedPointCloudHz,
		JSONBatchSize:      seedBatchSize,
		ClearFirst:         seedClear,
		RandomSeed:         seedRandomSeed,
	}

	seeder := seed.NewSeeder(cfg, client)

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	seeder.OnProgress = func(p seed.Progress) {
		pct := float64(p.Session) / float64(p.TotalSessions)
		fmt.Printf("\r  %s  session %d/%d  images=%d pointclouds=%d json_rows=%d",
			bar.ViewAs(pct), p.Session, p.TotalSessions,
			p.Stats.Images, p.Stats.PointClouds, p.Stats.JSONRows)
	}

	stats, err := seeder.Run(cmd.Context())
	fmt.Println()
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	ui.PrintSuccess("Seeding complete", map[string]string{
		"Sessions":     fmt.Sprintf("%d", stats.Sessions),
		"Images":       fmt.Sprintf("%d", stats.Images),
		"Point clouds": fmt.Sprintf("%d", stats.PointClouds),
		"JSON rows":    fmt.Sprintf("%d", stats.JSONRows),
		"Duplicates":   fmt.Sprintf("%d", stats.Duplicates),
	})
	return nil
}

// resolveSeedTarget fills the bucket and server URL from flags or the
// provisioned device state.
func resolveSeedTarget() (string, string, error) {
	bucket := seedBucket
	serverURL := seedServerURL
	if bucket != "" && serverURL != "" {
		return bucket, serverURL, nil
	}

	st, err := state.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotProvisioned) {
			return "", "", fmt.Errorf("no --bucket/--server-url given and %w (run 'reduct-device setup' first)", err)
		}
		return "", "", err
	}

	if bucket == "" {
		bucket = st.DeviceUID
	}
	if serverURL == "" {
		serverURL = st.ServerURL
	}
	return bucket, serverURL, nil
}
