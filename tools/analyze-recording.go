//go:build ignore

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/reductstore/ros-reductstore-demo/internal/seed"
)

// topicStats accumulates per-topic counters while walking the recording
type topicStats struct {
	Topic     string
	Type      string
	Count     int
	Bytes     int64
	FirstNS   int64
	LastNS    int64
	FirstData []byte
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-recording <mcap-file>")
		fmt.Println("Example: analyze-recording data/example-010-amr.mcap")
		os.Exit(1)
	}

	filename := os.Args[1]
	clip, err := seed.LoadClip(filename)
	if err != nil {
		fmt.Printf("Error reading recording: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Recording Analyzer ===\n")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Messages: %d\n", len(clip.Messages))
	fmt.Printf("Duration: %.2fs\n\n", float64(clip.DurationNS())/1e9)

	stats := map[string]*topicStats{}
	for _, msg := range clip.Messages {
		st, ok := stats[msg.Topic]
		if !ok {
			st = &topicStats{
				Topic:     msg.Topic,
				Type:      msg.TopicType,
				FirstNS:   msg.LogTimeNS,
				FirstData: msg.Data,
			}
			stats[msg.Topic] = st
		}
		st.Count++
		st.Bytes += int64(len(msg.Data))
		st.LastNS = msg.LogTimeNS
	}

	topics := make([]string, 0, len(stats))
	for t := range stats {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	fmt.Println("Per-topic statistics:")
	fmt.Println("Topic                                                         Count    Hz       Bytes")
	fmt.Println("------                                                        ------   ------   --------")
	for _, t := range topics {
		st := stats[t]
		hz := 0.0
		if span := st.LastNS - st.FirstNS; span > 0 && st.Count > 1 {
			hz = float64(st.Count-1) / (float64(span) / 1e9)
		}
		fmt.Printf("%-60s  %6d   %6.2f   %8d\n", st.Topic, st.Count, hz, st.Bytes)
		fmt.Printf("  type: %s\n", st.Type)
	}
	fmt.Println()

	// Dump the first payload of each topic for wire-format inspection
	for _, t := range topics {
		st := stats[t]
		fmt.Printf("========================================\n")
		fmt.Printf("%s - first message (%d bytes)\n", st.Topic, len(st.FirstData))
		fmt.Printf("========================================\n")
		data := st.FirstData
		if len(data) > 128 {
			data = data[:128]
		}
		hexDump(data)
		fmt.Println()
	}
}

func hexDump(payload []byte) {
	for i := 0; i < len(payload); i += 16 {
		// Offset
		fmt.Printf("%04x  ", i)

		// Hex
		for j := 0; j < 16; j++ {
			if i+j < len(payload) {
				fmt.Printf("%02x ", payload[i+j])
			} else {
				fmt.Print("   ")
			}
			if j == 7 {
				fmt.Print(" ")
			}
		}

		// ASCII
		fmt.Print(" |")
		for j := 0; j < 16 && i+j < len(payload); j++ {
			b := payload[i+j]
			if b >= 32 && b <= 126 {
				fmt.Printf("%c", b)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println("|")
	}
}
