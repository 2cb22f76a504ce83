//go:build ignore

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/reductstore/ros-reductstore-demo/internal/seed"
)

// Statistics tracks decode results across recordings
type Statistics struct {
	TotalMessages  int
	TotalFiles     int
	DecodeSuccess  int
	DecodeFailure  int
	Unsupported    int
	MessageTypes   map[string]int
	FailedMessages []FailedMessage
}

// FailedMessage stores information about decode failures
type FailedMessage struct {
	File       string
	Topic      string
	Type       string
	MessageNum int
	PayloadHex string
	Error      string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate-decode <directory-or-file>")
		fmt.Println("Example: validate-decode data/")
		fmt.Println("         validate-decode data/example-010-amr.mcap")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		MessageTypes:   make(map[string]int),
		FailedMessages: []FailedMessage{},
	}

	// Check if path is directory or file
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		pattern := filepath.Join(path, "*.mcap")
		files, err = filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("Error listing recordings: %v\n", err)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	if len(files) == 0 {
		fmt.Println("No .mcap files found")
		os.Exit(1)
	}

	for _, file := range files {
		validateFile(file, &stats)
	}

	printReport(&stats)

	if stats.DecodeFailure > 0 {
		os.Exit(1)
	}
}

func validateFile(file string, stats *Statistics) {
	clip, err := seed.LoadClip(file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", file, err)
		return
	}
	stats.TotalFiles++

	for i, msg := range clip.Messages {
		stats.TotalMessages++
		stats.MessageTypes[msg.TopicType]++

		err := seed.ValidatePayload(msg.TopicType, msg.Data)
		switch {
		case err == nil:
			stats.DecodeSuccess++

		case errors.Is(err, seed.ErrUnsupportedType):
			stats.Unsupported++

		default:
			stats.DecodeFailure++
			snippet := msg.Data
			if len(snippet) > 32 {
				snippet = snippet[:32]
			}
			stats.FailedMessages = append(stats.FailedMessages, FailedMessage{
				File:       file,
				Topic:      msg.Topic,
				Type:       msg.TopicType,
				MessageNum: i,
				PayloadHex: hex.EncodeToString(snippet),
				Error:      err.Error(),
			})
		}
	}
}

func printReport(stats *Statistics) {
	fmt.Printf("=== Decode Validation Report ===\n")
	fmt.Printf("Files:       %d\n", stats.TotalFiles)
	fmt.Printf("Messages:    %d\n", stats.TotalMessages)
	fmt.Printf("Decoded:     %d\n", stats.DecodeSuccess)
	fmt.Printf("Failed:      %d\n", stats.DecodeFailure)
	fmt.Printf("Unsupported: %d\n\n", stats.Unsupported)

	types := make([]string, 0, len(stats.MessageTypes))
	for t := range stats.MessageTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Println("Message types:")
	for _, t := range types {
		fmt.Printf("  %-52s %6d\n", t, stats.MessageTypes[t])
	}
	fmt.Println()

	if len(stats.FailedMessages) > 0 {
		fmt.Println("Failures:")
		limit := len(stats.FailedMessages)
		if limit > 20 {
			limit = 20
		}
		for _, f := range stats.FailedMessages[:limit] {
			fmt.Printf("  %s message #%d on %s (%s)\n", f.File, f.MessageNum, f.Topic, f.Type)
			fmt.Printf("    error:   %s\n", f.Error)
			fmt.Printf("    payload: %s...\n", f.PayloadHex)
		}
		if len(stats.FailedMessages) > limit {
			fmt.Printf("  ... and %d more\n", len(stats.FailedMessages)-limit)
		}
	}
}
