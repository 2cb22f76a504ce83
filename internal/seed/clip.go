package seed

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/foxglove/mcap/go/mcap"
)

// Message is one recorded message from the source clip.
type Message struct {
	Topic     string
	TopicType string
	LogTimeNS int64
	Data      []byte
}

// Clip is a fully loaded MCAP recording, replayed repeatedly to fill
// out seeded sessions.
type Clip struct {
	Messages []Message
	Topics   map[string]string
	FirstNS  int64
	LastNS   int64
}

// DurationNS returns the clip's span in nanoseconds.
func (c *Clip) DurationNS() int64 {
	return c.LastNS - c.FirstNS
}

// ErrEmptyClip is returned when the source recording holds no messages.
var ErrEmptyClip = errors.New("seed: recording contains no messages")

// LoadClip reads every message of an MCAP file into memory.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	reader, err := mcap.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read recording %s: %w", path, err)
	}
	defer reader.Close()

	it, err := reader.Messages()
	if err != nil {
		return nil, fmt.Errorf("iterate recording %s: %w", path, err)
	}

	clip := &Clip{Topics: make(map[string]string)}
	for {
		schema, channel, msg, err := it.Next(nil)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode recording %s: %w", path, err)
		}

		topicType := ""
		if schema != nil {
			topicType = schema.Name
		}
		clip.Topics[channel.Topic] = topicType

		ts := int64(msg.LogTime)
		if len(clip.Messages) == 0 {
			clip.FirstNS = ts
		}
		if ts < clip.FirstNS {
			clip.FirstNS = ts
		}
		if ts > clip.LastNS {
			clip.LastNS = ts
		}

		data := make([]byte, len(msg.Data))
		copy(data, msg.Data)
		clip.Messages = append(clip.Messages, Message{
			Topic:     channel.Topic,
			TopicType: topicType,
			LogTimeNS: ts,
			Data:      data,
		})
	}

	if len(clip.Messages) == 0 {
		return nil, ErrEmptyClip
	}
	return clip, nil
}
