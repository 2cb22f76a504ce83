package reduct

// ServerInfo is the response of GET /api/v1/info.
type ServerInfo struct {
	// Version is the ReductStore server version
	Version string `json:"version"`

	// BucketCount is the number of buckets on the server
	BucketCount int64 `json:"bucket_count,string"`

	// Usage is the total disk usage in bytes
	Usage int64 `json:"usage,string"`

	// Uptime is the server uptime in seconds
	Uptime int64 `json:"uptime,string"`
}

// EntryInfo describes one entry inside a bucket.
type EntryInfo struct {
	// Name is the entry name
	Name string `json:"name"`

	// Size is the stored size in bytes
	Size int64 `json:"size,string"`

	// RecordCount is the number of records in the entry
	RecordCount int64 `json:"record_count,string"`

	// OldestRecord and LatestRecord are Unix microsecond timestamps
	OldestRecord int64 `json:"oldest_record,string"`
	LatestRecord int64 `json:"latest_record,string"`
}

// bucketResponse is the wire shape of GET /api/v1/b/:bucket.
type bucketResponse struct {
	Entries []EntryInfo `json:"entries"`
}

// Record is one record to write into an entry.
type Record struct {
	// Entry is the entry name inside the bucket
	Entry string

	// Timestamp is the record time in Unix microseconds
	Timestamp int64

	// ContentType is the payload MIME type
	ContentType string

	// Labels are attached as x-reduct-label-* headers
	Labels map[string]string

	// Payload is the record body
	Payload []byte
}
