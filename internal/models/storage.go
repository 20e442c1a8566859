package models

import "time"

// KeyValue is a durable string key-value record.
type KeyValue struct {
	Key       string `badgerhold:"key"`
	Value     string
	UpdatedAt time.Time
}

// Blob is a stored binary object (generated images, rendered audio).
type Blob struct {
	Category    string `badgerhold:"index"`
	Key         string
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}
