package journal

import "time"

// Record is one durable entry: an opaque payload with an assigned
// sequence number and capture timestamp.
type Record struct {
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(data []byte) *Record {
	return &Record{
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
