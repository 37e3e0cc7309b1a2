package telemetry

import "time"

// APICall is one captured API invocation. Values are moved into the
// recent-call log and treated as read-only from then on.
type APICall struct {
	Method  string
	Path    string
	Status  int
	Latency time.Duration
	Bytes   int64
	Time    int64 // unix nanos at capture
}

// callOverhead approximates the fixed in-memory footprint of an
// APICall node: the struct itself plus both string headers' backing
// array bookkeeping.
const callOverhead = 80

// MemoryUsage estimates the bytes owned by the call, including the
// string payloads. Used by the bounded log for rotation accounting.
func (c APICall) MemoryUsage() uint64 {
	return uint64(callOverhead + len(c.Method) + len(c.Path))
}

// NewCall stamps a capture time onto a call record.
func NewCall(method, path string, status int, latency time.Duration, bytes int64) APICall {
	return APICall{
		Method:  method,
		Path:    path,
		Status:  status,
		Latency: latency,
		Bytes:   bytes,
		Time:    time.Now().UnixNano(),
	}
}
