// Package telemetry defines the value types captured by the
// recent-call log. Records are plain values with a byte-size
// estimate; the log never inspects them beyond that.
package telemetry
