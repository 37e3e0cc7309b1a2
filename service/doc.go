// Package service orchestrates the core components of the telemetry
// substrate — the bounded recent-call log, the epoch-protected
// settings cell, the settings journal, and the change-event outbox.
//
// It provides a clean API for recording, querying, and reconfiguring,
// decoupled from network transports like gRPC.
package service
