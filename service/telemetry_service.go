package service

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"helix/domain/settings"
	"helix/domain/telemetry"
	"helix/infra/archive"
	"helix/infra/epochcell"
	"helix/infra/journal"
	"helix/infra/recentlog"
)

/*
TelemetryService is the ONLY write entry point into the substrate.

All coordination between:
- the recent-call log (bounded, lock-free)
- the live settings cell (epoch-protected)
- the settings journal (durable intent)
- the outbox (change events for the broadcaster)
happens here.
*/

type TelemetryService struct {
	calls    *recentlog.Log[telemetry.APICall]
	settings *epochcell.Cell[settings.Settings]
	journal  *journal.Journal // optional
	outbox   *archive.Store   // optional

	retiredMu sync.Mutex
	retired   []retiredValue

	// Window counters for the summary job.
	recorded atomic.Uint64
	skipped  atomic.Uint64
	errored  atomic.Uint64
	bytes    atomic.Uint64
	maxLat   atomic.Int64

	counter atomic.Uint64 // sampling modulus position
}

// retiredValue parks a displaced settings value until every reader
// that could still see it has left.
type retiredValue struct {
	val   *settings.Settings
	epoch uint64
}

// NewTelemetryService wires all dependencies. journal and outbox may
// be nil (tests, ephemeral deployments).
func NewTelemetryService(
	calls *recentlog.Log[telemetry.APICall],
	cell *epochcell.Cell[settings.Settings],
	jnl *journal.Journal,
	outbox *archive.Store,
) *TelemetryService {
	return &TelemetryService{
		calls:    calls,
		settings: cell,
		journal:  jnl,
		outbox:   outbox,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// RecordCall captures one API call, subject to the live sampling
// settings. It is safe for any number of concurrent callers and never
// returns an error: telemetry must not fail into the caller.
func (s *TelemetryService) RecordCall(call telemetry.APICall) {
	type policy struct {
		every   uint32
		maxPath uint32
	}
	p := epochcell.Read(s.settings, func(v *settings.Settings) policy {
		return policy{every: v.SampleEvery, maxPath: v.MaxPathLen}
	})
	if p.every == 0 {
		// Cell closed; the substrate is shutting down.
		s.skipped.Add(1)
		return
	}

	if p.every > 1 && s.counter.Add(1)%uint64(p.every) != 0 {
		s.skipped.Add(1)
		return
	}

	if uint32(len(call.Path)) > p.maxPath {
		call.Path = call.Path[:p.maxPath]
	}

	s.calls.Append(call)

	s.recorded.Add(1)
	s.bytes.Add(uint64(call.Bytes))
	if call.Status >= 500 {
		s.errored.Add(1)
	}
	for {
		cur := s.maxLat.Load()
		if int64(call.Latency) <= cur || s.maxLat.CompareAndSwap(cur, int64(call.Latency)) {
			break
		}
	}
}

// UpdateSettings validates and publishes a new configuration. The
// journal entry is written before the swap so a crash between the two
// replays the intended value. Returns the retirement epoch of the
// displaced settings.
func (s *TelemetryService) UpdateSettings(next *settings.Settings) (uint64, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}

	var seq uint64
	if s.journal != nil {
		rec := journal.NewRecord(next.Encode())
		if err := s.journal.Append(rec); err != nil {
			return 0, err
		}
		seq = rec.Seq
	}

	old, epoch := s.settings.Update(next)

	s.retiredMu.Lock()
	s.retired = append(s.retired, retiredValue{val: old, epoch: epoch})
	s.retiredMu.Unlock()

	if s.outbox != nil && next.Broadcast {
		if seq == 0 {
			// No journal wired; the retire epoch is just as unique.
			seq = epoch
		}
		eventID := uuid.NewString()
		if err := s.outbox.PutNew(seq, eventID, next.Encode()); err != nil {
			log.Printf("[service] outbox write failed for seq=%d: %v", seq, err)
		}
	}

	return epoch, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// RecentCalls visits every live record, newest first.
func (s *TelemetryService) RecentCalls(fn func(*telemetry.APICall)) {
	s.calls.Scan(fn)
}

// Recent returns up to limit of the newest records as copies.
func (s *TelemetryService) Recent(limit int) []telemetry.APICall {
	out := make([]telemetry.APICall, 0, limit)
	s.calls.Scan(func(c *telemetry.APICall) {
		if len(out) < limit {
			out = append(out, *c)
		}
	})
	return out
}

// Settings returns a copy of the live configuration.
func (s *TelemetryService) Settings() settings.Settings {
	return epochcell.Read(s.settings, func(v *settings.Settings) settings.Settings {
		return *v
	})
}

//
// ──────────────────────────────────────────────────────────
// Reclamation
// ──────────────────────────────────────────────────────────
//

// ReclaimRetired drops every parked settings value whose retirement
// epoch no reader can still see. Intended for a background job.
func (s *TelemetryService) ReclaimRetired() int {
	s.retiredMu.Lock()
	defer s.retiredMu.Unlock()

	kept := s.retired[:0]
	freed := 0
	for _, r := range s.retired {
		if s.settings.CanReclaim(r.epoch) {
			freed++
			continue
		}
		kept = append(kept, r)
	}
	s.retired = kept
	return freed
}

// RetiredBacklog reports how many displaced values are still parked.
func (s *TelemetryService) RetiredBacklog() int {
	s.retiredMu.Lock()
	defer s.retiredMu.Unlock()
	return len(s.retired)
}

// DrainTrash releases log batches evicted from the history ring.
func (s *TelemetryService) DrainTrash() int {
	return s.calls.DrainTrash()
}

// Skipped reports how many calls sampling, or a closed settings cell,
// has dropped since start.
func (s *TelemetryService) Skipped() uint64 {
	return s.skipped.Load()
}
