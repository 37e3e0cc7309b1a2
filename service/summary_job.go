package service

import (
	"context"
	"log"
	"time"

	"helix/infra/kafka"
)

// StartSummaryJob periodically drains deferred log batches, reclaims
// retired settings values, and publishes one usage summary per window.
// producer may be nil; the housekeeping still runs.
func (s *TelemetryService) StartSummaryJob(
	ctx context.Context,
	producer *kafka.Producer,
	interval time.Duration,
) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				drained := s.DrainTrash()
				s.ReclaimRetired()

				if producer == nil {
					continue
				}

				sum := kafka.Summary{
					Window:       time.Now().UnixNano(),
					Calls:        s.recorded.Swap(0),
					Bytes:        s.bytes.Swap(0),
					Errors:       s.errored.Swap(0),
					MaxNanos:     s.maxLat.Swap(0),
					Revision:     s.Settings().Revision,
					DrainedLists: drained,
				}
				if err := producer.SendSummary(ctx, sum); err != nil {
					log.Printf("[summary] publish failed: %v", err)
				}
			}
		}
	}()
}
