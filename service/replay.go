package service

import (
	"log"

	"helix/domain/settings"
	"helix/infra/journal"
)

/*
ReplaySettings rebuilds the live configuration from the journal.

IMPORTANT:
- This MUST run before the cell is constructed and traffic admitted.
- Only the newest intact record matters; earlier ones are superseded.
*/

func ReplaySettings(dir string) (*settings.Settings, uint64, error) {
	latest := settings.Default()

	lastSeq, err := journal.Replay(dir, func(rec *journal.Record) error {
		s, err := settings.Decode(rec.Data)
		if err != nil {
			return err
		}
		latest = s
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	log.Printf("[service] settings replay complete (last seq = %d, revision = %q)", lastSeq, latest.Revision)
	return latest, lastSeq, nil
}
