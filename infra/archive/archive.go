package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// Record is one outbox entry: a configuration-change event awaiting
// publication, with its delivery state.
type Record struct {
	State       State
	Retries     uint32
	LastAttempt int64
	EventID     string
	Payload     []byte
}

// binary encoding: [state:1][retries:4][lastAttempt:8][idLen:2][id][payload]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+2+len(r.EventID)+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint16(buf[13:15], uint16(len(r.EventID)))
	copy(buf[15:], r.EventID)
	copy(buf[15+len(r.EventID):], r.Payload)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) < 15 {
		return Record{}, errors.New("archive: record too short")
	}
	idLen := int(binary.BigEndian.Uint16(b[13:15]))
	if len(b) < 15+idLen {
		return Record{}, errors.New("archive: bad event id length")
	}
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		EventID:     string(b[15 : 15+idLen]),
		Payload:     append([]byte(nil), b[15+idLen:]...),
	}, nil
}

// -------------------- Store --------------------

// Store is a pebble-backed outbox of change events. The service writes
// NEW entries; the broadcaster walks them, publishes, and advances the
// state to SENT then ACKED.
type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // delivery state must survive a crash
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// -------------------- API --------------------

// PutNew inserts a fresh outbox entry keyed by the journal sequence.
func (s *Store) PutNew(seq uint64, eventID string, payload []byte) error {
	rec := Record{
		State:   StateNew,
		EventID: eventID,
		Payload: payload,
	}
	return s.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// UpdateState rewrites an entry's delivery state.
func (s *Store) UpdateState(seq uint64, state State) error {
	rec, err := s.Get(seq)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Retries++
	rec.LastAttempt = time.Now().UnixNano()
	return s.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (s *Store) MarkSent(seq uint64) error  { return s.UpdateState(seq, StateSent) }
func (s *Store) MarkAcked(seq uint64) error { return s.UpdateState(seq, StateAcked) }

// Delete removes an entry, normally after it is ACKED.
func (s *Store) Delete(seq uint64) error {
	return s.db.Delete(keyFor(seq), pebble.Sync)
}

func (s *Store) Get(seq uint64) (Record, error) {
	val, closer, err := s.db.Get(keyFor(seq))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeRecord(val)
}

// -------------------- Scan --------------------

// ScanByState iterates all entries in the given state in key order.
func (s *Store) ScanByState(state State, fn func(seq uint64, rec Record) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("event/"),
		UpperBound: []byte("event/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(seq, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("event/%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("event/"))), "%d", &seq)
	return seq, err
}
