package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Settings is the runtime configuration guarded by the epoch cell.
// A Settings value is immutable once published; updates swap in a
// fresh copy.
type Settings struct {
	// SampleEvery keeps one call in every N. 1 records everything.
	SampleEvery uint32
	// MaxPathLen truncates recorded paths beyond this many bytes.
	MaxPathLen uint32
	// Broadcast enables the outbox / Kafka pipeline for change events.
	Broadcast bool
	// Revision is an opaque tag chosen by the operator.
	Revision string
}

var ErrInvalid = errors.New("settings: invalid value")

// Default returns the configuration used before any update arrives.
func Default() *Settings {
	return &Settings{
		SampleEvery: 1,
		MaxPathLen:  512,
		Broadcast:   true,
		Revision:    "default",
	}
}

func (s *Settings) Validate() error {
	if s.SampleEvery == 0 {
		return fmt.Errorf("%w: SampleEvery must be >= 1", ErrInvalid)
	}
	if s.MaxPathLen == 0 {
		return fmt.Errorf("%w: MaxPathLen must be >= 1", ErrInvalid)
	}
	return nil
}

// Encode packs the settings for the journal.
// Layout: [sampleEvery:4][maxPathLen:4][broadcast:1][revLen:4][rev]
func (s *Settings) Encode() []byte {
	buf := make([]byte, 4+4+1+4+len(s.Revision))
	binary.BigEndian.PutUint32(buf[0:4], s.SampleEvery)
	binary.BigEndian.PutUint32(buf[4:8], s.MaxPathLen)
	if s.Broadcast {
		buf[8] = 1
	}
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(s.Revision)))
	copy(buf[13:], s.Revision)
	return buf
}

func Decode(b []byte) (*Settings, error) {
	if len(b) < 13 {
		return nil, fmt.Errorf("%w: short record", ErrInvalid)
	}
	n := binary.BigEndian.Uint32(b[9:13])
	if len(b) != int(13+n) {
		return nil, fmt.Errorf("%w: bad revision length", ErrInvalid)
	}
	return &Settings{
		SampleEvery: binary.BigEndian.Uint32(b[0:4]),
		MaxPathLen:  binary.BigEndian.Uint32(b[4:8]),
		Broadcast:   b[8] == 1,
		Revision:    string(b[13:]),
	}, nil
}
