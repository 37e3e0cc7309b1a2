package journal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"helix/infra/sequence"
)

type Config struct {
	Dir         string
	SegmentSize int64
}

// Journal is a segmented append-only file log. Appends are framed with
// a CRC so a torn tail is detected on replay. A Journal is owned by a
// single writer; Replay may run on a quiescent directory.
type Journal struct {
	dir      string
	segSize  int64
	current  *segment
	segIndex int
	seq      *sequence.Sequencer
}

func Open(cfg Config) (*Journal, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = 2 * 1024 * 1024
	}

	files, err := filepath.Glob(filepath.Join(cfg.Dir, "segment-*.jnl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	// The newest segment can be empty right after a rotation, so the
	// resume point is the maximum over every segment. The segment
	// index comes from the newest filename: truncation may have
	// removed earlier segments.
	index := 0
	var lastSeq uint64
	if len(files) > 0 {
		newest := filepath.Base(files[len(files)-1])
		if _, err := fmt.Sscanf(newest, "segment-%06d.jnl", &index); err != nil {
			return nil, fmt.Errorf("journal: bad segment name %q: %w", newest, err)
		}
		for _, path := range files {
			seq, err := maxSeqInSegment(path)
			if err != nil {
				return nil, err
			}
			if seq > lastSeq {
				lastSeq = seq
			}
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &Journal{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: index,
		seq:      sequence.New(lastSeq),
	}, nil
}

// Append assigns the next sequence number to r and writes it durably.
//
// Frame: [seq:8][time:8][len:4][payload][crc:4]
// The CRC covers header and payload.
func (j *Journal) Append(r *Record) error {
	r.Seq = j.seq.Next()

	payloadLen := uint32(len(r.Data))
	buf := make([]byte, 8+8+4+payloadLen+4)

	binary.BigEndian.PutUint64(buf[0:8], r.Seq)
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[16:20], payloadLen)
	copy(buf[20:], r.Data)

	crc := CRC32(buf[:20+payloadLen])
	binary.BigEndian.PutUint32(buf[20+payloadLen:], crc)

	if err := j.current.append(buf); err != nil {
		return err
	}
	if err := j.current.sync(); err != nil {
		return err
	}

	if j.current.offset >= j.segSize {
		return j.rotate()
	}
	return nil
}

// LastSeq returns the sequence of the most recent append (or the value
// recovered from disk at open).
func (j *Journal) LastSeq() uint64 {
	return j.seq.Current()
}

func (j *Journal) rotate() error {
	_ = j.current.close()
	j.segIndex++

	seg, err := openSegment(j.dir, j.segIndex)
	if err != nil {
		return err
	}
	j.current = seg
	return nil
}

// TruncateBefore removes whole segments whose records all have
// sequence <= seq. The live segment is never removed.
func (j *Journal) TruncateBefore(seq uint64) error {
	files, err := filepath.Glob(filepath.Join(j.dir, "segment-*.jnl"))
	if err != nil {
		return err
	}
	live := filepath.Join(j.dir, filepath.Base(j.current.file.Name()))

	for _, path := range files {
		if path == live {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.current.close()
}
