package archive

import (
	"bytes"
	"testing"
)

func TestPutGetStates(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.PutNew(1, "evt-1", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if rec.State != StateNew || rec.EventID != "evt-1" || !bytes.Equal(rec.Payload, []byte("payload")) {
		t.Errorf("unexpected record: %+v", rec)
	}

	if err := s.MarkSent(1); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.Get(1)
	if rec.State != StateSent || rec.Retries != 1 {
		t.Errorf("expected SENT with one attempt, got %+v", rec)
	}

	if err := s.MarkAcked(1); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.Get(1)
	if rec.State != StateAcked {
		t.Errorf("expected ACKED, got %v", rec.State)
	}
}

func TestScanByState(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for seq := uint64(1); seq <= 5; seq++ {
		if err := s.PutNew(seq, "evt", []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.MarkSent(2)
	_ = s.MarkSent(4)

	var news []uint64
	err = s.ScanByState(StateNew, func(seq uint64, rec Record) error {
		news = append(news, seq)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(news) != 3 || news[0] != 1 || news[1] != 3 || news[2] != 5 {
		t.Errorf("expected NEW entries [1 3 5], got %v", news)
	}
}

func TestDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_ = s.PutNew(7, "evt", nil)
	if err := s.Delete(7); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(7); err == nil {
		t.Error("expected lookup of a deleted entry to fail")
	}
}
