package settings

import "testing"

func TestEncodeDecode(t *testing.T) {
	in := &Settings{
		SampleEvery: 5,
		MaxPathLen:  256,
		Broadcast:   true,
		Revision:    "2026-08-rollout",
	}
	out, err := Decode(in.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestDecodeRejectsShortRecord(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Error("short record should not decode")
	}
}

func TestValidate(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}

	s.SampleEvery = 0
	if err := s.Validate(); err == nil {
		t.Error("SampleEvery=0 should be rejected")
	}

	s = Default()
	s.MaxPathLen = 0
	if err := s.Validate(); err == nil {
		t.Error("MaxPathLen=0 should be rejected")
	}
}
