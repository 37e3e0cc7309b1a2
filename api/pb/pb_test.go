package pb

import "testing"

func TestCallRoundTrip(t *testing.T) {
	in := &Call{
		Method:       "GET",
		Path:         "/v1/items",
		Status:       200,
		LatencyNanos: 1250000,
		Bytes:        4096,
		TimeUnixNano: 1700000000000000000,
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var out Call
	if err := out.Unmarshal(b); err != nil {
		t.Fatal(err)
	}
	if out != *in {
		t.Errorf("round trip mismatch: %+v vs %+v", out, *in)
	}
}

func TestRecentResponseRepeated(t *testing.T) {
	in := &RecentResponse{
		Calls: []*Call{
			{Method: "GET", Path: "/a", Status: 200},
			{Method: "POST", Path: "/b", Status: 500},
		},
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var out RecentResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatal(err)
	}
	if len(out.Calls) != 2 || out.Calls[1].Status != 500 {
		t.Errorf("repeated field mismatch: %+v", out)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	// A Settings frame plus an unknown trailing varint field 15.
	in := &Settings{SampleEvery: 3, Revision: "r1"}
	b, err := in.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	b = append(b, 0x78, 0x2a) // field 15, varint 42

	var out Settings
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("unknown field should be skipped: %v", err)
	}
	if out.SampleEvery != 3 || out.Revision != "r1" {
		t.Errorf("known fields lost around unknown field: %+v", out)
	}
}

func TestCodecRejectsForeignType(t *testing.T) {
	var c Codec
	if _, err := c.Marshal(42); err == nil {
		t.Error("codec should refuse non-Message values")
	}
	if err := c.Unmarshal(nil, "nope"); err == nil {
		t.Error("codec should refuse non-Message targets")
	}
}
