// Package pb holds the hand-maintained wire types for the Telemetry
// RPC surface. Frames are proto3-compatible (see telemetry.proto) and
// built directly on the protowire encoding, the same way the journal
// hand-rolls its record framing.
package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is what the codec moves across the wire.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

// skipField discards one unknown field so schema growth stays
// backward compatible.
func skipField(b []byte, num protowire.Number, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

// -------------------- Call --------------------

type Call struct {
	Method       string
	Path         string
	Status       int32
	LatencyNanos int64
	Bytes        int64
	TimeUnixNano int64
}

func (m *Call) Marshal() ([]byte, error) {
	var b []byte
	if m.Method != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Method)
	}
	if m.Path != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Path)
	}
	if m.Status != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.Status)))
	}
	if m.LatencyNanos != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.LatencyNanos))
	}
	if m.Bytes != 0 {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Bytes))
	}
	if m.TimeUnixNano != 0 {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.TimeUnixNano))
	}
	return b, nil
}

func (m *Call) Unmarshal(b []byte) error {
	*m = Call{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Method = v
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Path = v
			b = b[n:]
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Status = int32(v)
			b = b[n:]
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.LatencyNanos = int64(v)
			b = b[n:]
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Bytes = int64(v)
			b = b[n:]
		case num == 6 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.TimeUnixNano = int64(v)
			b = b[n:]
		default:
			n, err := skipField(b, num, typ)
			if err != nil {
				return err
			}
			b = b[n:]
		}
	}
	return nil
}

// -------------------- Record --------------------

type RecordRequest struct {
	Call *Call
}

func (m *RecordRequest) Marshal() ([]byte, error) {
	var b []byte
	if m.Call != nil {
		inner, err := m.Call.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return b, nil
}

func (m *RecordRequest) Unmarshal(b []byte) error {
	*m = RecordRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Call = new(Call)
			if err := m.Call.Unmarshal(v); err != nil {
				return err
			}
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

type RecordResponse struct {
	Accepted bool
}

func (m *RecordResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Accepted {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

func (m *RecordResponse) Unmarshal(b []byte) error {
	*m = RecordResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Accepted = v != 0
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// -------------------- Recent --------------------

type RecentRequest struct {
	Limit int32
}

func (m *RecentRequest) Marshal() ([]byte, error) {
	var b []byte
	if m.Limit != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.Limit)))
	}
	return b, nil
}

func (m *RecentRequest) Unmarshal(b []byte) error {
	*m = RecentRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Limit = int32(v)
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

type RecentResponse struct {
	Calls []*Call
}

func (m *RecentResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, c := range m.Calls {
		inner, err := c.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return b, nil
}

func (m *RecentResponse) Unmarshal(b []byte) error {
	*m = RecentResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			c := new(Call)
			if err := c.Unmarshal(v); err != nil {
				return err
			}
			m.Calls = append(m.Calls, c)
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// -------------------- Settings --------------------

type GetSettingsRequest struct{}

func (m *GetSettingsRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *GetSettingsRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

type Settings struct {
	SampleEvery uint32
	MaxPathLen  uint32
	Broadcast   bool
	Revision    string
}

func (m *Settings) Marshal() ([]byte, error) {
	var b []byte
	if m.SampleEvery != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.SampleEvery))
	}
	if m.MaxPathLen != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.MaxPathLen))
	}
	if m.Broadcast {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.Revision != "" {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, m.Revision)
	}
	return b, nil
}

func (m *Settings) Unmarshal(b []byte) error {
	*m = Settings{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.SampleEvery = uint32(v)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.MaxPathLen = uint32(v)
			b = b[n:]
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Broadcast = v != 0
			b = b[n:]
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Revision = v
			b = b[n:]
		default:
			n, err := skipField(b, num, typ)
			if err != nil {
				return err
			}
			b = b[n:]
		}
	}
	return nil
}

type SettingsResponse struct {
	Settings *Settings
}

func (m *SettingsResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Settings != nil {
		inner, err := m.Settings.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return b, nil
}

func (m *SettingsResponse) Unmarshal(b []byte) error {
	*m = SettingsResponse{}
	return unmarshalSettingsField(b, &m.Settings)
}

type UpdateSettingsRequest struct {
	Settings *Settings
}

func (m *UpdateSettingsRequest) Marshal() ([]byte, error) {
	var b []byte
	if m.Settings != nil {
		inner, err := m.Settings.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, inner)
	}
	return b, nil
}

func (m *UpdateSettingsRequest) Unmarshal(b []byte) error {
	*m = UpdateSettingsRequest{}
	return unmarshalSettingsField(b, &m.Settings)
}

// unmarshalSettingsField parses a single embedded Settings at field 1.
func unmarshalSettingsField(b []byte, out **Settings) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s := new(Settings)
			if err := s.Unmarshal(v); err != nil {
				return err
			}
			*out = s
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

type UpdateSettingsResponse struct {
	RetireEpoch uint64
}

func (m *UpdateSettingsResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.RetireEpoch != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, m.RetireEpoch)
	}
	return b, nil
}

func (m *UpdateSettingsResponse) Unmarshal(b []byte) error {
	*m = UpdateSettingsResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.RetireEpoch = v
			b = b[n:]
			continue
		}
		n, err := skipField(b, num, typ)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
