package pb

import "fmt"

// CodecName identifies the hand-rolled wire codec. Both the server
// and every client must force it; the frames are proto3-compatible
// but the types do not implement proto.Message.
const CodecName = "helixwire"

// Codec satisfies grpc's encoding.Codec for Message values.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("pb: cannot marshal %T", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("pb: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}

func (Codec) Name() string { return CodecName }
