package cdp

import "github.com/bytedance/sonic"

// request is the outbound wire frame: {id, method, params, sessionId?}.
type request struct {
	ID        int64  `json:"id"`
	Method    string `json:"method"`
	Params    any    `json:"params,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// frame is the inbound wire frame. A frame with a non-zero ID and either
// Result or Error set is a reply to a pending call; a frame with Method
// set and no reply fields is an event.
type frame struct {
	ID        int64           `json:"id"`
	Method    string          `json:"method,omitempty"`
	Params    sonicRawMessage `json:"params,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Result    sonicRawMessage `json:"result,omitempty"`
	Error     *CallError      `json:"error,omitempty"`
}

// Event is the payload delivered to an Transport.On listener: a CDP event
// frame stripped of whatever transport-internal bookkeeping produced it.
type Event struct {
	Method    string
	Params    []byte
	SessionID string
}

// sonicRawMessage mirrors json.RawMessage but decodes/encodes through
// sonic so the hottest CDP wire path (screencast frames, input echoes)
// avoids the standard library's reflection-heavy codec.
type sonicRawMessage []byte

func (m sonicRawMessage) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *sonicRawMessage) UnmarshalJSON(data []byte) error {
	*m = append((*m)[:0], data...)
	return nil
}

func marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
