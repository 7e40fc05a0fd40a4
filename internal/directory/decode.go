package directory

import "encoding/json"

// DecodeList extracts the items of a Graph collection envelope
// ({"value": [...]}).
func DecodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	var envelope struct {
		Value *[]json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &UnexpectedShapeError{Expected: "object with a value array", Err: err}
	}
	if envelope.Value == nil {
		return nil, &UnexpectedShapeError{Expected: "object with a value array"}
	}
	return *envelope.Value, nil
}

// DecodeArray decodes a bare JSON array, as returned by the Okta API.
func DecodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &UnexpectedShapeError{Expected: "array", Err: err}
	}
	if items == nil {
		return []json.RawMessage{}, nil
	}
	return items, nil
}

// DecodeObject decodes raw into v, reporting a mismatch as UnexpectedShapeError.
func DecodeObject(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &UnexpectedShapeError{Expected: "object", Err: err}
	}
	return nil
}
