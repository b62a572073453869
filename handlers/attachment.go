package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Attachment is a binary payload received in a JSON body. Clients send it as
// a base64 string, a data URL, a plain string, an array of bytes or a
// serialised Node buffer ({"type":"Buffer","data":[...]}).
type Attachment []byte

// UnmarshalJSON normalises every supported encoding to raw bytes
func (a *Attachment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		decoded, err := decodeAttachmentString(s)
		if err != nil {
			return err
		}
		*a = decoded
	case '[':
		decoded, err := decodeByteArray(data)
		if err != nil {
			return err
		}
		*a = decoded
	case '{':
		var buf struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &buf); err != nil {
			return err
		}
		if buf.Type != "Buffer" {
			return fmt.Errorf("unsupported attachment object type %q", buf.Type)
		}
		decoded, err := decodeByteArray(buf.Data)
		if err != nil {
			return err
		}
		*a = decoded
	default:
		return fmt.Errorf("unsupported attachment encoding")
	}
	return nil
}

// Bytes returns the payload, or nil when empty
func (a Attachment) Bytes() []byte {
	if len(a) == 0 {
		return nil
	}
	return []byte(a)
}

func decodeAttachmentString(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		meta, payload := s[5:comma], s[comma+1:]
		if strings.HasSuffix(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		return []byte(payload), nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return []byte(s), nil
}

func decodeByteArray(data json.RawMessage) ([]byte, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("attachment data must be an array of bytes")
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("attachment byte %d out of range", v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// nullableString tells an absent JSON field apart from an explicit null
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
