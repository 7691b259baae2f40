package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Envelope wraps every message: t is the message type, p the raw payload.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// Encode builds a JSON envelope around payload.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty message type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// DecodeEnvelope parses a JSON envelope without touching its payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: empty frame")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return e, nil
}

// DecodePayload unmarshals the envelope payload into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

type binaryFrame struct {
	T string `json:"t"`
	P any    `json:"p"`
}

type rawBinaryFrame struct {
	T string             `json:"t"`
	P msgpack.RawMessage `json:"p"`
}

// EncodeBinary builds a msgpack envelope around payload. Field names follow
// the json tags so both encodings share one schema.
func EncodeBinary(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode binary: empty message type")
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(binaryFrame{T: t, P: payload}); err != nil {
		return nil, fmt.Errorf("encode binary %q: %w", t, err)
	}
	return buf.Bytes(), nil
}

// DecodeBinary is the inverse of EncodeBinary.
func DecodeBinary[T any](b []byte) (string, T, error) {
	var out T
	var frame rawBinaryFrame
	if err := newBinaryDecoder(b).Decode(&frame); err != nil {
		return "", out, fmt.Errorf("decode binary envelope: %w", err)
	}
	if len(frame.P) == 0 {
		return frame.T, out, fmt.Errorf("empty payload for type %q", frame.T)
	}
	if err := newBinaryDecoder(frame.P).Decode(&out); err != nil {
		return frame.T, out, fmt.Errorf("decode binary %q: %w", frame.T, err)
	}
	return frame.T, out, nil
}

func newBinaryDecoder(b []byte) *msgpack.Decoder {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec
}
