// Command schema writes the JSON schema of every message a client may send,
// keyed by envelope type, for validation at the edge.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"arena-server/internal/protocol"
)

// inbound lists client message payloads by envelope type.
var inbound = []struct {
	typ     string
	payload any
}{
	{protocol.MsgJoinGame, new(protocol.JoinGame)},
	{protocol.MsgPlayerInput, new(protocol.PlayerInput)},
	{protocol.MsgPlayerShoot, new(protocol.PlayerShoot)},
	{protocol.MsgSwitchWeapon, new(protocol.SwitchWeapon)},
	{protocol.MsgCashOut, new(struct{})},
	{protocol.MsgRespawn, new(struct{})},
	{protocol.MsgChat, new(protocol.ChatMessage)},
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}
	if err := writeSchema(outPath, buildSchemas()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	out := make(map[string]*jsonschema.Schema, len(inbound))
	for _, m := range inbound {
		s := reflector.Reflect(m.payload)
		s.Title = m.typ
		out[m.typ] = s
	}
	return out
}

func writeSchema(outPath string, schemas map[string]*jsonschema.Schema) error {
	data, err := json.MarshalIndent(schemas, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
