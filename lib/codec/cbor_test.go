// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleRequest is a representative hangar protocol message using the
// cbor struct tags every wire type carries.
type sampleRequest struct {
	Action  string `cbor:"action"`
	DroneID string `cbor:"drone_id,omitempty"`
	Text    string `cbor:"text,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRequest{
		Action:  "send-prompt",
		DroneID: "drone-7f3a",
		Text:    "summarize the build failure",
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	message := sampleRequest{
		Action:  "snapshot",
		DroneID: "drone-0001",
	}

	first, err := Marshal(message)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(message)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	messages := []sampleRequest{
		{Action: "create-drone", Text: "lint the proxy package"},
		{Action: "send-prompt", DroneID: "drone-2", Text: "run the tests"},
		{Action: "snapshot"},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, message := range messages {
		if err := encoder.Encode(message); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range messages {
		var got sampleRequest
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode message %d: %v", i, err)
		}
		if got != want {
			t.Errorf("message %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withDrone := sampleRequest{Action: "a", DroneID: "x", Text: "t"}
	withoutDrone := sampleRequest{Action: "a", Text: "t"}

	dataWith, err := Marshal(withDrone)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutDrone)
	if err != nil {
		t.Fatal(err)
	}

	// The encoding without the drone field should be shorter because
	// the omitted field is not present.
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var message sampleRequest
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &message)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// Forward compatibility: a response carrying fields this build
	// does not know about must still decode.
	data, err := Marshal(map[string]any{
		"action":       "snapshot",
		"drone_id":     "drone-9",
		"future_field": true,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Action != "snapshot" || decoded.DroneID != "drone-9" {
		t.Errorf("decoded = %+v, want action=snapshot drone_id=drone-9", decoded)
	}
}

func TestAnyTargetDecodesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"phase": "ready", "busy": false})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if asMap["phase"] != "ready" {
		t.Errorf("phase = %v, want ready", asMap["phase"])
	}
}

func BenchmarkMarshal(b *testing.B) {
	message := sampleRequest{
		Action:  "send-prompt",
		DroneID: "drone-7f3a",
		Text:    "summarize the build failure",
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(message)
	}
}
