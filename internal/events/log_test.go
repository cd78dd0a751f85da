package events

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLogSequencesAndRetains(t *testing.T) {
	log := NewLog(Config{Retain: 3})
	for i := 0; i < 5; i++ {
		log.Append(float64(i), 1, ShotFired{Shooter: "Player 1", Weapon: "normal", Angle: float64(45 + i)})
	}
	if log.LastSequence() != 5 || log.Len() != 3 {
		t.Fatalf("unexpected log state last=%d len=%d", log.LastSequence(), log.Len())
	}
	//1.- Readers resume from the last sequence they saw.
	recent := log.Since(3)
	if len(recent) != 2 || recent[0].Sequence != 4 || recent[1].Sequence != 5 {
		t.Fatalf("unexpected envelopes %+v", recent)
	}
	if recent[1].Kind() != KindShotFired {
		t.Fatalf("expected shot_fired kind, got %q", recent[1].Kind())
	}
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	original := Envelope{Sequence: 7, Clock: 12.5, Round: 2, Event: Damage{Attacker: "Computer", Victim: "Player 1", Amount: 22.5, HealthLost: 10, Source: "impact"}}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if wire["kind"] != string(KindDamage) || wire["seq"] != float64(7) {
		t.Fatalf("unexpected wire form %s", data)
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestEnvelopeRejectsUnknownKind(t *testing.T) {
	var env Envelope
	if err := json.Unmarshal([]byte(`{"seq":1,"kind":"teleport","payload":{}}`), &env); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestEventLoggingFields(t *testing.T) {
	fields := RoundEnded{Round: 2, Winner: "Computer", Reward: 500}.LoggingFields()
	if len(fields) != 3 || fields[1].Key != "winner" || fields[1].Value != "Computer" {
		t.Fatalf("unexpected fields %+v", fields)
	}
}
