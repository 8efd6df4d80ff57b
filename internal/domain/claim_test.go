package domain

import (
	"encoding/json"
	"testing"
)

func TestEventIDUnmarshalJSON(t *testing.T) {
	valid := map[string]EventID{
		`999`:            EventIDFromInt(999),
		`0`:              EventIDFromInt(0),
		`"999"`:          EventIDFromString("999"),
		`"launch-night"`: EventIDFromString("launch-night"),
	}
	for input, want := range valid {
		var got EventID
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("%s: %v", input, err)
		}
		if got != want {
			t.Fatalf("%s: expected %+v, got %+v", input, want, got)
		}
	}

	for _, input := range []string{`-5`, `"   "`, `""`, `9.5`, `true`, `null`} {
		var got EventID
		if err := json.Unmarshal([]byte(input), &got); err == nil {
			t.Fatalf("%s: expected error, got %+v", input, got)
		}
	}
}

func TestEventIDValid(t *testing.T) {
	cases := map[string]struct {
		id   EventID
		want bool
	}{
		"positive":   {EventIDFromInt(1), true},
		"zero":       {EventIDFromInt(0), true},
		"negative":   {EventIDFromInt(-1), false},
		"string":     {EventIDFromString("gala"), true},
		"blank":      {EventIDFromString(" \t"), false},
		"zero value": {EventID{}, false},
	}
	for name, tc := range cases {
		if got := tc.id.Valid(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}
