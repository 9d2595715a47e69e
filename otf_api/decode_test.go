package otf_api

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestLocalTimeParsesKnownLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2026-09-01T10:30:00Z"`, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{`"2026-09-01T10:30:00"`, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{`"2026-09-01 10:30:00"`, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{`"2026-09-01"`, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var lt LocalTime
		if err := json.Unmarshal([]byte(tt.in), &lt); err != nil {
			t.Errorf("unmarshal %s returned error: %v", tt.in, err)
			continue
		}
		if !lt.Equal(tt.want) {
			t.Errorf("unmarshal %s = %v, want %v", tt.in, lt.Time, tt.want)
		}
	}
}

func TestLocalTimeEmptyAndGarbage(t *testing.T) {
	var lt LocalTime
	if err := json.Unmarshal([]byte(`""`), &lt); err != nil {
		t.Fatalf("empty string returned error: %v", err)
	}
	if !lt.IsZero() {
		t.Fatal("empty string should decode to the zero time")
	}

	if err := json.Unmarshal([]byte(`"next tuesday"`), &lt); err == nil {
		t.Fatal("garbage timestamp decoded without error")
	}
}

func TestLocalTimeMarshal(t *testing.T) {
	lt := LocalTime{time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)}
	out, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	if string(out) != `"2026-09-01T10:30:00"` {
		t.Fatalf("marshal = %s", out)
	}

	out, err = json.Marshal(LocalTime{})
	if err != nil {
		t.Fatalf("marshal zero returned error: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("marshal zero = %s, want null", out)
	}
}

func TestRawObjectGetAliases(t *testing.T) {
	obj, err := parseObject([]byte(`{"phoneNumber":"555","city":null}`))
	if err != nil {
		t.Fatalf("parseObject returned error: %v", err)
	}

	var phone string
	ok, err := obj.get(&phone, "phone", "phoneNumber")
	if err != nil || !ok {
		t.Fatalf("get = %v, %v, want found", ok, err)
	}
	if phone != "555" {
		t.Fatalf("phone = %q, want 555", phone)
	}

	// Explicit null reads as absent.
	var city string
	ok, err = obj.get(&city, "city")
	if err != nil || ok {
		t.Fatalf("get on null = %v, %v, want absent", ok, err)
	}
}

func TestRawObjectRequireNamesCanonicalKey(t *testing.T) {
	obj, _ := parseObject([]byte(`{}`))

	var s string
	err := obj.require(&s, "studioUUId", "id")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("require error = %v, want ValidationError", err)
	}
	if vErr.Field != "studioUUId" {
		t.Fatalf("Field = %q, want the first alias", vErr.Field)
	}
}

func TestRawObjectAt(t *testing.T) {
	obj, _ := parseObject([]byte(`{"coach":{"first_name":"Pat"}}`))

	var name string
	ok, err := obj.at(&name, "coach", "first_name")
	if err != nil || !ok {
		t.Fatalf("at = %v, %v, want found", ok, err)
	}
	if name != "Pat" {
		t.Fatalf("name = %q, want Pat", name)
	}

	ok, err = obj.at(&name, "missing", "first_name")
	if err != nil || ok {
		t.Fatalf("at through missing object = %v, %v, want absent without error", ok, err)
	}
}

func TestEnvelope(t *testing.T) {
	inner, err := envelope([]byte(`{"data":{"x":1}}`), "data")
	if err != nil {
		t.Fatalf("envelope returned error: %v", err)
	}
	if string(inner) != `{"x":1}` {
		t.Fatalf("inner = %s", inner)
	}

	_, err = envelope([]byte(`{"items":[]}`), "data")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("missing key error = %v, want ValidationError", err)
	}
}

func TestParseClockDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"04:30", 4*time.Minute + 30*time.Second, false},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second, false},
		{"00:00", 0, false},
		{"90", 0, true},
		{"a:b", 0, true},
	}
	for _, tt := range tests {
		got, err := parseClockDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseClockDuration(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClockDuration(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseClockDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResultValue(t *testing.T) {
	var v ResultValue
	if err := json.Unmarshal([]byte(`"12:34"`), &v); err != nil {
		t.Fatalf("string result returned error: %v", err)
	}
	if v != "12:34" {
		t.Fatalf("v = %q, want 12:34", v)
	}

	if err := json.Unmarshal([]byte(`512.5`), &v); err != nil {
		t.Fatalf("numeric result returned error: %v", err)
	}
	if v != "512.5" {
		t.Fatalf("v = %q, want 512.5", v)
	}
}

func TestKgToPounds(t *testing.T) {
	got := kgToPounds(68.0)
	if math.Abs(got-149.914) > 0.01 {
		t.Fatalf("kgToPounds(68) = %f, want about 149.91", got)
	}
}
