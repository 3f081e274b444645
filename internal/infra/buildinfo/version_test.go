package buildinfo

import "testing"

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" || info.BuildTime == "" || info.GoVersion == "" {
		t.Fatalf("Get returned empty fields: %+v", info)
	}
}

func TestString(t *testing.T) {
	want := Version + " (" + Commit + ") built at " + BuildTime
	if got := String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
