package version

import "testing"

func TestString(t *testing.T) {
	saved := []string{Version, Commit, BuildTime}
	t.Cleanup(func() { Version, Commit, BuildTime = saved[0], saved[1], saved[2] })

	Version, Commit, BuildTime = "1.2.0", "unknown", "unknown"
	if got, want := String(), "receipt-printer 1.2.0"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	Commit, BuildTime = "abc123", "2024-05-01"
	if got, want := String(), "receipt-printer 1.2.0 (commit: abc123, built: 2024-05-01)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
