package status

import "testing"

func TestSetPrinterConnectedCallbacks(t *testing.T) {
	reset()
	t.Cleanup(reset)

	var got []bool
	RegisterPrinterStatusChangeCallback(func(connected bool) {
		got = append(got, connected)
	})

	SetPrinterConnected(true)
	SetPrinterConnected(true)
	SetPrinterConnected(false)

	if len(got) != 2 {
		t.Fatalf("callbacks = %v, want 2 calls", got)
	}
	if !got[0] || got[1] {
		t.Fatalf("callbacks = %v, want [true false]", got)
	}
	if IsPrinterConnected() {
		t.Fatal("IsPrinterConnected() = true, want false")
	}
	if LastChange().IsZero() {
		t.Fatal("LastChange() is zero after a change")
	}
}
