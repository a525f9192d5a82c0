package status

import (
	"sync"
	"time"
)

// PrinterStatusChangeCallback is called when printer connection status changes
type PrinterStatusChangeCallback func(connected bool)

var (
	mu               sync.RWMutex
	printerConnected bool
	lastChange       time.Time
	printerCallbacks []PrinterStatusChangeCallback
)

// SetPrinterConnected records the connection state. Callbacks only run when
// the state actually changes.
func SetPrinterConnected(connected bool) {
	mu.Lock()
	previous := printerConnected
	printerConnected = connected
	if previous != connected {
		lastChange = time.Now()
	}
	callbacks := make([]PrinterStatusChangeCallback, len(printerCallbacks))
	copy(callbacks, printerCallbacks)
	mu.Unlock()

	if previous == connected {
		return
	}
	for _, callback := range callbacks {
		if callback != nil {
			callback(connected)
		}
	}
}

// IsPrinterConnected returns the printer connection status
func IsPrinterConnected() bool {
	mu.RLock()
	defer mu.RUnlock()
	return printerConnected
}

// LastChange is when the connection state last flipped.
func LastChange() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return lastChange
}

// RegisterPrinterStatusChangeCallback registers a callback for printer status changes
func RegisterPrinterStatusChangeCallback(callback PrinterStatusChangeCallback) {
	mu.Lock()
	defer mu.Unlock()
	printerCallbacks = append(printerCallbacks, callback)
}

// reset is for tests.
func reset() {
	mu.Lock()
	printerConnected = false
	lastChange = time.Time{}
	printerCallbacks = nil
	mu.Unlock()
}
