package output

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"git.massivebox.net/massivebox/go-catprinter"
)

// ensureBluetoothSafeToUse refuses BLE access from a plain macOS CLI
// process, where CoreBluetooth aborts without Info.plist usage strings.
func ensureBluetoothSafeToUse() error {
	if runtime.GOOS != "darwin" {
		return nil
	}
	exe, err := os.Executable()
	if err == nil && strings.Contains(exe, ".app/Contents/MacOS/") {
		return nil
	}
	return fmt.Errorf("bluetooth on macOS requires running from an .app bundle; use PRINTER_TYPE=escpos or usb")
}

// newCatPrinterClientWithRetry retries while the macOS central manager is
// still in its unknown state right after startup.
func newCatPrinterClientWithRetry() (*catprinter.Client, error) {
	var lastErr error
	for attempt := 0; attempt < 6; attempt++ {
		c, err := catprinter.NewClient()
		if err == nil {
			return c, nil
		}
		lastErr = err
		if !isTransientDeviceInitError(err) {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if runtime.GOOS == "darwin" && strings.Contains(lastErr.Error(), "central manager has invalid state") {
		return nil, fmt.Errorf("%w (is bluetooth enabled and permitted for this app?)", lastErr)
	}
	return nil, lastErr
}

func isTransientDeviceInitError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "central manager has invalid state") && strings.Contains(msg, "have=0")
}
