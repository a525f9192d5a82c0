package output

import (
	"fmt"
	"image"
	"time"

	"git.massivebox.net/massivebox/go-catprinter"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
)

// BluetoothPrinter はBluetooth Cat プリンターの実装
type BluetoothPrinter struct {
	client    *catprinter.Client
	opts      *catprinter.PrinterOptions
	address   string
	connected bool
	config    PrinterConfig
}

// BluetoothDevice is a printer found by a scan.
type BluetoothDevice struct {
	MAC  string `json:"mac_address"`
	Name string `json:"name"`
}

// NewBluetoothPrinter は新しいBluetoothプリンターインスタンスを作成する
func NewBluetoothPrinter(config PrinterConfig) (*BluetoothPrinter, error) {
	if config.BluetoothAddress == "" {
		return nil, fmt.Errorf("bluetooth address is required")
	}
	return &BluetoothPrinter{address: config.BluetoothAddress, config: config}, nil
}

// Connect はプリンターに接続する
func (p *BluetoothPrinter) Connect() error {
	if err := ensureBluetoothSafeToUse(); err != nil {
		return err
	}

	if p.client != nil {
		p.Disconnect()
		// Bluetoothリソースの解放を待つ
		time.Sleep(2 * time.Second)
	}

	instance, err := newCatPrinterClientWithRetry()
	if err != nil {
		return fmt.Errorf("failed to create catprinter client: %w", err)
	}
	p.client = instance

	p.opts = catprinter.NewOptions().
		SetBestQuality(p.config.BestQuality).
		SetDither(p.config.Dither).
		SetAutoRotate(p.config.AutoRotate).
		SetBlackPoint(p.config.BlackPoint)

	logger.Info("Connecting to Bluetooth printer", zap.String("address", p.address))
	if err := p.client.Connect(p.address); err != nil {
		return fmt.Errorf("failed to connect to printer: %w", err)
	}

	// BLE接続直後のネゴシエーション完了を待つ
	time.Sleep(time.Second)
	p.connected = true
	return nil
}

// Print は画像を印刷する
func (p *BluetoothPrinter) Print(img image.Image) error {
	if !p.connected || p.client == nil {
		return fmt.Errorf("printer not connected")
	}

	finalImg := img
	if p.config.RotatePrint {
		finalImg = rotateImage180(img)
	}

	if err := p.client.Print(finalImg, p.opts, false); err != nil {
		return fmt.Errorf("failed to print: %w", err)
	}

	// Cat printers feed slowly; wait until the receipt is out before
	// the queue disconnects.
	wait := printWait(finalImg.Bounds().Dy())
	logger.Info("Print finished, waiting for paper feed",
		zap.Int("height_px", finalImg.Bounds().Dy()),
		zap.Duration("wait", wait))
	time.Sleep(wait)
	return nil
}

// printWait is 2s plus 1s per 60 rows, at least 3s.
func printWait(height int) time.Duration {
	sec := 2 + height/60
	if sec < 3 {
		sec = 3
	}
	return time.Duration(sec) * time.Second
}

// Disconnect はプリンター接続を切断する
func (p *BluetoothPrinter) Disconnect() error {
	if p.client == nil {
		return nil
	}
	if p.connected {
		logger.Info("Disconnecting Bluetooth printer")
		p.client.Disconnect()
		p.connected = false
	}
	p.client.Stop()
	p.client = nil
	return nil
}

func (p *BluetoothPrinter) Type() PrinterType {
	return PrinterTypeBluetooth
}

func (p *BluetoothPrinter) IsConnected() bool {
	return p.connected
}

// ScanBluetoothPrinters lists nearby cat printers.
func ScanBluetoothPrinters(timeout time.Duration) ([]BluetoothDevice, error) {
	if err := ensureBluetoothSafeToUse(); err != nil {
		return nil, err
	}
	c, err := newCatPrinterClientWithRetry()
	if err != nil {
		return nil, err
	}
	defer c.Stop()

	c.Timeout = timeout
	found, err := c.ScanDevices("")
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	devices := make([]BluetoothDevice, 0, len(found))
	for mac, name := range found {
		devices = append(devices, BluetoothDevice{MAC: mac, Name: string(name)})
	}
	logger.Info("Bluetooth scan finished", zap.Int("count", len(devices)))
	return devices, nil
}
