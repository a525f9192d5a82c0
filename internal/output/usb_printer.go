package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"go.uber.org/zap"
)

// dotsPerMM is the resolution of common 203 dpi thermal heads.
const dotsPerMM = 8

// USBPrinter はUSB接続プリンター（CUPS経由）の実装
type USBPrinter struct {
	printerName string
	config      PrinterConfig
	tempDir     string
}

// SystemPrinter はシステムプリンター情報
type SystemPrinter struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// NewUSBPrinter は新しいUSBプリンターインスタンスを作成する
func NewUSBPrinter(config PrinterConfig) (*USBPrinter, error) {
	if config.USBPrinterName == "" {
		return nil, fmt.Errorf("USB printer name is required")
	}

	tempDir := filepath.Join(os.TempDir(), "receipt-printer")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &USBPrinter{
		printerName: config.USBPrinterName,
		config:      config,
		tempDir:     tempDir,
	}, nil
}

// Connect はプリンターの存在確認のみ（CUPSは常時接続不要）
func (p *USBPrinter) Connect() error {
	if !isSystemPrinterAvailable(p.printerName) {
		return fmt.Errorf("printer %s is not available", p.printerName)
	}
	logger.Info("USB printer connection check passed", zap.String("printer", p.printerName))
	return nil
}

// Print saves the raster as PNG and hands it to lpr with a media size
// matching the receipt length.
func (p *USBPrinter) Print(img image.Image) error {
	finalImg := img
	if p.config.RotatePrint {
		logger.Info("Rotating image 180 degrees for USB printer")
		finalImg = rotateImage180(img)
	}

	tempFile := filepath.Join(p.tempDir, fmt.Sprintf("receipt_%d.png", time.Now().UnixNano()))
	if err := writePNG(tempFile, finalImg); err != nil {
		return err
	}
	defer os.Remove(tempFile)

	args := lprArgs(p.printerName, finalImg.Bounds(), tempFile)
	output, err := exec.Command("lpr", args...).CombinedOutput()
	if err != nil {
		logger.Error("lpr command failed",
			zap.String("printer", p.printerName),
			zap.Error(err),
			zap.String("output", string(output)))
		return fmt.Errorf("lpr failed: %w (output: %s)", err, string(output))
	}

	logger.Info("USB printer: print job sent",
		zap.String("printer", p.printerName),
		zap.Int("height_px", finalImg.Bounds().Dy()))
	return nil
}

// lprArgs sizes the custom media from the raster at dotsPerMM.
func lprArgs(printer string, bounds image.Rectangle, file string) []string {
	widthMM := (bounds.Dx() + dotsPerMM - 1) / dotsPerMM
	heightMM := (bounds.Dy() + dotsPerMM - 1) / dotsPerMM
	return []string{
		"-P", printer,
		"-o", fmt.Sprintf("media=Custom.%dx%dmm", widthMM, heightMM),
		file,
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}

// Disconnect は何もしない（CUPSは切断不要）
func (p *USBPrinter) Disconnect() error {
	return nil
}

func (p *USBPrinter) Type() PrinterType {
	return PrinterTypeUSB
}

func (p *USBPrinter) IsConnected() bool {
	return isSystemPrinterAvailable(p.printerName)
}

func isSystemPrinterAvailable(name string) bool {
	return exec.Command("lpstat", "-p", name).Run() == nil
}

// GetSystemPrinters はCUPSに登録されているプリンター一覧を取得
func GetSystemPrinters() ([]SystemPrinter, error) {
	output, err := exec.Command("lpstat", "-p").Output()
	if err != nil {
		logger.Error("lpstat command failed", zap.Error(err))
		return nil, fmt.Errorf("lpstat failed: %w", err)
	}
	return parseLpstat(string(output)), nil
}

// parseLpstat reads lines like "printer NAME is idle.  enabled since ...".
func parseLpstat(out string) []SystemPrinter {
	var printers []SystemPrinter
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "printer ") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		status := "unknown"
		if len(parts) >= 4 {
			status = strings.Join(parts[2:], " ")
		}
		printers = append(printers, SystemPrinter{Name: parts[1], Status: status})
	}
	return printers
}
