package env

import (
	"os"
	"strconv"
	"strings"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// EnvValue holds the process configuration.
type EnvValue struct {
	// プリンター設定
	PrinterType    string
	PrinterDevice  string
	USBPrinterName string
	PrinterAddress *string
	BestQuality    bool
	Dither         bool
	AutoRotate     bool
	BlackPoint     float32
	RotatePrint    bool
	DryRunMode     bool

	// 動作設定
	DebugMode   bool
	DebugOutput bool
	ServerPort  int
	DataDir     string

	// レイアウト設定
	PageWidth   int
	FontRegular string
	FontBold    string
}

var Value = defaults()

func defaults() EnvValue {
	return EnvValue{
		PrinterType:   "escpos",
		PrinterDevice: "/dev/usb/lp0",
		BestQuality:   true,
		Dither:        true,
		ServerPort:    8080,
		PageWidth:     384,
	}
}

// LoadEnv reads an optional .env file and then the process environment into Value.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	v := defaults()
	v.PrinterType = getString("PRINTER_TYPE", v.PrinterType)
	v.PrinterDevice = getString("PRINTER_DEVICE", v.PrinterDevice)
	v.USBPrinterName = getString("USB_PRINTER_NAME", "")
	if addr := getString("PRINTER_ADDRESS", ""); addr != "" {
		v.PrinterAddress = &addr
	}
	v.BestQuality = getBool("BEST_QUALITY", v.BestQuality)
	v.Dither = getBool("DITHER", v.Dither)
	v.AutoRotate = getBool("AUTO_ROTATE", false)
	v.BlackPoint = float32(getFloat("BLACK_POINT", 0))
	v.RotatePrint = getBool("ROTATE_PRINT", false)
	v.DryRunMode = getBool("DRY_RUN_MODE", false)
	v.DebugMode = getBool("DEBUG_MODE", false)
	v.DebugOutput = getBool("DEBUG_OUTPUT", false)
	v.ServerPort = getInt("SERVER_PORT", v.ServerPort)
	v.DataDir = getString("DATA_DIR", "")
	v.PageWidth = getInt("PAGE_WIDTH", v.PageWidth)
	v.FontRegular = getString("FONT_REGULAR", "")
	v.FontBold = getString("FONT_BOLD", "")
	Value = v

	logger.Debug("Environment loaded",
		zap.String("printer_type", v.PrinterType),
		zap.Bool("dry_run", v.DryRunMode),
		zap.Int("page_width", v.PageWidth))
}

func getString(key, def string) string {
	if s, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(s)
	}
	return def
}

func getBool(key string, def bool) bool {
	s, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		logger.Warn("Invalid boolean in environment", zap.String("key", key), zap.String("value", s))
		return def
	}
	return b
}

func getInt(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		logger.Warn("Invalid integer in environment", zap.String("key", key), zap.String("value", s))
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	s, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		logger.Warn("Invalid number in environment", zap.String("key", key), zap.String("value", s))
		return def
	}
	return f
}
