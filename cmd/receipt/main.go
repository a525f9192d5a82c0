// Command receipt renders a receipt definition to PNG or sends it to the
// configured printer.
//
//	receipt -o receipt.png ticket.yaml
//	receipt -print ticket.yaml
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/ferrytix/receipt-printer/internal/definition"
	"github.com/ferrytix/receipt-printer/internal/env"
	"github.com/ferrytix/receipt-printer/internal/output"
	"github.com/ferrytix/receipt-printer/internal/receipt"
	"github.com/ferrytix/receipt-printer/internal/render"
	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/ferrytix/receipt-printer/internal/version"
	"go.uber.org/zap"
)

// exit codes per failure class
const (
	exitUsage    = 2
	exitConfig   = 3
	exitLayout   = 4
	exitResource = 5
	exitPrint    = 6
)

func main() {
	var (
		outPath     = flag.String("o", "", "write the rendered receipt to this PNG file")
		doPrint     = flag.Bool("print", false, "send the receipt to the configured printer")
		width       = flag.Int("width", 0, "page width in pixels (default PAGE_WIDTH or 384)")
		showVersion = flag.Bool("version", false, "print version and exit")
		debug       = flag.Bool("debug", false, "verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: receipt [-o out.png] [-print] <definition.yaml | ->\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	logger.Init(*debug)
	defer logger.Sync()
	env.LoadEnv()

	if flag.NArg() != 1 || (*outPath == "" && !*doPrint) {
		flag.Usage()
		os.Exit(exitUsage)
	}

	specs, err := readDefinition(flag.Arg(0))
	if err != nil {
		fail(err)
	}

	opts := render.OptionsFromEnv()
	if *width > 0 {
		opts.PageWidth = *width
	}
	r, err := render.New(opts)
	if err != nil {
		fail(err)
	}
	defer r.Close()

	img, err := r.Render(specs)
	if err != nil {
		fail(err)
	}

	if *outPath != "" {
		if err := writePNG(*outPath, img); err != nil {
			fail(err)
		}
		logger.Info("Receipt written", zap.String("path", *outPath), zap.Int("height", img.Bounds().Dy()))
	}

	if *doPrint {
		if env.Value.DryRunMode {
			logger.Info("Dry-run mode: skipping actual printing")
			return
		}
		if err := output.PrintDirect(output.ConfigFromEnv(), img); err != nil {
			logger.Error("Print failed", zap.Error(err))
			os.Exit(exitPrint)
		}
	}
}

func readDefinition(path string) ([]receipt.Spec, error) {
	if path == "-" {
		return definition.Parse(os.Stdin)
	}
	return definition.ParseFile(path)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "receipt:", err)
	switch {
	case receipt.IsClass(err, receipt.ClassConfig):
		os.Exit(exitConfig)
	case receipt.IsClass(err, receipt.ClassLayout):
		os.Exit(exitLayout)
	default:
		os.Exit(exitResource)
	}
}
