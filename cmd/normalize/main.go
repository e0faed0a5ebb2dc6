// Command nutrinorm-normalize runs the serving normalizer on one Open Food
// Facts product and prints the result as JSON.
//
//	nutrinorm-normalize product.json
//	curl -s https://world.openfoodfacts.org/api/v2/product/3017620422003 | nutrinorm-normalize
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/korjavin/nutrinorm/internal/nutrition"
	"github.com/korjavin/nutrinorm/internal/off"
)

type result struct {
	Barcode string `json:"barcode,omitempty"`
	Name    string `json:"name"`
	nutrition.Normalized
	ServingOptions []nutrition.ServingOption `json:"serving_options"`
}

func main() {
	compact := flag.Bool("compact", false, "print single-line JSON")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(flag.Arg(0), os.Stdin, os.Stdout, !*compact); err != nil {
		slog.Error("normalize failed", "error", err)
		if errors.Is(err, nutrition.ErrInsufficientData) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run reads a product from path, or from stdin when path is empty or "-".
func run(path string, stdin io.Reader, stdout io.Writer, indent bool) error {
	src := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	p, err := off.Decode(data)
	if err != nil {
		return err
	}

	raw := p.Record()
	n, err := nutrition.Normalize(raw)
	if err != nil {
		return fmt.Errorf("product %q: %w", p.Code, err)
	}
	if n.Serving.WasCorrected {
		slog.Info("serving corrected", "reason", n.Check.Reason, "detail", n.Check.Detail)
	}

	enc := json.NewEncoder(stdout)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result{
		Barcode:        p.Code,
		Name:           raw.ProductName,
		Normalized:     n,
		ServingOptions: nutrition.BuildServingOptions(n.Serving, raw.ProductName),
	})
}
