package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

const hotChocolate = `{"code":"7","product_name":"Hot Chocolate Mix","serving_size":"236.0g","nutriments":{"energy-kcal_100g":400,"energy-kcal_serving":944}}`

func TestRun_Stdin(t *testing.T) {
	var out bytes.Buffer
	if err := run("", strings.NewReader(hotChocolate), &out, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got result
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got.Barcode != "7" || got.Outcome != nutrition.OutcomeCorrected {
		t.Errorf("result = %+v", got)
	}
	if len(got.ServingOptions) == 0 || !got.ServingOptions[0].IsDefault {
		t.Errorf("ServingOptions = %+v; want corrected serving as default", got.ServingOptions)
	}
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.json")
	if err := os.WriteFile(path, []byte(hotChocolate), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(path, strings.NewReader("ignored"), &out, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "\n  \"name\": \"Hot Chocolate Mix\"") {
		t.Errorf("indented output missing name:\n%s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	err := run("-", strings.NewReader(`{"code":"1","nutriments":{}}`), &out, false)
	if !errors.Is(err, nutrition.ErrInsufficientData) {
		t.Errorf("empty nutriments err = %v; want ErrInsufficientData", err)
	}
	if err := run("-", strings.NewReader("not json"), &out, false); err == nil {
		t.Error("invalid JSON returned nil error")
	}
	if err := run(filepath.Join(t.TempDir(), "missing.json"), nil, &out, false); err == nil {
		t.Error("missing file returned nil error")
	}
}
