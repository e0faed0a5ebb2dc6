package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/korjavin/nutrinorm/internal/nutrition"
)

// Product is a normalized nutrition record stored per barcode.
type Product struct {
	Barcode   string
	Name      string
	Brand     string
	Nutrition nutrition.Normalized
}

const schemaVersion = 3

const (
	flagTrusted byte = 1 << iota
	flagCorrected
	flagHasGrams
)

// Encode serialises a Product into a compact binary format:
//
//	version     uvarint  (=3)
//	name        uvarint len + UTF-8
//	brand       uvarint len + UTF-8
//	flags       byte     (trusted, corrected, has grams)
//	outcome     uvarint len + string
//	reason      uvarint len + string
//	detail      uvarint len + string
//	grams       float64 LE
//	label       uvarint len + string
//	per100g     7 × float64 LE  (NaN when missing)
//	perServing  7 × float64 LE
//
// Values are stored at full precision so per-100g figures read back exactly
// as they were written.
func (p Product) Encode() []byte {
	n := p.Nutrition
	var buf bytes.Buffer
	writeUvarint(&buf, schemaVersion)
	writeString(&buf, p.Name)
	writeString(&buf, p.Brand)

	var flags byte
	if n.ServingDataTrusted {
		flags |= flagTrusted
	}
	if n.Serving.WasCorrected {
		flags |= flagCorrected
	}
	if n.Serving.Grams != nil {
		flags |= flagHasGrams
	}
	buf.WriteByte(flags)

	writeString(&buf, string(n.Outcome))
	writeString(&buf, string(n.Check.Reason))
	writeString(&buf, n.Check.Detail)
	writeFloat64LE(&buf, optional(n.Serving.Grams))
	writeString(&buf, n.Serving.DisplayLabel)
	writeVector(&buf, n.Per100g)
	writeVector(&buf, n.PerServing)
	return buf.Bytes()
}

// Decode parses a binary blob produced by Encode and sets fields on p.
// The Barcode field is NOT stored in the blob; the caller must set it.
func (p *Product) Decode(data []byte) error {
	r := bytes.NewReader(data)

	ver, err := binary.ReadUvarint(r)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if ver != schemaVersion {
		return fmt.Errorf("unsupported schema version %d", ver)
	}

	if p.Name, err = readString(r); err != nil {
		return fmt.Errorf("read name: %w", err)
	}
	if p.Brand, err = readString(r); err != nil {
		return fmt.Errorf("read brand: %w", err)
	}
	flags, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}

	var n nutrition.Normalized
	n.ServingDataTrusted = flags&flagTrusted != 0
	n.Serving.WasCorrected = flags&flagCorrected != 0

	outcome, err := readString(r)
	if err != nil {
		return fmt.Errorf("read outcome: %w", err)
	}
	n.Outcome = nutrition.Outcome(outcome)

	reason, err := readString(r)
	if err != nil {
		return fmt.Errorf("read reason: %w", err)
	}
	n.Check.Reason = nutrition.Reason(reason)
	n.Check.Plausible = n.Check.Reason == nutrition.ReasonNone
	if n.Check.Detail, err = readString(r); err != nil {
		return fmt.Errorf("read detail: %w", err)
	}

	grams, err := readFloat64LE(r)
	if err != nil {
		return fmt.Errorf("read grams: %w", err)
	}
	if flags&flagHasGrams != 0 {
		n.Serving.Grams = present(grams)
	}
	if n.Serving.DisplayLabel, err = readString(r); err != nil {
		return fmt.Errorf("read label: %w", err)
	}
	if n.Per100g, err = readVector(r); err != nil {
		return fmt.Errorf("read per-100g: %w", err)
	}
	if n.PerServing, err = readVector(r); err != nil {
		return fmt.Errorf("read per-serving: %w", err)
	}

	p.Nutrition = n
	return nil
}

// vectorFields fixes the on-disk order of nutrient fields.
func vectorFields(v *nutrition.NutrientVector) []**float64 {
	return []**float64{&v.Calories, &v.Protein, &v.Carbs, &v.Fat, &v.Fiber, &v.Sugar, &v.Sodium}
}

func writeVector(w *bytes.Buffer, v nutrition.NutrientVector) {
	for _, f := range vectorFields(&v) {
		writeFloat64LE(w, optional(*f))
	}
}

func readVector(r *bytes.Reader) (nutrition.NutrientVector, error) {
	var v nutrition.NutrientVector
	for _, f := range vectorFields(&v) {
		x, err := readFloat64LE(r)
		if err != nil {
			return v, err
		}
		*f = present(x)
	}
	return v, nil
}

// optional maps an absent value to NaN for storage.
func optional(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// present maps a stored NaN back to an absent value.
func present(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return nutrition.Float(f)
}

func writeUvarint(w *bytes.Buffer, v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	w.Write(buf[:n])
}

func writeString(w *bytes.Buffer, s string) {
	writeUvarint(w, uint64(len(s)))
	w.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	if n > uint64(r.Len()) {
		return "", fmt.Errorf("string length %d exceeds remaining %d bytes", n, r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeFloat64LE(w *bytes.Buffer, f float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	w.Write(b[:])
}

func readFloat64LE(r *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}
