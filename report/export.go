package report

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// cborEncMode encodes in canonical mode, making the output deterministic.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteYAML writes s as a YAML document.
func WriteYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML reads a summary written by WriteYAML.
func ReadYAML(r io.Reader) (*Summary, error) {
	var s Summary
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("report: decode yaml: %w", err)
	}
	return &s, nil
}

// WriteCBOR writes s in CBOR encoding.
func WriteCBOR(w io.Writer, s *Summary) error {
	b, err := cborEncMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("report: encode cbor: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// ReadCBOR reads a summary written by WriteCBOR.
func ReadCBOR(r io.Reader) (*Summary, error) {
	var s Summary
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("report: decode cbor: %w", err)
	}
	return &s, nil
}
