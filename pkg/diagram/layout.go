package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// LayoutVersion is the version stamped on serialized layouts.
const LayoutVersion = 1

type layoutFile struct {
	Version int           `json:"version"`
	Layout  layout.Layout `json:"layout"`
}

// MarshalLayout encodes a computed layout as indented JSON wrapped in a
// versioned envelope. The result can be read back with [UnmarshalLayout]
// and rendered without recomputing.
func MarshalLayout(l layout.Layout) ([]byte, error) {
	data, err := json.MarshalIndent(layoutFile{Version: LayoutVersion, Layout: l}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout decodes a layout produced by [MarshalLayout]. Unknown
// versions are rejected with INVALID_FORMAT.
func UnmarshalLayout(data []byte) (layout.Layout, error) {
	var f layoutFile
	if err := json.Unmarshal(data, &f); err != nil {
		return layout.Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if f.Version != LayoutVersion {
		return layout.Layout{}, errors.New(errors.ErrCodeInvalidFormat,
			"unsupported layout version %d (want %d)", f.Version, LayoutVersion)
	}
	return f.Layout, nil
}

// WriteLayout writes the encoded layout to w.
func WriteLayout(l layout.Layout, w io.Writer) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteLayoutFile writes the encoded layout to path.
func WriteLayoutFile(l layout.Layout, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, f)
}

// ReadLayoutFile reads a layout written by [WriteLayoutFile].
func ReadLayoutFile(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
