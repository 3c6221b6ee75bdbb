// Package cache persists encoded training examples as CBOR shards so a
// preprocessing run can be replayed without re-tokenizing. Pixel
// tensors are stored as float16 to halve shard size.
package cache

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pdevine/tensor"
	"github.com/x448/float16"
)

// Entry is one cached example: token ids, labels, and optionally the
// example's packed pixel tensor.
type Entry struct {
	InputIDs []int32 `cbor:"input_ids"`
	Labels   []int32 `cbor:"labels"`

	PixelShape []int    `cbor:"pixel_shape,omitempty"`
	PixelData  []uint16 `cbor:"pixel_data,omitempty"` // float16 bits
}

// Shard is the on-disk unit: a format marker plus entries.
type Shard struct {
	Version int     `cbor:"version"`
	Entries []Entry `cbor:"entries"`
}

const shardVersion = 1

// PackPixels captures a float32 pixel tensor into an entry as float16.
func (e *Entry) PackPixels(t *tensor.Dense) error {
	data, ok := t.Data().([]float32)
	if !ok {
		return fmt.Errorf("pixel tensor backing is %T, want []float32", t.Data())
	}

	e.PixelShape = append([]int(nil), t.Shape()...)
	e.PixelData = make([]uint16, len(data))
	for i, v := range data {
		e.PixelData[i] = uint16(float16.Fromfloat32(v))
	}

	return nil
}

// UnpackPixels rebuilds the pixel tensor, or returns nil when the entry
// has none.
func (e *Entry) UnpackPixels() (*tensor.Dense, error) {
	if len(e.PixelShape) == 0 {
		return nil, nil
	}

	n := 1
	for _, d := range e.PixelShape {
		n *= d
	}
	if n != len(e.PixelData) {
		return nil, fmt.Errorf("pixel shape %v does not cover %d stored values", e.PixelShape, len(e.PixelData))
	}

	data := make([]float32, len(e.PixelData))
	for i, bits := range e.PixelData {
		data[i] = float16.Frombits(bits).Float32()
	}

	return tensor.New(tensor.WithShape(e.PixelShape...), tensor.WithBacking(data)), nil
}

// Save writes entries to path as one CBOR shard.
func Save(path string, entries []Entry) error {
	data, err := cbor.Marshal(Shard{Version: shardVersion, Entries: entries})
	if err != nil {
		return fmt.Errorf("encoding shard: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing shard: %w", err)
	}

	return nil
}

// Load reads a shard written by Save.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shard: %w", err)
	}

	var shard Shard
	if err := cbor.Unmarshal(data, &shard); err != nil {
		return nil, fmt.Errorf("decoding shard: %w", err)
	}
	if shard.Version != shardVersion {
		return nil, fmt.Errorf("unsupported shard version %d", shard.Version)
	}

	return shard.Entries, nil
}
