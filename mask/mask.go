// Package mask bridges run-length-encoded segmentation annotations and
// the dense per-frame masks the collator consumes. The RLE format
// itself is opaque here; decoding belongs to an injected Decoder.
package mask

import (
	"fmt"

	"github.com/pdevine/tensor"
)

// RLE is one compact run-length-encoded mask, carried as the raw
// annotation object (typically a decoded JSON dict with "size" and
// "counts" entries). Its internals are the decoder's business.
type RLE map[string]any

// Decoder turns one RLE annotation into a dense (height, width) mask.
type Decoder interface {
	Decode(rle RLE) (*tensor.Dense, error)
}

// DecodeMasklet decodes a masklet, one RLE per frame, preserving frame
// order. Any frame failing to decode fails the whole masklet; a
// half-decoded object mask is useless for training.
func DecodeMasklet(d Decoder, masklet []RLE) ([]*tensor.Dense, error) {
	masks := make([]*tensor.Dense, 0, len(masklet))
	for i, rle := range masklet {
		m, err := d.Decode(rle)
		if err != nil {
			return nil, fmt.Errorf("decoding masklet frame %d: %w", i, err)
		}
		masks = append(masks, m)
	}
	return masks, nil
}
