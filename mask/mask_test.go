package mask

import (
	"fmt"
	"testing"

	"github.com/pdevine/tensor"
)

// fakeDecoder reads the mask's edge length from the annotation and
// returns a square all-zero mask.
type fakeDecoder struct{}

func (fakeDecoder) Decode(rle RLE) (*tensor.Dense, error) {
	size, ok := rle["size"].(int)
	if !ok {
		return nil, fmt.Errorf("bad annotation")
	}
	return tensor.New(tensor.WithShape(size, size), tensor.WithBacking(make([]bool, size*size))), nil
}

func TestDecodeMasklet(t *testing.T) {
	masklet := []RLE{{"size": 4}, {"size": 4}, {"size": 4}}

	masks, err := DecodeMasklet(fakeDecoder{}, masklet)
	if err != nil {
		t.Fatal(err)
	}

	if len(masks) != 3 {
		t.Fatalf("got %d masks, want 3", len(masks))
	}
	for i, m := range masks {
		if s := m.Shape(); s[0] != 4 || s[1] != 4 {
			t.Errorf("mask %d shape %v, want (4, 4)", i, s)
		}
	}
}

func TestDecodeMaskletFailsWholeMasklet(t *testing.T) {
	masklet := []RLE{{"size": 4}, {"bogus": true}}

	if _, err := DecodeMasklet(fakeDecoder{}, masklet); err == nil {
		t.Fatal("expected decode failure to propagate")
	}
}
