package cmd

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitersun/Sa2VA/cache"
	"github.com/bitersun/Sa2VA/dataset"
)

func TestByteProcessor(t *testing.T) {
	tp := byteProcessor{}

	ids, err := tp.Encode("ab")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != 'a'+3 || ids[1] != 'b'+3 {
		t.Errorf("unexpected ids %v", ids)
	}

	if bos := tp.Special(dataset.SpecialBOS); len(bos) != 1 || bos[0] != 1 {
		t.Errorf("BOS = %v", bos)
	}
	if eos := tp.Special(dataset.SpecialEOS); len(eos) != 1 || eos[0] != 2 {
		t.Errorf("EOS = %v", eos)
	}
}

func TestEncodeCommand(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "conversations.jsonl")
	if err := os.WriteFile(input, []byte(`{"conversation": [{"input": "hi", "output": "there"}]}
`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "shard.cbor")

	cli := NewCLI()
	cli.SetArgs([]string{"encode", input, "--out", out, "--max-length", "32"})
	cli.SetOut(&bytes.Buffer{})
	cli.SetErr(&bytes.Buffer{})

	if err := cli.Execute(); err != nil {
		t.Fatal(err)
	}

	entries, err := cache.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if len(entries[0].InputIDs) != len(entries[0].Labels) {
		t.Error("ids and labels must stay aligned")
	}
}

func TestTileCommand(t *testing.T) {
	dir := t.TempDir()

	imgPath := filepath.Join(dir, "img.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1344, 448))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var stdout bytes.Buffer
	cli := NewCLI()
	cli.SetArgs([]string{"tile", imgPath, "--out-dir", filepath.Join(dir, "tiles")})
	cli.SetOut(&stdout)
	cli.SetErr(&bytes.Buffer{})

	if err := cli.Execute(); err != nil {
		t.Fatal(err)
	}

	tiles, err := filepath.Glob(filepath.Join(dir, "tiles", "tile_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 3 {
		t.Errorf("got %d tile files, want 3", len(tiles))
	}
}
