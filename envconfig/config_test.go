package envconfig

import "testing"

func TestDebug(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"1":     true,
		"true":  true,
		"false": false,
		"junk":  true,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("DATAPREP_DEBUG", value)
			if got := Debug(); got != want {
				t.Errorf("DATAPREP_DEBUG=%q: got %t, want %t", value, got, want)
			}
		})
	}
}

func TestInt(t *testing.T) {
	t.Setenv("DATAPREP_MAX_LENGTH", "")
	if got := MaxLength(); got != 8192 {
		t.Errorf("default MaxLength = %d, want 8192", got)
	}

	t.Setenv("DATAPREP_MAX_LENGTH", "2048")
	if got := MaxLength(); got != 2048 {
		t.Errorf("MaxLength = %d, want 2048", got)
	}

	t.Setenv("DATAPREP_MAX_LENGTH", "not-a-number")
	if got := MaxLength(); got != 8192 {
		t.Errorf("invalid MaxLength = %d, want default 8192", got)
	}
}

func TestTileDefaults(t *testing.T) {
	t.Setenv("DATAPREP_MIN_TILES", "")
	t.Setenv("DATAPREP_MAX_TILES", "")
	t.Setenv("DATAPREP_TILE_SIZE", "")
	if MinTiles() != 1 || MaxTiles() != 6 || TileSize() != 448 {
		t.Errorf("tile defaults = %d/%d/%d, want 1/6/448", MinTiles(), MaxTiles(), TileSize())
	}
}

func TestAsMap(t *testing.T) {
	m := AsMap()
	for _, k := range []string{"DATAPREP_DEBUG", "DATAPREP_NUM_WORKERS", "DATAPREP_MAX_LENGTH", "DATAPREP_MIN_TILES", "DATAPREP_MAX_TILES", "DATAPREP_TILE_SIZE"} {
		if _, ok := m[k]; !ok {
			t.Errorf("AsMap missing %s", k)
		}
	}
}
