package imageproc

import (
	"cmp"
	"image"

	"github.com/emirpasic/gods/v2/sets/treeset"
)

// TileOptions bounds the dynamic tiling of a source image. The zero value
// is not useful; use DefaultTileOptions.
type TileOptions struct {
	// MinTiles and MaxTiles bound the grid's total tile count, inclusive.
	MinTiles, MaxTiles int

	// TileSize is the edge length of each square tile.
	TileSize int

	// Thumbnail appends the whole image resized to a single tile whenever
	// the grid produced more than one tile.
	Thumbnail bool
}

func DefaultTileOptions() TileOptions {
	return TileOptions{MinTiles: 1, MaxTiles: 6, TileSize: 448}
}

// candidateGrids returns every cols x rows arrangement whose tile count
// falls within [minTiles, maxTiles], deduplicated and ordered ascending
// by tile count (cols, then rows, among equal counts).
func candidateGrids(minTiles, maxTiles int) []image.Point {
	grids := treeset.NewWith(func(a, b image.Point) int {
		if c := cmp.Compare(a.X*a.Y, b.X*b.Y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})

	for n := minTiles; n <= maxTiles; n++ {
		for cols := 1; cols <= n; cols++ {
			for rows := 1; rows <= n; rows++ {
				if cols*rows >= minTiles && cols*rows <= maxTiles {
					grids.Add(image.Point{cols, rows})
				}
			}
		}
	}

	return grids.Values()
}

// closestGrid picks the grid whose cols/rows ratio is nearest the image's
// aspect ratio. Among ratio ties the later (larger) grid wins only when
// the source image area strictly exceeds half the grid's pixel area.
func closestGrid(grids []image.Point, width, height, tileSize int) image.Point {
	aspectRatio := float64(width) / float64(height)
	area := width * height

	best := image.Point{1, 1}
	bestDiff := float64(0)
	for i, grid := range grids {
		gridRatio := float64(grid.X) / float64(grid.Y)
		diff := gridRatio - aspectRatio
		if diff < 0 {
			diff = -diff
		}

		switch {
		case i == 0 || diff < bestDiff:
			bestDiff = diff
			best = grid
		case diff == bestDiff:
			if float64(area) > 0.5*float64(tileSize*tileSize*grid.X*grid.Y) {
				best = grid
			}
		}
	}

	return best
}

// Tile splits an image into a row-major sequence of fixed-size square
// tiles on the grid that best preserves its aspect ratio. It always
// returns at least one tile.
func Tile(img image.Image, opts TileOptions) []image.Image {
	b := img.Bounds()
	grid := closestGrid(candidateGrids(opts.MinTiles, opts.MaxTiles), b.Dx(), b.Dy(), opts.TileSize)

	resized := Resize(img, image.Point{opts.TileSize * grid.X, opts.TileSize * grid.Y}, ResizeBilinear)

	tiles := make([]image.Image, 0, grid.X*grid.Y+1)
	for i := 0; i < grid.X*grid.Y; i++ {
		rect := image.Rect(
			(i%grid.X)*opts.TileSize,
			(i/grid.X)*opts.TileSize,
			(i%grid.X+1)*opts.TileSize,
			(i/grid.X+1)*opts.TileSize,
		)
		tiles = append(tiles, resized.(*image.RGBA).SubImage(rect))
	}

	if opts.Thumbnail && len(tiles) > 1 {
		// The thumbnail comes from the original image, not the grid resize.
		tiles = append(tiles, Resize(img, image.Point{opts.TileSize, opts.TileSize}, ResizeBilinear))
	}

	return tiles
}
