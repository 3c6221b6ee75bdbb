// Package imageproc prepares images for multimodal training examples:
// aspect-ratio tiling, resizing, normalization and video frame extraction.
package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pdevine/tensor"
	"golang.org/x/image/draw"
)

var (
	ImageNetDefaultMean  = [3]float32{0.485, 0.456, 0.406}
	ImageNetDefaultSTD   = [3]float32{0.229, 0.224, 0.225}
	ImageNetStandardMean = [3]float32{0.5, 0.5, 0.5}
	ImageNetStandardSTD  = [3]float32{0.5, 0.5, 0.5}
	ClipDefaultMean      = [3]float32{0.48145466, 0.4578275, 0.40821073}
	ClipDefaultSTD       = [3]float32{0.26862954, 0.26130258, 0.27577711}
)

const (
	ResizeBilinear = iota
	ResizeNearestNeighbor
	ResizeApproxBilinear
	ResizeCatmullrom
)

// Composite returns an image with the alpha channel removed by drawing over a white background.
func Composite(img image.Image) image.Image {
	return CompositeColor(img, color.RGBA{255, 255, 255, 255})
}

// CompositeColor returns an image with the alpha channel removed by drawing over a background color.
func CompositeColor(img image.Image, c color.Color) image.Image {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}

// Resize returns an image which has been scaled to a new size.
func Resize(img image.Image, newSize image.Point, method int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, newSize.X, newSize.Y))

	kernels := map[int]draw.Interpolator{
		ResizeBilinear:        draw.BiLinear,
		ResizeNearestNeighbor: draw.NearestNeighbor,
		ResizeApproxBilinear:  draw.ApproxBiLinear,
		ResizeCatmullrom:      draw.CatmullRom,
	}

	kernel, ok := kernels[method]
	if !ok {
		panic("no resizing method found")
	}

	kernel.Scale(dst, dst.Rect, img, img.Bounds(), draw.Over, nil)

	return dst
}

// Normalize returns the r, g, b values of an image normalized around a mean,
// channel-first. Values are rescaled to [0, 1] before normalization when
// rescale is set.
func Normalize(img image.Image, mean, std [3]float32, rescale bool) []float32 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()

	rVals := make([]float32, 0, n)
	gVals := make([]float32, 0, n)
	bVals := make([]float32, 0, n)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			var rVal, gVal, bVal float32
			if rescale {
				rVal = float32(r>>8) / 255.0
				gVal = float32(g>>8) / 255.0
				bVal = float32(b>>8) / 255.0
			}

			rVals = append(rVals, (rVal-mean[0])/std[0])
			gVals = append(gVals, (gVal-mean[1])/std[1])
			bVals = append(bVals, (bVal-mean[2])/std[2])
		}
	}

	pixelVals := make([]float32, 0, 3*n)
	pixelVals = append(pixelVals, rVals...)
	pixelVals = append(pixelVals, gVals...)
	pixelVals = append(pixelVals, bVals...)

	return pixelVals
}

// PixelValues packs a list of equally sized tiles into a single
// (tiles, 3, height, width) float32 tensor with CLIP normalization.
func PixelValues(tiles []image.Image) (*tensor.Dense, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("no tiles to pack")
	}

	b := tiles[0].Bounds()
	w, h := b.Dx(), b.Dy()

	data := make([]float32, 0, len(tiles)*3*w*h)
	for i, tile := range tiles {
		tb := tile.Bounds()
		if tb.Dx() != w || tb.Dy() != h {
			return nil, fmt.Errorf("tile %d is %dx%d, want %dx%d", i, tb.Dx(), tb.Dy(), w, h)
		}

		data = append(data, Normalize(tile, ClipDefaultMean, ClipDefaultSTD, true)...)
	}

	return tensor.New(tensor.WithShape(len(tiles), 3, h, w), tensor.WithBacking(data)), nil
}
