package inference

import (
	"image"

	"golang.org/x/image/draw"
)

// ImageNet normalization, matching the transform the ConvNeXt backbones
// were trained with.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// preprocess scales img to size x size and lays it out as a [1,3,H,W]
// NCHW float32 tensor with ImageNet normalization.
func preprocess(img image.Image, size int) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make([]float32, 3*size*size)
	plane := size * size

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := y*size + x
			c := dst.RGBAAt(x, y)
			r, g, b := float32(c.R)/255.0, float32(c.G)/255.0, float32(c.B)/255.0
			out[0*plane+idx] = (r - imagenetMean[0]) / imagenetStd[0]
			out[1*plane+idx] = (g - imagenetMean[1]) / imagenetStd[1]
			out[2*plane+idx] = (b - imagenetMean[2]) / imagenetStd[2]
		}
	}
	return out
}
