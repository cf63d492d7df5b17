package emu

import "math"

// MissingTextureColor is returned when sampling an unbound texture.
// Magenta, so mistakes are visible.
const MissingTextureColor = 0xFFFF00FF

// Texture is an RGBA8888 image with sampling state.
type Texture struct {
	Pixels []uint32
	Width  int
	Height int

	// WrapS and WrapT select repeat (true) or clamp (false) per axis.
	WrapS bool
	WrapT bool

	// Filter selects bilinear (true) or nearest (false) filtering.
	Filter bool
}

// NewTexture creates a texture from RGBA8888 pixel data. Wrap and bilinear
// filtering default to on. A nil pixel slice allocates a zeroed image.
func NewTexture(width, height int, pixels []uint32) *Texture {
	t := &Texture{
		Width:  width,
		Height: height,
		WrapS:  true,
		WrapT:  true,
		Filter: true,
	}
	t.Pixels = make([]uint32, width*height)
	copy(t.Pixels, pixels)
	return t
}

// NewSolidTexture creates a texture filled with one color.
func NewSolidTexture(width, height int, color uint32) *Texture {
	t := NewTexture(width, height, nil)
	for i := range t.Pixels {
		t.Pixels[i] = color
	}
	return t
}

// NewCheckerTexture creates a checkerboard of two colors with square
// checks of checkSize texels.
func NewCheckerTexture(width, height int, color1, color2 uint32, checkSize int) *Texture {
	t := NewTexture(width, height, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cx := x / checkSize
			cy := y / checkSize
			c := color1
			if (cx+cy)&1 != 0 {
				c = color2
			}
			t.Pixels[y*width+x] = c
		}
	}
	return t
}

// Texel returns the stored texel at (x, y) with no filtering.
func (t *Texture) Texel(x, y int) uint32 {
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at normalized (u, v) coordinates, applying
// the texture's wrap and filter configuration. This is the reference
// sampler the texture unit must match bit for bit.
func (t *Texture) Sample(u, v float32) uint32 {
	if t == nil || len(t.Pixels) == 0 {
		return MissingTextureColor
	}
	fp := Footprint(t.Width, t.Height, t.WrapS, t.WrapT, t.Filter, u, v)
	var texels [4]uint32
	for i := 0; i < fp.Count; i++ {
		texels[i] = t.Texel(fp.X[i], fp.Y[i])
	}
	return FilterTexels(fp, texels)
}

// TexelFootprint lists the texel coordinates one sample touches, plus the
// fractional interpolation weights for the bilinear case. Count is 1 for
// nearest filtering and 4 for bilinear, ordered (x0,y0), (x1,y0),
// (x0,y1), (x1,y1).
type TexelFootprint struct {
	X     [4]int
	Y     [4]int
	Count int
	Dx    float32
	Dy    float32
}

// WrapCoord applies the wrap policy to one normalized coordinate:
// repeat computes c - floor(c); clamp pins c to [0, 1]. NaN and
// infinite coordinates resolve to 0 so a shader that divides by zero
// still fetches a defined texel.
func WrapCoord(c float32, wrap bool) float32 {
	c64 := float64(c)
	if math.IsNaN(c64) || math.IsInf(c64, 0) {
		return 0
	}
	if wrap {
		return c - float32(math.Floor(float64(c)))
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Footprint decodes normalized (u, v) into the texel coordinates a sample
// touches for a width x height texture under the given wrap and filter
// configuration. Coordinates outside [0, 1) are policy-wrapped, never
// rejected. Every returned coordinate is clamped to the valid index range.
func Footprint(width, height int, wrapS, wrapT, filter bool, u, v float32) TexelFootprint {
	u = WrapCoord(u, wrapS)
	v = WrapCoord(v, wrapT)

	fx := u * float32(width-1)
	fy := v * float32(height-1)

	var fp TexelFootprint
	if filter {
		x0 := int(math.Floor(float64(fx)))
		y0 := int(math.Floor(float64(fy)))
		if x0 < 0 {
			x0 = 0
		}
		if y0 < 0 {
			y0 = 0
		}
		x1 := x0 + 1
		y1 := y0 + 1
		if x1 >= width {
			x1 = width - 1
		}
		if y1 >= height {
			y1 = height - 1
		}

		fp.Count = 4
		fp.X = [4]int{x0, x1, x0, x1}
		fp.Y = [4]int{y0, y0, y1, y1}
		fp.Dx = fx - float32(x0)
		fp.Dy = fy - float32(y0)
		return fp
	}

	x := int(fx + 0.5)
	y := int(fy + 0.5)
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x >= width {
		x = width - 1
	}
	if y >= height {
		y = height - 1
	}
	fp.Count = 1
	fp.X[0] = x
	fp.Y[0] = y
	return fp
}

// FilterTexels combines fetched texels into one packed RGBA8888 color.
// For the bilinear case each channel is interpolated independently and
// rounded to the nearest integer value, not truncated.
func FilterTexels(fp TexelFootprint, texels [4]uint32) uint32 {
	if fp.Count == 1 {
		return texels[0]
	}

	var result uint32
	for c := 0; c < 4; c++ {
		shift := uint(c * 8)
		c00 := float32((texels[0] >> shift) & 0xFF)
		c10 := float32((texels[1] >> shift) & 0xFF)
		c01 := float32((texels[2] >> shift) & 0xFF)
		c11 := float32((texels[3] >> shift) & 0xFF)

		top := c00 + fp.Dx*(c10-c00)
		bottom := c01 + fp.Dx*(c11-c01)
		cf := top + fp.Dy*(bottom-top)

		ci := int(cf + 0.5)
		if ci < 0 {
			ci = 0
		}
		if ci > 255 {
			ci = 255
		}
		result |= uint32(ci) << shift
	}
	return result
}
