// Package display composes the on-device UI. Everything the user sees is
// drawn into a monochrome Bitmap and pushed to a Device, which is either a
// real framebuffer or the terminal simulator.
package display

// Bitmap is a monochrome raster. Pixels are stored one byte per pixel so
// row math stays trivial; frames are small enough that packing would buy
// nothing.
type Bitmap struct {
	width  int
	height int
	pix    []byte
}

// NewBitmap returns a cleared bitmap of the given dimensions. Negative
// dimensions are treated as zero.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]byte, width*height),
	}
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Set turns the pixel at (x, y) on or off. Out-of-bounds coordinates are
// ignored so callers can draw partially visible content without clipping
// first.
func (b *Bitmap) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	if on {
		b.pix[y*b.width+x] = 1
	} else {
		b.pix[y*b.width+x] = 0
	}
}

// On reports whether the pixel at (x, y) is lit. Out-of-bounds coordinates
// read as off.
func (b *Bitmap) On(x, y int) bool {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return false
	}
	return b.pix[y*b.width+x] != 0
}

// Fill sets every pixel to the given state.
func (b *Bitmap) Fill(on bool) {
	var v byte
	if on {
		v = 1
	}
	for i := range b.pix {
		b.pix[i] = v
	}
}

// Blit copies src onto b with its top-left corner at (x, y). Pixels that
// fall outside b are dropped.
func (b *Bitmap) Blit(src *Bitmap, x, y int) {
	for sy := 0; sy < src.height; sy++ {
		dy := y + sy
		if dy < 0 || dy >= b.height {
			continue
		}
		for sx := 0; sx < src.width; sx++ {
			dx := x + sx
			if dx < 0 || dx >= b.width {
				continue
			}
			b.pix[dy*b.width+dx] = src.pix[sy*src.width+sx]
		}
	}
}

// InvertRect flips every pixel inside the given rectangle. Used for the
// selection bar.
func (b *Bitmap) InvertRect(x, y, width, height int) {
	for dy := y; dy < y+height; dy++ {
		if dy < 0 || dy >= b.height {
			continue
		}
		for dx := x; dx < x+width; dx++ {
			if dx < 0 || dx >= b.width {
				continue
			}
			b.pix[dy*b.width+dx] ^= 1
		}
	}
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	out := NewBitmap(b.width, b.height)
	copy(out.pix, b.pix)
	return out
}

// Stack composes bitmaps top to bottom into a single bitmap whose width is
// the widest input and whose height is the sum of the inputs.
func Stack(parts ...*Bitmap) *Bitmap {
	width, height := 0, 0
	for _, p := range parts {
		if p.width > width {
			width = p.width
		}
		height += p.height
	}
	out := NewBitmap(width, height)
	y := 0
	for _, p := range parts {
		out.Blit(p, 0, y)
		y += p.height
	}
	return out
}
