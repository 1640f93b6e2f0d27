package display

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Device is a sink for finished frames.
type Device interface {
	// Size returns the frame dimensions the device expects.
	Size() (width, height int)
	// Draw pushes a complete frame to the panel. Frames are drawn from the
	// top-left corner; anything outside the panel is cropped.
	Draw(frame *Bitmap) error
	Close() error
}

// Framebuffer pushes frames to a Linux fbdev node, typically an SSD1306
// OLED exposed through fbtft. Geometry and depth come from configuration
// since the small panel drivers disagree on how they report it.
type Framebuffer struct {
	f      *os.File
	width  int
	height int
	bpp    int
}

var _ Device = (*Framebuffer)(nil)

// OpenFramebuffer opens the framebuffer node at path. Supported depths are
// 1 (packed mono, MSB first), 16 (RGB565) and 32 (XRGB).
func OpenFramebuffer(path string, width, height, bpp int) (*Framebuffer, error) {
	switch bpp {
	case 1, 16, 32:
	default:
		return nil, errors.Errorf("unsupported framebuffer depth %d", bpp)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("bad framebuffer geometry %dx%d", width, height)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening framebuffer %s", path)
	}
	return &Framebuffer{f: f, width: width, height: height, bpp: bpp}, nil
}

// Size returns the panel dimensions.
func (fb *Framebuffer) Size() (int, int) { return fb.width, fb.height }

// Draw encodes the frame at the device depth and writes it at offset zero.
func (fb *Framebuffer) Draw(frame *Bitmap) error {
	var buf []byte
	switch fb.bpp {
	case 1:
		stride := (fb.width + 7) / 8
		buf = make([]byte, stride*fb.height)
		for y := 0; y < fb.height; y++ {
			for x := 0; x < fb.width; x++ {
				if frame.On(x, y) {
					buf[y*stride+x/8] |= 0x80 >> uint(x%8)
				}
			}
		}
	case 16:
		buf = make([]byte, fb.width*fb.height*2)
		for y := 0; y < fb.height; y++ {
			for x := 0; x < fb.width; x++ {
				if frame.On(x, y) {
					binary.LittleEndian.PutUint16(buf[(y*fb.width+x)*2:], 0xFFFF)
				}
			}
		}
	case 32:
		buf = make([]byte, fb.width*fb.height*4)
		for y := 0; y < fb.height; y++ {
			for x := 0; x < fb.width; x++ {
				if frame.On(x, y) {
					binary.LittleEndian.PutUint32(buf[(y*fb.width+x)*4:], 0x00FFFFFF)
				}
			}
		}
	}
	if _, err := fb.f.WriteAt(buf, 0); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	return nil
}

// Close releases the framebuffer node.
func (fb *Framebuffer) Close() error {
	return fb.f.Close()
}
