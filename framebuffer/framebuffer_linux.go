package framebuffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/BeatGlow/lchdisplay"
	"github.com/BeatGlow/lchdisplay/internal/ioctl"
	"github.com/BeatGlow/lchdisplay/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioPutVScreenInfo = 0x4601
	fbioGetFScreenInfo = 0x4602
	fbioPutCMap        = 0x4605

	fbVisualPseudoColor = 3
)

// FrameBuffer is a Linux framebuffer device (fbdev).
type FrameBuffer struct {
	display.Indexed
	f      *os.File
	fd     uintptr
	name   string
	info   linuxFrameBufferInfo
	screen linuxVarScreenInfo
	mem    []byte

	// back is the 16-bit frame composed before copying to mem, or the
	// index plane with the status line drawn on it in 8-bit modes.
	back    pixel.Image
	overlay *pixel.Indexed8Image
}

// Open a Linux FrameBuffer device (fbdev) by name, typically /dev/fb[0..x].
//
// A zero Width, Height or Depth in config is taken from the device. Other
// values are requested from the driver, which may refuse them.
func Open(name string, config *display.Config) (*FrameBuffer, error) {
	if name == "" {
		name = DefaultDevice
	}
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	fb := &FrameBuffer{
		f:    f,
		fd:   f.Fd(),
		name: name,
	}
	if err = fb.negotiate(config); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err = fb.Init(config); err != nil {
		_ = f.Close()
		return nil, err
	}

	// Map pixel buffer.
	if fb.mem, err = unix.Mmap(int(fb.fd), 0, int(fb.info.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.ENOMEM) {
			return nil, fmt.Errorf("%w: %s: %w", display.ErrNoMemory, name, err)
		}
		return nil, err
	}

	switch config.Depth {
	case 8:
		fb.overlay = pixel.NewIndexed8Image(config.Width, config.Height)
		fb.back = fb.overlay
	case 16:
		model, order, _ := linuxParseColorModel(&fb.screen)
		if model == pixel.CBGR16Model {
			im := pixel.NewCBGR16Image(config.Width, config.Height)
			im.Order = order
			fb.back = im
		} else {
			im := pixel.NewCRGB16Image(config.Width, config.Height)
			im.Order = order
			fb.back = im
		}
	}

	if debug {
		log.Printf("framebuffer: %s %q %dx%d %d bpp, line length %d", name, fb.info.ID[:], fb.screen.Xres, fb.screen.Yres, fb.screen.BitsPerPixel, fb.info.LineLength)
	}
	return fb, nil
}

// negotiate reads the current video mode, and requests a new one if config
// asks for a different resolution or depth.
func (fb *FrameBuffer) negotiate(config *display.Config) error {
	if err := fb.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&fb.screen)); err != nil {
		return err
	}

	if config.Width == 0 {
		config.Width = int(fb.screen.Xres)
	}
	if config.Height == 0 {
		config.Height = int(fb.screen.Yres)
	}
	if config.Depth == 0 {
		config.Depth = int(fb.screen.BitsPerPixel)
	}
	if err := config.Mode().Validate(); err != nil {
		return err
	}

	if config.Width != int(fb.screen.Xres) || config.Height != int(fb.screen.Yres) || config.Depth != int(fb.screen.BitsPerPixel) {
		want := fb.screen
		want.Xres, want.Yres = uint32(config.Width), uint32(config.Height)
		want.XresVirtual, want.YresVirtual = want.Xres, want.Yres
		want.Xoffset, want.Yoffset = 0, 0
		want.BitsPerPixel = uint32(config.Depth)
		if debug {
			log.Printf("framebuffer: %s requesting video mode %s", fb.name, config.Mode())
		}
		if err := fb.ioctl(fbioPutVScreenInfo, unsafe.Pointer(&want)); err != nil {
			if errors.Is(err, unix.ENOMEM) {
				return fmt.Errorf("%w: %s: %w", display.ErrNoMemory, config.Mode(), err)
			}
			return fmt.Errorf("framebuffer: video mode %s: %w", config.Mode(), err)
		}
		if err := fb.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&fb.screen)); err != nil {
			return err
		}
		if int(fb.screen.Xres) < config.Width || int(fb.screen.Yres) < config.Height || int(fb.screen.BitsPerPixel) != config.Depth {
			return fmt.Errorf("framebuffer: video mode %s not supported, driver selected %dx%dx%d",
				config.Mode(), fb.screen.Xres, fb.screen.Yres, fb.screen.BitsPerPixel)
		}
	}

	if err := fb.ioctl(fbioGetFScreenInfo, unsafe.Pointer(&fb.info)); err != nil {
		return err
	}
	if config.Depth == 8 && fb.info.Visual != fbVisualPseudoColor {
		return fmt.Errorf("%w: 8 bpp without a pseudocolor visual", ErrFormat)
	}
	if config.Depth == 16 {
		if _, _, err := linuxParseColorModel(&fb.screen); err != nil {
			return err
		}
	}
	return nil
}

func (fb *FrameBuffer) String() string {
	return fmt.Sprintf("framebuffer %s %s", fb.name, fb.Mode())
}

// Close the framebuffer device.
func (fb *FrameBuffer) Close() error {
	if err := unix.Munmap(fb.mem); err != nil {
		return err
	}
	return fb.f.Close()
}

// Refresh copies the frame to the device. In 8-bit modes the palette is
// loaded into the device color map.
func (fb *FrameBuffer) Refresh() error {
	if fb.overlay != nil {
		fb.Overlay(fb.overlay)
		fb.copyLines(fb.overlay.Buffer)
		return fb.putColorMap()
	}

	fb.Compose(fb.back)
	switch im := fb.back.(type) {
	case *pixel.CRGB16Image:
		fb.copyLines(im.Buffer)
	case *pixel.CBGR16Image:
		fb.copyLines(im.Buffer)
	}
	return nil
}

// copyLines copies src into the mapped memory, honoring the device line length.
func (fb *FrameBuffer) copyLines(src pixel.Buffer) {
	var (
		offset = int(fb.screen.Yoffset)*int(fb.info.LineLength) + int(fb.screen.Xoffset)*int(fb.screen.BitsPerPixel)/8
		line   = int(fb.info.LineLength)
	)
	for y := 0; y < src.Rect.Dy(); y++ {
		o := offset + y*line
		if o >= len(fb.mem) {
			return
		}
		copy(fb.mem[o:], src.Pix[y*src.Stride:(y+1)*src.Stride])
	}
}

func (fb *FrameBuffer) putColorMap() error {
	var red, green, blue [256]uint16
	for i, c := range fb.Palette {
		red[i] = uint16(c.R) << 8
		green[i] = uint16(c.G) << 8
		blue[i] = uint16(c.B) << 8
	}
	cmap := linuxColorMap{
		Start: 0,
		Len:   uint32(len(red)),
		Red:   &red[0],
		Green: &green[0],
		Blue:  &blue[0],
	}
	return fb.ioctl(fbioPutCMap, unsafe.Pointer(&cmap))
}

func (fb *FrameBuffer) ioctl(cmd uintptr, arg unsafe.Pointer) error {
	return ioctl.Call(fb.fd, cmd, uintptr(arg))
}

type linuxFrameBufferInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}

// linuxColorMap is struct fb_cmap, entries are 16 bits per channel.
type linuxColorMap struct {
	Start  uint32
	Len    uint32
	Red    *uint16
	Green  *uint16
	Blue   *uint16
	Transp *uint16
}

// linuxParseColorModel maps the 16 bits per pixel layouts onto pixel models.
// Framebuffer memory is in host byte order.
func linuxParseColorModel(info *linuxVarScreenInfo) (color.Model, binary.ByteOrder, error) {
	if info == nil {
		return nil, nil, errors.New("framebuffer: invalid VarScreenInfo")
	}

	if info.BitsPerPixel == 16 && info.Alpha.Length == 0 &&
		info.Red.Length == 5 && info.Green.Length == 6 && info.Blue.Length == 5 && info.Green.Offset == 5 {
		switch {
		case info.Red.Offset == 11 && info.Blue.Offset == 0:
			return pixel.CRGB16Model, binary.NativeEndian, nil
		case info.Blue.Offset == 11 && info.Red.Offset == 0:
			return pixel.CBGR16Model, binary.NativeEndian, nil
		}
	}

	return nil, nil, fmt.Errorf("%w: %d bpp, red %d@%d, green %d@%d, blue %d@%d", ErrFormat, info.BitsPerPixel,
		info.Red.Length, info.Red.Offset, info.Green.Length, info.Green.Offset, info.Blue.Length, info.Blue.Offset)
}

var _ display.Display = (*FrameBuffer)(nil)
