// Package streamdeck drives Elgato Stream Deck key panels over USB HID
// and turns them into scene selectors for the bridge.
package streamdeck

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	xdraw "golang.org/x/image/draw"

	"rafaelmartins.com/p/usbhid"
)

const elgatoVendorID = 0x0fd9

type Model struct {
	Name     string
	Keys     int
	KeyCols  int
	KeySize  int
	FlipKeys bool
}

var (
	ModelMK2  = Model{Name: "MK.2", Keys: 15, KeyCols: 5, KeySize: 72, FlipKeys: true}
	ModelXL   = Model{Name: "XL", Keys: 32, KeyCols: 8, KeySize: 96, FlipKeys: true}
	ModelPlus = Model{Name: "Plus", Keys: 8, KeyCols: 4, KeySize: 120}
)

var productModels = map[uint16]*Model{
	0x0080: &ModelMK2,
	0x006d: &ModelMK2,
	0x006c: &ModelXL,
	0x008f: &ModelXL,
	0x0084: &ModelPlus,
}

type Device struct {
	dev   *usbhid.Device
	model *Model
}

// Open claims the first supported Stream Deck found on the bus.
func Open() (*Device, error) {
	devices, err := usbhid.Enumerate(func(dev *usbhid.Device) bool {
		return dev.VendorId() == elgatoVendorID && productModels[dev.ProductId()] != nil
	})
	if err != nil {
		return nil, fmt.Errorf("streamdeck: enumerate: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("streamdeck: no device found")
	}

	dev := devices[0]
	if err := dev.Open(true); err != nil {
		return nil, fmt.Errorf("streamdeck: open: %w", err)
	}
	return &Device{dev: dev, model: productModels[dev.ProductId()]}, nil
}

func (d *Device) Model() *Model        { return d.model }
func (d *Device) KeyCount() int        { return d.model.Keys }
func (d *Device) KeySize() int         { return d.model.KeySize }
func (d *Device) Close() error         { return d.dev.Close() }
func (d *Device) SerialNumber() string { return d.dev.SerialNumber() }
func (d *Device) Product() string      { return d.dev.Product() }

// SetBrightness sets the backlight in percent.
func (d *Device) SetBrightness(perc byte) error {
	perc = min(perc, 100)
	pl := make([]byte, d.dev.GetFeatureReportLength())
	pl[0] = 0x08
	pl[1] = perc
	return d.dev.SetFeatureReport(3, pl)
}

func (d *Device) SetKeyImage(key int, img image.Image) error {
	if key < 0 || key >= d.model.Keys {
		return fmt.Errorf("streamdeck: invalid key %d", key)
	}

	sz := d.model.KeySize
	scaled := image.NewRGBA(image.Rect(0, 0, sz, sz))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	var src image.Image = scaled
	if d.model.FlipKeys {
		src = rotate180(scaled)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}); err != nil {
		return err
	}
	return d.sendKeyImage(byte(key), buf.Bytes())
}

func rotate180(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.X-1-x+b.Min.X, b.Max.Y-1-y+b.Min.Y, img.At(x, y))
		}
	}
	return out
}

// sendKeyImage splits a JPEG into output reports with the 8-byte
// key image header.
func (d *Device) sendKeyImage(key byte, imgData []byte) error {
	reportLen := int(d.dev.GetOutputReportLength())
	const hdrLen = 8
	chunkLen := reportLen - hdrLen

	for page, start := 0, 0; start < len(imgData); page++ {
		end := min(start+chunkLen, len(imgData))
		last := byte(0)
		if end == len(imgData) {
			last = 1
		}
		chunk := imgData[start:end]

		payload := make([]byte, reportLen)
		payload[0] = 0x02
		payload[1] = 0x07
		payload[2] = key
		payload[3] = last
		payload[4] = byte(len(chunk))
		payload[5] = byte(len(chunk) >> 8)
		payload[6] = byte(page)
		payload[7] = byte(page >> 8)
		copy(payload[hdrLen:], chunk)

		if err := d.dev.SetOutputReport(2, payload); err != nil {
			return err
		}
		start = end
	}
	return nil
}

type KeyEvent struct {
	Key     int
	Pressed bool
	Time    time.Time
}

// ReadKeys delivers key state changes to ch until ctx is done or the
// device errors, which is how Close unblocks a pending read.
func (d *Device) ReadKeys(ctx context.Context, ch chan<- KeyEvent) error {
	states := make([]byte, d.model.Keys)
	for {
		_, buf, err := d.dev.GetInputReport()
		if err != nil {
			return err
		}
		if err := scanKeys(ctx, states, buf, time.Now(), ch); err != nil {
			return err
		}
	}
}

// scanKeys compares one input report with the previous key states and
// sends a KeyEvent for every key that changed.
func scanKeys(ctx context.Context, states, buf []byte, now time.Time, ch chan<- KeyEvent) error {
	const keyStart = 3
	if len(buf) < keyStart+1 || buf[0] != 0x00 {
		return nil
	}
	for i := 0; i < len(states) && keyStart+i < len(buf); i++ {
		st := buf[keyStart+i]
		if st == states[i] {
			continue
		}
		states[i] = st
		select {
		case ch <- KeyEvent{Key: i, Pressed: st > 0, Time: now}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
