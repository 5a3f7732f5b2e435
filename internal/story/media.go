package story

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	SlideWidth  = 1280
	SlideHeight = 720

	WAVSampleRate  = 24000
	minNarrationMs = 3500
	msPerWord      = 400

	captionPoints = 40
)

var (
	captionOnce sync.Once
	captionFont *truetype.Font
	captionErr  error
)

func captionFace() (font.Face, error) {
	captionOnce.Do(func() {
		captionFont, captionErr = truetype.Parse(goregular.TTF)
	})
	if captionErr != nil {
		return nil, captionErr
	}
	return truetype.NewFace(captionFont, &truetype.Options{
		Size:    captionPoints,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// NarrationDuration estimates spoken length: 400ms per word, at least 3.5s.
func NarrationDuration(narration string) int {
	ms := len(strings.Fields(narration)) * msPerWord
	if ms < minNarrationMs {
		return minNarrationMs
	}
	return ms
}

// PlaceholderSlide renders a deterministic gradient PNG for one scene with its
// caption along the bottom. The palette is picked from the seed and index so
// variants look different but stay stable.
func PlaceholderSlide(seed string, index int, caption string) ([]byte, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", seed, index)))

	dc := gg.NewContext(SlideWidth, SlideHeight)
	grad := gg.NewLinearGradient(0, 0, SlideWidth, SlideHeight)
	grad.AddColorStop(0, color.RGBA{R: 0x0e, G: 0xa5 ^ sum[0]&0x3f, B: 0xe9, A: 0xff})
	grad.AddColorStop(1, color.RGBA{R: 0xa7 ^ sum[1]&0x3f, G: 0x8b, B: 0xfa, A: 0xff})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, SlideWidth, SlideHeight)
	dc.Fill()

	dc.SetRGBA255(255, 255, 255, 0x22)
	dc.DrawCircle(220+float64(sum[2]%64), 180+float64(sum[3]%64), 120)
	dc.Fill()

	dc.SetRGBA255(0, 0, 0, 0x22)
	dc.DrawCircle(1100-float64(sum[4]%64), 560-float64(sum[5]%64), 180)
	dc.Fill()

	if caption = strings.TrimSpace(caption); caption != "" {
		face, err := captionFace()
		if err != nil {
			return nil, fmt.Errorf("load caption font: %w", err)
		}
		dc.SetFontFace(face)
		dc.SetRGBA255(0, 0, 0, 0x66)
		dc.DrawRectangle(0, SlideHeight-180, SlideWidth, 180)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringWrapped(caption, SlideWidth/2, SlideHeight-90, 0.5, 0.5, SlideWidth-160, 1.4, gg.AlignCenter)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// SilentWAV returns a 16-bit mono PCM WAV of silence lasting durationMs.
func SilentWAV(durationMs, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = WAVSampleRate
	}
	samples := durationMs * sampleRate / 1000
	if samples < 1 {
		samples = 1
	}
	dataSize := uint32(samples * 2)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
