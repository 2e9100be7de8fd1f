package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/user/replaycap/pkg/adapters/testpattern"
	"github.com/user/replaycap/pkg/config"
	"github.com/user/replaycap/pkg/frame"
)

func main() {
	harness := config.Defaults().Harness

	sizes := []struct{ w, h int }{
		{320, 180},
		{640, 360},
		{1280, 720},
	}

	if err := os.MkdirAll("tmp", 0755); err != nil {
		fmt.Printf("Error creating tmp dir: %v\n", err)
		return
	}

	for _, size := range sizes {
		gen := testpattern.NewGenerator(
			size.w, size.h, frame.FormatRGBA, harness.FPS,
			config.ParseColor(harness.BackgroundColor),
			config.ParseColor(harness.BarColor),
			config.ParseColor(harness.LabelColor),
		)

		for _, index := range []int{0, 90} {
			raw := gen.VideoFrame("Game", index)
			img := &image.RGBA{
				Pix:    raw.Planes[0],
				Stride: raw.Strides[0],
				Rect:   image.Rect(0, 0, raw.Width, raw.Height),
			}

			filename := fmt.Sprintf("tmp/pattern_%dx%d_f%d.png", size.w, size.h, index)
			f, err := os.Create(filename)
			if err != nil {
				fmt.Printf("Error creating file: %v\n", err)
				continue
			}

			if err := png.Encode(f, img); err != nil {
				fmt.Printf("Error encoding PNG: %v\n", err)
			}
			f.Close()

			fmt.Printf("Generated %s (%dx%d)\n", filename, raw.Width, raw.Height)
		}
	}
}
