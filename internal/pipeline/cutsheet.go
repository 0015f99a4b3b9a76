package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

const (
	cutSheetThumbWidth = 320
	cutSheetGap        = 8
)

// writeCutSheet renders one row per cut: the last frame of clip k beside
// the first frame of clip k+1, downscaled to thumbnails.
func writeCutSheet(dest, framesDir, format string, ranges []FrameRange) error {
	if len(ranges) < 2 {
		return fmt.Errorf("a cut sheet needs at least two clips")
	}

	var rows [][2]image.Image
	for k := 0; k+1 < len(ranges); k++ {
		before, err := loadThumb(filepath.Join(framesDir, ffmpeg.FrameName(ranges[k].Last(), format)))
		if err != nil {
			return err
		}
		after, err := loadThumb(filepath.Join(framesDir, ffmpeg.FrameName(ranges[k+1].Start, format)))
		if err != nil {
			return err
		}
		rows = append(rows, [2]image.Image{before, after})
	}

	sheet := composeSheet(rows)

	if err := util.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	tmp, err := util.TempFile(filepath.Dir(dest), "."+strings.TrimSuffix(filepath.Base(dest), ".png")+".partial-", ".png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, sheet); err != nil {
		tmp.Close()
		util.CleanupFiles(tmp.Name())
		return fmt.Errorf("encode cut sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		util.CleanupFiles(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		util.CleanupFiles(tmp.Name())
		return err
	}
	return nil
}

func loadThumb(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return resize.Resize(cutSheetThumbWidth, 0, img, resize.Bilinear), nil
}

// composeSheet lays rows out top to bottom on a black canvas.
func composeSheet(rows [][2]image.Image) *image.RGBA {
	cellW, cellH := 0, 0
	for _, row := range rows {
		for _, img := range row {
			b := img.Bounds()
			cellW = max(cellW, b.Dx())
			cellH = max(cellH, b.Dy())
		}
	}

	width := 2*cellW + 3*cutSheetGap
	height := len(rows)*(cellH+cutSheetGap) + cutSheetGap
	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	for r, row := range rows {
		y := cutSheetGap + r*(cellH+cutSheetGap)
		for c, img := range row {
			x := cutSheetGap + c*(cellW+cutSheetGap)
			b := img.Bounds()
			at := image.Rect(x, y, x+b.Dx(), y+b.Dy())
			draw.Draw(sheet, at, img, b.Min, draw.Src)
		}
	}
	return sheet
}

func isPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}
