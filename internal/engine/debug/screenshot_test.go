package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedCapture(dir string) *ScreenshotCapture {
	sc := NewScreenshotCapture(dir, "view")
	sc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	return sc
}

func TestScreenshotCapture_Filename(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "view_2024-03-09_14-05-06.png")
	if got := fixedCapture(dir).Filename(); got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
	if got := fixedCapture("").Filename(); got != "view_2024-03-09_14-05-06.png" {
		t.Errorf("Filename() without dir = %q", got)
	}
}

func TestScreenshotCapture_FlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	// Two rows: bottom red, top blue, as read from OpenGL.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := fixedCapture(dir).CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}

	top := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	bottom := color.RGBAModel.Convert(img.At(0, 1)).(color.RGBA)
	if top.B != 255 || top.R != 0 {
		t.Errorf("top pixel = %v, want blue", top)
	}
	if bottom.R != 255 || bottom.B != 0 {
		t.Errorf("bottom pixel = %v, want red", bottom)
	}
}

func TestScreenshotCapture_SizeMismatch(t *testing.T) {
	if _, err := fixedCapture(t.TempDir()).CaptureFromPixels(make([]byte, 7), 1, 2); err == nil {
		t.Error("CaptureFromPixels() accepted a short buffer")
	}
}
