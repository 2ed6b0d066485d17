package grid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/mountainhome/pkg/tile"
)

func TestMatrix_SetAndGet(t *testing.T) {
	m := NewMatrix(3, 4, 5)
	if got := m.Tile(2, 3, 4); got != tile.Empty {
		t.Errorf("expected empty, got %d", got)
	}

	m.SetTile(2, 3, 4, 7)
	m.SetTile(0, 0, 0, -100)
	if got := m.Tile(2, 3, 4); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := m.Tile(0, 0, 0); got != -100 {
		t.Errorf("expected -100, got %d", got)
	}
	if got := m.SurfaceLevel(2, 3); got != 4 {
		t.Errorf("expected surface 4, got %d", got)
	}
	if got := m.SurfaceLevel(1, 1); got != -1 {
		t.Errorf("expected surface -1, got %d", got)
	}
}

func TestMatrix_OutOfRangeValueWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := NewMatrix(2, 2, 2, WithLogger(zap.New(core)))
	m.SetTile(1, 1, 1, 3)

	m.SetTile(1, 1, 1, 200)
	if got := m.Tile(1, 1, 1); got != 3 {
		t.Errorf("expected value to stay 3, got %d", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if entry := logs.All()[0]; entry.Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
}

func TestMatrix_InvalidEmptyPanics(t *testing.T) {
	err := capturePanic(func() { NewMatrix(2, 2, 2, WithEmpty(300)) })
	if !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("expected ErrValueOutOfRange panic, got %v", err)
	}
}

func TestMatrix_Ranges(t *testing.T) {
	m := NewMatrix(2, 1, 6, WithEmpty(0))
	m.SetTile(1, 0, 0, 1)
	m.SetTile(1, 0, 1, 1)
	m.SetTile(1, 0, 4, 2)

	if got := m.FilledRanges(1, 0); !reflect.DeepEqual(got, []Range{{0, 1}, {4, 4}}) {
		t.Errorf("filled ranges: got %v", got)
	}
	if got := m.EmptyRanges(1, 0); !reflect.DeepEqual(got, []Range{{2, 3}, {5, 5}}) {
		t.Errorf("empty ranges: got %v", got)
	}
	if got := m.EmptyRanges(0, 0); !reflect.DeepEqual(got, []Range{{0, 5}}) {
		t.Errorf("empty column: got %v", got)
	}
}

func TestMatrix_SaveFormat(t *testing.T) {
	m := NewMatrix(2, 3, 4)
	m.SetTile(1, 2, 3, 9)

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data := buf.Bytes()
	if len(data) != 12+2*3*4 {
		t.Fatalf("expected %d bytes, got %d", 12+2*3*4, len(data))
	}
	for i, want := range []uint32{2, 3, 4} {
		if got := binary.LittleEndian.Uint32(data[i*4:]); got != want {
			t.Errorf("header field %d: expected %d, got %d", i, want, got)
		}
	}
	// z*w*h + y*w + x
	if got := int8(data[12+3*2*3+2*2+1]); got != 9 {
		t.Errorf("expected cell value 9, got %d", got)
	}
}

func TestMatrix_RoundTripResizes(t *testing.T) {
	src := NewMatrix(4, 3, 2)
	src.SetTile(3, 2, 1, 5)
	src.SetTile(0, 1, 0, 1)

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	dst := NewMatrix(1, 1, 1)
	if err := dst.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sameTiles(t, src, dst)
}

func TestMatrix_LoadFailuresKeepGrid(t *testing.T) {
	header := func(w, h, d int32) []byte {
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, [3]int32{w, h, d})
		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{1, 0, 0}, ErrTruncatedSave},
		{"zero width", header(0, 2, 2), ErrCorruptSave},
		{"negative depth", header(2, 2, -1), ErrCorruptSave},
		{"too many cells", header(MaxDimension, MaxDimension, 1), ErrCorruptSave},
		{"missing cells", append(header(2, 2, 2), 1, 2, 3), ErrTruncatedSave},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatrix(3, 3, 3)
			m.SetTile(2, 2, 2, 4)

			err := m.Load(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if m.Width() != 3 || m.Depth() != 3 || m.Tile(2, 2, 2) != 4 {
				t.Error("grid changed after failed load")
			}
		})
	}
}

func TestGrids_AgreeUnderRandomWrites(t *testing.T) {
	const w, h, d = 7, 5, 9
	rng := rand.New(rand.NewSource(2024))
	o := NewOctree(w, h, d)
	m := NewMatrix(w, h, d)
	values := []tile.Type{tile.Empty, 0, 1, 2, 3}

	for i := 0; i < 1500; i++ {
		x, y, z := rng.Intn(w), rng.Intn(h), rng.Intn(d)
		v := values[rng.Intn(len(values))]
		o.SetTile(x, y, z, v)
		m.SetTile(x, y, z, v)
	}

	sameTiles(t, o, m)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a, b := o.SurfaceLevel(x, y), m.SurfaceLevel(x, y); a != b {
				t.Errorf("surface (%d,%d): octree %d, dense %d", x, y, a, b)
			}
			if a, b := o.FilledRanges(x, y), m.FilledRanges(x, y); !reflect.DeepEqual(a, b) {
				t.Errorf("filled (%d,%d): octree %v, dense %v", x, y, a, b)
			}
			if a, b := o.EmptyRanges(x, y), m.EmptyRanges(x, y); !reflect.DeepEqual(a, b) {
				t.Errorf("empty (%d,%d): octree %v, dense %v", x, y, a, b)
			}
		}
	}
}

func TestCopy(t *testing.T) {
	src := randomOctree(5, 4, 4, 4, 80)
	dst := NewMatrix(4, 4, 4)
	dst.SetTile(0, 0, 0, 3)

	if err := Copy(dst, src); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	sameTiles(t, src, dst)

	if err := Copy(NewMatrix(4, 4, 3), src); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
