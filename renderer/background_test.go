package renderer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/iczelia/alacritty/display"
	"github.com/iczelia/alacritty/internal/decode"
	"github.com/iczelia/alacritty/renderer/glapi"
	"github.com/iczelia/alacritty/renderer/glapi/gltest"
)

// fakeDecoder counts decode attempts and serves a fixed image or error.
type fakeDecoder struct {
	calls int
	img   *decode.Image
	err   error
}

func (d *fakeDecoder) decode(path string) (*decode.Image, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.img, nil
}

// warnCounter counts warning-level log records.
type warnCounter struct{ count *int }

func (h warnCounter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}
func (h warnCounter) Handle(context.Context, slog.Record) error { *h.count++; return nil }
func (h warnCounter) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h warnCounter) WithGroup(string) slog.Handler             { return h }

func rgbImage(width, height int) *decode.Image {
	return &decode.Image{Width: width, Height: height, Pix: make([]byte, 3*width*height)}
}

func newTestRenderer(t *testing.T, dec *fakeDecoder) (*BackgroundRenderer, *gltest.Recorder) {
	t.Helper()
	rec := &gltest.Recorder{}
	r, err := New(rec, glapi.Glsl3, WithDecoder(dec.decode))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r, rec
}

func approx(got, want float32) bool {
	return math.Abs(float64(got-want)) < 1e-4
}

func TestNewAllocatesQuadResources(t *testing.T) {
	_, rec := newTestRenderer(t, &fakeDecoder{})

	if rec.Compiles != 1 {
		t.Errorf("expected 1 program compile, got %d", rec.Compiles)
	}
	if len(rec.UniformLookups) != 1 || rec.UniformLookups[0] != "sizeInfo" {
		t.Errorf("expected one lookup of sizeInfo, got %v", rec.UniformLookups)
	}
	if len(rec.BufferData) != 1 {
		t.Fatalf("expected 1 buffer upload, got %d", len(rec.BufferData))
	}
	if got := len(rec.BufferData[0]); got != 24 {
		t.Errorf("quad upload should be 6 vertices * 4 floats, got %d floats", got)
	}
	if len(rec.Wraps) != 1 || rec.Wraps[0] != glapi.WrapRepeat {
		t.Errorf("expected repeat wrap, got %v", rec.Wraps)
	}
	if len(rec.Filters) != 1 || rec.Filters[0] != glapi.FilterNearest {
		t.Errorf("expected nearest filter, got %v", rec.Filters)
	}
	if !rec.CleanBindings() {
		t.Error("New left bindings dangling")
	}
}

func TestQuadGeometry(t *testing.T) {
	if vertexCount != 6 {
		t.Fatalf("quad must be 6 vertices, got %d", vertexCount)
	}
	corners := map[[2]float32]bool{}
	for i := 0; i < len(quadVertices); i += floatsPerVertex {
		corners[[2]float32{quadVertices[i], quadVertices[i+1]}] = true
	}
	for _, want := range [][2]float32{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}} {
		if !corners[want] {
			t.Errorf("quad is missing clip-space corner %v", want)
		}
	}
}

func TestNewShaderCompileError(t *testing.T) {
	rec := &gltest.Recorder{FailCompile: true}
	if _, err := New(rec, glapi.Glsl3); !errors.Is(err, glapi.ErrShaderCompile) {
		t.Fatalf("expected ErrShaderCompile, got %v", err)
	}
}

func TestNewMissingUniform(t *testing.T) {
	rec := &gltest.Recorder{MissingUniform: true}
	if _, err := New(rec, glapi.Glsl3); !errors.Is(err, glapi.ErrUniformNotFound) {
		t.Fatalf("expected ErrUniformNotFound, got %v", err)
	}
}

func TestSetBackgroundDecodesAndUploadsOnce(t *testing.T) {
	dec := &fakeDecoder{img: rgbImage(1600, 800)}
	r, rec := newTestRenderer(t, dec)

	r.SetBackground("bg.png")
	r.SetBackground("bg.png")

	if dec.calls != 1 {
		t.Errorf("expected 1 decode attempt, got %d", dec.calls)
	}
	if len(rec.Uploads) != 1 {
		t.Fatalf("expected 1 texture upload, got %d", len(rec.Uploads))
	}
	up := rec.Uploads[0]
	if up.Width != 1600 || up.Height != 800 {
		t.Errorf("upload size = %dx%d, want 1600x800", up.Width, up.Height)
	}
	if len(up.Pixels) != 3*1600*800 {
		t.Errorf("upload should be packed RGB, got %d bytes", len(up.Pixels))
	}
	if !rec.CleanBindings() {
		t.Error("SetBackground left bindings dangling")
	}
}

func TestSetBackgroundCachesFailure(t *testing.T) {
	warns := 0
	SetLogger(slog.New(warnCounter{count: &warns}))
	defer SetLogger(nil)

	dec := &fakeDecoder{err: errors.New("no such file")}
	r, rec := newTestRenderer(t, dec)

	r.SetBackground("missing.png")
	r.SetBackground("missing.png")

	if dec.calls != 1 {
		t.Errorf("failed path should be decoded once, got %d attempts", dec.calls)
	}
	if warns != 1 {
		t.Errorf("failed path should be logged once, got %d warnings", warns)
	}
	if len(rec.Uploads) != 0 {
		t.Errorf("failed load must not touch texture storage, got %d uploads", len(rec.Uploads))
	}
	if !r.ShouldDraw() {
		t.Error("ShouldDraw should stay true after a cached failure")
	}
}

func TestSetBackgroundPathChangeTriggersReload(t *testing.T) {
	dec := &fakeDecoder{img: rgbImage(64, 64)}
	r, _ := newTestRenderer(t, dec)

	r.SetBackground("a.png")
	r.SetBackground("b.png")

	if dec.calls != 2 {
		t.Errorf("distinct paths should decode twice, got %d attempts", dec.calls)
	}
}

func TestShouldDraw(t *testing.T) {
	dec := &fakeDecoder{img: rgbImage(64, 64)}
	r, _ := newTestRenderer(t, dec)

	if r.ShouldDraw() {
		t.Error("ShouldDraw should be false before any SetBackground call")
	}
	r.SetBackground("bg.png")
	if !r.ShouldDraw() {
		t.Error("ShouldDraw should be true after a successful load")
	}
}

func TestUpdateUniforms(t *testing.T) {
	tests := []struct {
		name     string
		image    *backgroundImage
		viewport display.SizeInfo
		alpha    float32
		want     [3]float32
	}{
		{
			name:     "aspect preserved on wide viewport",
			image:    &backgroundImage{path: "a", loaded: true, height: 800, ratio: 2.0},
			viewport: display.NewSizeInfo(1920, 1080),
			alpha:    0.5,
			want:     [3]float32{2.0 * 800 / 1920, 800.0 / 1080, 0.5},
		},
		{
			name:     "native size viewport",
			image:    &backgroundImage{path: "a", loaded: true, height: 200, ratio: 2.0},
			viewport: display.NewSizeInfo(400, 200),
			alpha:    1,
			want:     [3]float32{1, 1, 1},
		},
		{
			name:     "cached failure collapses scale to zero",
			image:    &backgroundImage{path: "bad"},
			viewport: display.NewSizeInfo(1234, 567),
			alpha:    0.3,
			want:     [3]float32{0, 0, 0.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &gltest.Recorder{}
			r, err := New(rec, glapi.Glsl3)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			r.image = tt.image

			r.UpdateUniforms(tt.viewport, tt.alpha)

			if len(rec.Uniforms) != 1 {
				t.Fatalf("expected 1 uniform upload, got %d", len(rec.Uniforms))
			}
			got := rec.Uniforms[0]
			for i := range got {
				if !approx(got[i], tt.want[i]) {
					t.Errorf("uniform[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if !rec.CleanBindings() {
				t.Error("UpdateUniforms left bindings dangling")
			}
		})
	}
}

func TestUpdateUniformsWithoutBackground(t *testing.T) {
	r, rec := newTestRenderer(t, &fakeDecoder{})

	r.UpdateUniforms(display.NewSizeInfo(800, 600), 1)

	if len(rec.Uniforms) != 0 {
		t.Errorf("no background configured, expected no uniform upload, got %d", len(rec.Uniforms))
	}
	if rec.ActiveProgram != glapi.NoProgram {
		t.Error("no background configured, program should not stay bound")
	}
}

func TestDrawEndToEnd(t *testing.T) {
	dec := &fakeDecoder{img: rgbImage(400, 200)}
	r, rec := newTestRenderer(t, dec)

	r.SetBackground("valid.png")
	if !r.ShouldDraw() {
		t.Fatal("ShouldDraw should be true after a successful load")
	}

	r.Draw(display.NewSizeInfo(800, 600), 1.0)

	if len(rec.Draws) != 1 {
		t.Fatalf("expected exactly 1 draw call, got %d", len(rec.Draws))
	}
	if d := rec.Draws[0]; d.First != 0 || d.Count != 6 {
		t.Errorf("draw call = %+v, want {First:0 Count:6}", d)
	}

	want := [3]float32{2.0 * 200 / 800, 200.0 / 600, 1.0}
	got := rec.Uniforms[len(rec.Uniforms)-1]
	for i := range got {
		if !approx(got[i], want[i]) {
			t.Errorf("uniform[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if len(rec.Blends) != 2 {
		t.Fatalf("expected blend setup and restore, got %d blend changes", len(rec.Blends))
	}
	setup := gltest.BlendState{
		SrcRGB: glapi.BlendSrcAlpha, DstRGB: glapi.BlendOneMinusSrcAlpha,
		SrcAlpha: glapi.BlendSrcAlpha, DstAlpha: glapi.BlendOne,
	}
	restore := gltest.BlendState{
		SrcRGB: glapi.BlendSrc1Color, DstRGB: glapi.BlendOneMinusSrc1Color,
		SrcAlpha: glapi.BlendSrc1Color, DstAlpha: glapi.BlendOneMinusSrc1Color,
	}
	if rec.Blends[0] != setup {
		t.Errorf("blend setup = %+v, want %+v", rec.Blends[0], setup)
	}
	if rec.Blends[1] != restore {
		t.Errorf("blend restore = %+v, want %+v", rec.Blends[1], restore)
	}

	if !rec.CleanBindings() {
		t.Error("Draw left bindings dangling")
	}
}

func TestDrawAfterFailedLoad(t *testing.T) {
	SetLogger(nil)
	dec := &fakeDecoder{err: errors.New("unsupported format")}
	r, rec := newTestRenderer(t, dec)

	r.SetBackground("broken.webp")
	r.Draw(display.NewSizeInfo(800, 600), 0.7)

	// The draw still happens after a failed load; the zero scale uniform
	// keeps it from producing output.
	if len(rec.Draws) != 1 {
		t.Fatalf("expected 1 draw call, got %d", len(rec.Draws))
	}
	want := [3]float32{0, 0, 0.7}
	got := rec.Uniforms[len(rec.Uniforms)-1]
	if got != want {
		t.Errorf("uniform = %v, want %v", got, want)
	}
}
