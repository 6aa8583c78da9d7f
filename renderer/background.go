// Package renderer draws the image layer composited behind the terminal
// grid. All GPU work goes through the narrow primitive surface in glapi;
// every call must run on the thread owning the GL context, serialized with
// the rest of the pipeline.
package renderer

import (
	_ "embed"

	"github.com/iczelia/alacritty/display"
	"github.com/iczelia/alacritty/internal/decode"
	"github.com/iczelia/alacritty/renderer/glapi"
)

// Shader sources for the background rendering program.
var (
	//go:embed res/bg.v.glsl
	backgroundShaderV string

	//go:embed res/bg.f.glsl
	backgroundShaderF string
)

// sizeInfoUniform is the single uniform of the background program: the
// per-axis image scale and the opacity.
const sizeInfoUniform = "sizeInfo"

// quadVertices spans the full clip-space viewport as two triangles,
// interleaved as x, y, u, v per vertex. Uploaded once and never changed.
var quadVertices = [...]float32{
	-1, 1, 0, 0,
	1, 1, 1, 0,
	1, -1, 1, 1,
	1, -1, 1, 1,
	-1, -1, 0, 1,
	-1, 1, 0, 0,
}

const (
	floatsPerVertex = 4
	vertexStride    = floatsPerVertex * 4 // bytes
	vertexCount     = len(quadVertices) / floatsPerVertex
)

// backgroundImage is the metadata for the image currently held by the
// background texture. A failed load is cached with loaded=false and zero
// height and ratio, so the same bad path is never decoded twice.
type backgroundImage struct {
	path   string
	loaded bool
	height uint32
	ratio  float32
}

// scale returns the per-axis factors mapping the image's native pixel size
// onto the viewport.
func (img *backgroundImage) scale(size display.SizeInfo) (x, y float32) {
	return img.ratio * float32(img.height) / size.Width(),
		float32(img.height) / size.Height()
}

// DecodeFunc loads the image at path as tightly packed 8-bit RGB.
type DecodeFunc func(path string) (*decode.Image, error)

// Option configures a BackgroundRenderer at construction.
type Option func(*BackgroundRenderer)

// WithDecoder replaces the image decoder. Tests use this to count decode
// attempts without touching the filesystem.
func WithDecoder(dec DecodeFunc) Option {
	return func(r *BackgroundRenderer) { r.decode = dec }
}

// BackgroundRenderer owns the GPU resources of the background layer: one
// vertex array holding the full-screen quad, one texture whose contents are
// replaced in place on path changes, and one shader program with its single
// resolved uniform. All handles are allocated once in New and never rebuilt.
type BackgroundRenderer struct {
	api glapi.API

	vao       glapi.VertexArray
	texture   glapi.Texture
	program   glapi.Program
	uSizeInfo glapi.Uniform

	decode DecodeFunc
	image  *backgroundImage
}

// New compiles the background program and allocates the quad and texture
// objects. Shader compile or link failure and a missing sizeInfo uniform are
// fatal; the caller decides whether to disable the background layer or abort
// startup. Every binding touched during setup is restored before returning.
func New(api glapi.API, version glapi.ShaderVersion, opts ...Option) (*BackgroundRenderer, error) {
	program, err := api.CompileProgram(version, backgroundShaderV, backgroundShaderF)
	if err != nil {
		return nil, err
	}
	uSizeInfo, err := api.UniformLocation(program, sizeInfoUniform)
	if err != nil {
		return nil, err
	}

	vao := api.GenVertexArray()
	api.BindVertexArray(vao)
	defer api.BindVertexArray(glapi.NoVertexArray)

	// The VBO binding is not part of the VAO itself, but the attribute
	// pointers below capture it; the handle is not needed afterwards.
	vbo := api.GenBuffer()
	api.BindArrayBuffer(vbo)
	defer api.BindArrayBuffer(glapi.NoBuffer)
	api.BufferDataStatic(quadVertices[:])

	// Position.
	api.VertexAttribPointer(0, 2, vertexStride, 0)
	api.EnableVertexAttribArray(0)
	// Texture coordinates.
	api.VertexAttribPointer(1, 2, vertexStride, 2*4)
	api.EnableVertexAttribArray(1)

	texture := api.GenTexture()
	api.BindTexture2D(texture)
	defer api.BindTexture2D(glapi.NoTexture)
	api.TexParameterWrap(glapi.WrapRepeat)
	api.TexParameterFilter(glapi.FilterNearest)

	r := &BackgroundRenderer{
		api:       api,
		vao:       vao,
		texture:   texture,
		program:   program,
		uSizeInfo: uSizeInfo,
		decode:    decode.File,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SetBackground points the background layer at the image at path. The image
// is decoded and uploaded only when the path differs from the current one;
// repeated calls with the same path are no-ops, including paths that failed
// to load. Failures are logged once and cached, never returned.
func (r *BackgroundRenderer) SetBackground(path string) {
	if r.image != nil && r.image.path == path {
		return
	}

	img, err := r.decode(path)
	if err != nil {
		slogger().Warn("failed to load background image", "path", path, "error", err)
		// Cache the failure so a bad path costs one decode attempt, not
		// one per frame. The texture keeps whatever it held before.
		r.image = &backgroundImage{path: path}
		return
	}

	r.image = &backgroundImage{
		path:   path,
		loaded: true,
		height: uint32(img.Height),
		ratio:  float32(img.Width) / float32(img.Height),
	}

	r.api.BindTexture2D(r.texture)
	defer r.api.BindTexture2D(glapi.NoTexture)
	r.api.TexImage2DRGB(int32(img.Width), int32(img.Height), img.Pix)
}

// ShouldDraw reports whether a background is configured. It stays true after
// a failed load: the draw still happens, with a zero scale uniform, matching
// the behavior the rest of the pipeline was built against.
func (r *BackgroundRenderer) ShouldDraw() bool {
	return r.image != nil
}

// Draw renders the background quad under the given viewport at the given
// opacity. Blend state is switched to alpha-over compositing for the draw
// and restored to the dual-source mode the cell renderer expects.
func (r *BackgroundRenderer) Draw(size display.SizeInfo, alpha float32) {
	r.api.BlendFuncSeparate(
		glapi.BlendSrcAlpha, glapi.BlendOneMinusSrcAlpha,
		glapi.BlendSrcAlpha, glapi.BlendOne,
	)
	defer r.api.BlendFunc(glapi.BlendSrc1Color, glapi.BlendOneMinusSrc1Color)

	r.api.BindVertexArray(r.vao)
	defer r.api.BindVertexArray(glapi.NoVertexArray)
	r.api.UseProgram(r.program)
	defer r.api.UseProgram(glapi.NoProgram)
	r.api.BindTexture2D(r.texture)
	defer r.api.BindTexture2D(glapi.NoTexture)

	r.uploadUniforms(size, alpha)

	r.api.DrawTriangles(0, int32(vertexCount))
}

// UpdateUniforms refreshes the sizeInfo uniform outside a full draw, e.g.
// after a resize. It is a no-op while no background is configured.
func (r *BackgroundRenderer) UpdateUniforms(size display.SizeInfo, alpha float32) {
	if r.image == nil {
		return
	}
	r.api.UseProgram(r.program)
	defer r.api.UseProgram(glapi.NoProgram)
	r.uploadUniforms(size, alpha)
}

// uploadUniforms writes the sizeInfo vec3. The program must be in use.
func (r *BackgroundRenderer) uploadUniforms(size display.SizeInfo, alpha float32) {
	img := r.image
	if img == nil {
		return
	}
	if !img.loaded {
		// Cached failure: the zero scale keeps the degenerate draw from
		// producing output.
		r.api.Uniform3f(r.uSizeInfo, 0, 0, alpha)
		return
	}
	x, y := img.scale(size)
	r.api.Uniform3f(r.uSizeInfo, x, y, alpha)
}
