// Package gltest provides an in-memory glapi.API implementation that records
// every call, for testing render code without a GL context.
package gltest

import (
	"fmt"

	"github.com/iczelia/alacritty/renderer/glapi"
)

// Upload is one recorded TexImage2DRGB call.
type Upload struct {
	Width  int32
	Height int32
	Pixels []byte
}

// BlendState is one recorded blend function change. Plain BlendFunc calls
// are recorded with the alpha factors mirroring the color factors, matching
// GL semantics.
type BlendState struct {
	SrcRGB, DstRGB     glapi.BlendFactor
	SrcAlpha, DstAlpha glapi.BlendFactor
}

// Draw is one recorded draw call.
type Draw struct {
	First, Count int32
}

// Recorder implements glapi.API entirely in memory. The zero value is ready
// to use; handles are allocated sequentially starting at 1.
type Recorder struct {
	// FailCompile makes CompileProgram return glapi.ErrShaderCompile.
	FailCompile bool

	// MissingUniform makes UniformLocation return glapi.ErrUniformNotFound.
	MissingUniform bool

	// Recorded calls.
	Compiles       int
	UniformLookups []string
	BufferData     [][]float32
	Uploads        []Upload
	Uniforms       [][3]float32
	Blends         []BlendState
	Draws          []Draw
	Wraps          []glapi.TextureWrap
	Filters        []glapi.TextureFilter

	// Current binding state.
	BoundVertexArray glapi.VertexArray
	BoundBuffer      glapi.Buffer
	BoundTexture     glapi.Texture
	ActiveProgram    glapi.Program

	nextHandle uint32
}

var _ glapi.API = (*Recorder)(nil)

func (r *Recorder) handle() uint32 {
	r.nextHandle++
	return r.nextHandle
}

func (r *Recorder) GenVertexArray() glapi.VertexArray { return glapi.VertexArray(r.handle()) }
func (r *Recorder) GenBuffer() glapi.Buffer           { return glapi.Buffer(r.handle()) }
func (r *Recorder) GenTexture() glapi.Texture         { return glapi.Texture(r.handle()) }

func (r *Recorder) BindVertexArray(vao glapi.VertexArray) { r.BoundVertexArray = vao }
func (r *Recorder) BindArrayBuffer(vbo glapi.Buffer)      { r.BoundBuffer = vbo }
func (r *Recorder) BindTexture2D(tex glapi.Texture)       { r.BoundTexture = tex }
func (r *Recorder) UseProgram(p glapi.Program)            { r.ActiveProgram = p }

func (r *Recorder) BufferDataStatic(data []float32) {
	r.BufferData = append(r.BufferData, append([]float32(nil), data...))
}

func (r *Recorder) VertexAttribPointer(index uint32, size, strideBytes int32, offsetBytes int) {}
func (r *Recorder) EnableVertexAttribArray(index uint32)                                       {}

func (r *Recorder) TexParameterWrap(w glapi.TextureWrap) { r.Wraps = append(r.Wraps, w) }

func (r *Recorder) TexParameterFilter(f glapi.TextureFilter) { r.Filters = append(r.Filters, f) }

func (r *Recorder) TexImage2DRGB(width, height int32, pixels []byte) {
	r.Uploads = append(r.Uploads, Upload{
		Width:  width,
		Height: height,
		Pixels: append([]byte(nil), pixels...),
	})
}

func (r *Recorder) CompileProgram(version glapi.ShaderVersion, vertexSrc, fragmentSrc string) (glapi.Program, error) {
	r.Compiles++
	if r.FailCompile {
		return glapi.NoProgram, fmt.Errorf("%w: injected failure", glapi.ErrShaderCompile)
	}
	return glapi.Program(r.handle()), nil
}

func (r *Recorder) UniformLocation(p glapi.Program, name string) (glapi.Uniform, error) {
	r.UniformLookups = append(r.UniformLookups, name)
	if r.MissingUniform {
		return glapi.Uniform(-1), fmt.Errorf("%w: %q", glapi.ErrUniformNotFound, name)
	}
	return glapi.Uniform(len(r.UniformLookups) - 1), nil
}

func (r *Recorder) Uniform3f(u glapi.Uniform, x, y, z float32) {
	r.Uniforms = append(r.Uniforms, [3]float32{x, y, z})
}

func (r *Recorder) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha glapi.BlendFactor) {
	r.Blends = append(r.Blends, BlendState{srcRGB, dstRGB, srcAlpha, dstAlpha})
}

func (r *Recorder) BlendFunc(src, dst glapi.BlendFactor) {
	r.Blends = append(r.Blends, BlendState{src, dst, src, dst})
}

func (r *Recorder) DrawTriangles(first, count int32) {
	r.Draws = append(r.Draws, Draw{First: first, Count: count})
}

// CleanBindings reports whether every binding slot has been restored to the
// unbound state.
func (r *Recorder) CleanBindings() bool {
	return r.BoundVertexArray == glapi.NoVertexArray &&
		r.BoundBuffer == glapi.NoBuffer &&
		r.BoundTexture == glapi.NoTexture &&
		r.ActiveProgram == glapi.NoProgram
}
