// Package glapi narrows the OpenGL surface used by the renderer down to the
// handful of primitive operations it actually issues. Render code talks to
// the API interface only; the production implementation over go-gl lives in
// gl.go, and package gltest provides an in-memory implementation for tests.
package glapi

import (
	"errors"
	"fmt"
)

// Program and uniform errors.
var (
	// ErrShaderCompile is returned when a vertex or fragment shader fails
	// to compile.
	ErrShaderCompile = errors.New("glapi: shader compilation failed")

	// ErrShaderLink is returned when program linking fails.
	ErrShaderLink = errors.New("glapi: program linking failed")

	// ErrUniformNotFound is returned when a uniform lookup by name fails.
	ErrUniformNotFound = errors.New("glapi: uniform not found")
)

// GPU object handles. The zero value of each handle type is the "unbound"
// object: binding it releases the corresponding binding slot.
type (
	// VertexArray identifies a vertex array object.
	VertexArray uint32

	// Buffer identifies a buffer object.
	Buffer uint32

	// Texture identifies a texture object.
	Texture uint32

	// Program identifies a linked shader program.
	Program uint32

	// Uniform identifies a resolved uniform location within a program.
	Uniform int32
)

// Unbound handles, named for readability at call sites.
const (
	NoVertexArray VertexArray = 0
	NoBuffer      Buffer      = 0
	NoTexture     Texture     = 0
	NoProgram     Program     = 0
)

// ShaderVersion selects the shader language the program sources are
// compiled against.
type ShaderVersion uint8

const (
	// Glsl3 targets GLSL 3.30 core, the desktop GL 3.3 profile.
	Glsl3 ShaderVersion = iota

	// Gles2 targets GLSL ES 1.00 for OpenGL ES 2.0 contexts.
	Gles2
)

// Header returns the source prefix prepended to every shader compiled for
// this version. The GLES2_RENDERER define lets one source text serve both
// profiles.
func (v ShaderVersion) Header() string {
	switch v {
	case Gles2:
		return "#version 100\n#define GLES2_RENDERER\n"
	default:
		return "#version 330 core\n"
	}
}

// String returns a human-readable name for the version.
func (v ShaderVersion) String() string {
	switch v {
	case Glsl3:
		return "GLSL 3.30"
	case Gles2:
		return "GLSL ES 1.00"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(v))
	}
}

// BlendFactor is a source or destination blend weight.
type BlendFactor uint8

const (
	// BlendOne weights the term at full strength.
	BlendOne BlendFactor = iota

	// BlendSrcAlpha weights by the source alpha.
	BlendSrcAlpha

	// BlendOneMinusSrcAlpha weights by the inverse source alpha.
	BlendOneMinusSrcAlpha

	// BlendSrc1Color weights by the second fragment output color
	// (dual-source blending).
	BlendSrc1Color

	// BlendOneMinusSrc1Color weights by the inverse of the second fragment
	// output color.
	BlendOneMinusSrc1Color
)

// String returns the GL-style name of the factor.
func (f BlendFactor) String() string {
	switch f {
	case BlendOne:
		return "ONE"
	case BlendSrcAlpha:
		return "SRC_ALPHA"
	case BlendOneMinusSrcAlpha:
		return "ONE_MINUS_SRC_ALPHA"
	case BlendSrc1Color:
		return "SRC1_COLOR"
	case BlendOneMinusSrc1Color:
		return "ONE_MINUS_SRC1_COLOR"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// TextureWrap is the sampling policy outside the [0,1] UV range.
type TextureWrap uint8

const (
	// WrapRepeat tiles the texture.
	WrapRepeat TextureWrap = iota

	// WrapClampToEdge extends the border texels.
	WrapClampToEdge
)

// TextureFilter is the sampling policy between texel centers.
type TextureFilter uint8

const (
	// FilterNearest picks the closest texel, no interpolation.
	FilterNearest TextureFilter = iota

	// FilterLinear interpolates between the four closest texels.
	FilterLinear
)

// API is the fixed set of graphics primitives the renderer orchestrates.
//
// Every call assumes the GL context is current on the calling thread, and
// none of them are safe for concurrent use: binding slots are global to the
// context, so callers serialize all API calls with the rest of the pipeline.
type API interface {
	// Vertex state.
	GenVertexArray() VertexArray
	BindVertexArray(VertexArray)
	GenBuffer() Buffer
	BindArrayBuffer(Buffer)
	// BufferDataStatic uploads data into the bound array buffer as static,
	// never-rewritten contents.
	BufferDataStatic(data []float32)
	// VertexAttribPointer describes attribute index as size consecutive
	// floats read from the bound array buffer at the given stride and
	// offset, both in bytes.
	VertexAttribPointer(index uint32, size, strideBytes int32, offsetBytes int)
	EnableVertexAttribArray(index uint32)

	// Textures.
	GenTexture() Texture
	BindTexture2D(Texture)
	// TexParameterWrap sets the wrap policy on both axes of the bound
	// texture.
	TexParameterWrap(TextureWrap)
	// TexParameterFilter sets both the minification and magnification
	// filter of the bound texture.
	TexParameterFilter(TextureFilter)
	// TexImage2DRGB replaces the bound texture's storage with tightly
	// packed 8-bit RGB pixels of the given size.
	TexImage2DRGB(width, height int32, pixels []byte)

	// Shader programs.
	// CompileProgram compiles and links a program from the given sources,
	// prefixed with the version header. Failures wrap ErrShaderCompile or
	// ErrShaderLink.
	CompileProgram(version ShaderVersion, vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(Program)
	// UniformLocation resolves a uniform by name; a missing uniform wraps
	// ErrUniformNotFound.
	UniformLocation(p Program, name string) (Uniform, error)
	// Uniform3f uploads a vec3 uniform of the program currently in use.
	Uniform3f(u Uniform, x, y, z float32)

	// Blending and draws.
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	BlendFunc(src, dst BlendFactor)
	// DrawTriangles draws count vertices starting at first from the bound
	// vertex array as a triangle list.
	DrawTriangles(first, count int32)
}
