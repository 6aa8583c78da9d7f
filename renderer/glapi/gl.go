//go:build !nogl

package glapi

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// GL is the production API implementation over OpenGL 3.3 core. It carries
// no state of its own; every call translates directly into GL calls against
// the context current on the calling thread.
type GL struct{}

// NewGL returns the go-gl backed API. gl.Init must have succeeded on the
// current context before any method is called.
func NewGL() GL { return GL{} }

var _ API = GL{}

func (GL) GenVertexArray() VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return VertexArray(vao)
}

func (GL) BindVertexArray(vao VertexArray) {
	gl.BindVertexArray(uint32(vao))
}

func (GL) GenBuffer() Buffer {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return Buffer(vbo)
}

func (GL) BindArrayBuffer(vbo Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(vbo))
}

func (GL) BufferDataStatic(data []float32) {
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(data), gl.Ptr(data), gl.STATIC_DRAW)
}

func (GL) VertexAttribPointer(index uint32, size, strideBytes int32, offsetBytes int) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, strideBytes, uintptr(offsetBytes))
}

func (GL) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (GL) GenTexture() Texture {
	var tex uint32
	gl.GenTextures(1, &tex)
	return Texture(tex)
}

func (GL) BindTexture2D(tex Texture) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (GL) TexParameterWrap(wrap TextureWrap) {
	mode := int32(gl.REPEAT)
	if wrap == WrapClampToEdge {
		mode = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, mode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, mode)
}

func (GL) TexParameterFilter(filter TextureFilter) {
	mode := int32(gl.NEAREST)
	if filter == FilterLinear {
		mode = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, mode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, mode)
}

func (GL) TexImage2DRGB(width, height int32, pixels []byte) {
	// RGB rows are tightly packed; the default 4-byte row alignment would
	// skew any width that is not a multiple of 4.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, width, height, 0, gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (GL) CompileProgram(version ShaderVersion, vertexSrc, fragmentSrc string) (Program, error) {
	vertex, err := compileShader(gl.VERTEX_SHADER, version.Header()+vertexSrc)
	if err != nil {
		return NoProgram, err
	}
	defer gl.DeleteShader(vertex)

	fragment, err := compileShader(gl.FRAGMENT_SHADER, version.Header()+fragmentSrc)
	if err != nil {
		return NoProgram, err
	}
	defer gl.DeleteShader(fragment)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	// GLSL ES 1.00 has no layout qualifiers; pin the renderer's fixed
	// attribute layout before linking. Ignored where layout qualifiers win.
	gl.BindAttribLocation(program, 0, gl.Str("aPos\x00"))
	gl.BindAttribLocation(program, 1, gl.Str("aTexCoords\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return NoProgram, fmt.Errorf("%w: %s", ErrShaderLink, log)
	}
	return Program(program), nil
}

func (GL) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

func (GL) UniformLocation(p Program, name string) (Uniform, error) {
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	if loc < 0 {
		return Uniform(loc), fmt.Errorf("%w: %q", ErrUniformNotFound, name)
	}
	return Uniform(loc), nil
}

func (GL) Uniform3f(u Uniform, x, y, z float32) {
	gl.Uniform3f(int32(u), x, y, z)
}

func (GL) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor) {
	gl.BlendFuncSeparate(srcRGB.gl(), dstRGB.gl(), srcAlpha.gl(), dstAlpha.gl())
}

func (GL) BlendFunc(src, dst BlendFactor) {
	gl.BlendFunc(src.gl(), dst.gl())
}

func (GL) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (f BlendFactor) gl() uint32 {
	switch f {
	case BlendSrcAlpha:
		return gl.SRC_ALPHA
	case BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case BlendSrc1Color:
		return gl.SRC1_COLOR
	case BlendOneMinusSrc1Color:
		return gl.ONE_MINUS_SRC1_COLOR
	default:
		return gl.ONE
	}
}

func compileShader(kind uint32, src string) (uint32, error) {
	shader := gl.CreateShader(kind)
	sources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, sources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", ErrShaderCompile, log)
	}
	return shader, nil
}

// infoLog fetches the compile or link log of a shader or program object.
func infoLog(object uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var length int32
	getiv(object, gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return "no info log"
	}
	buf := strings.Repeat("\x00", int(length)+1)
	getLog(object, length, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00\n ")
}
