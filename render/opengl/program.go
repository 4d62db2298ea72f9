package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gekko3d/sparks/particles"
)

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: compile shader: %s", particles.ErrConstruction, strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

// linkProgram compiles each (type, source) stage and links them into one program.
func linkProgram(stages map[uint32]string) (uint32, error) {
	var compiled []uint32
	release := func() {
		for _, s := range compiled {
			gl.DeleteShader(s)
		}
	}
	for typ, src := range stages {
		s, err := compileShader(src, typ)
		if err != nil {
			release()
			return 0, err
		}
		compiled = append(compiled, s)
	}

	program := gl.CreateProgram()
	for _, s := range compiled {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)
	for _, s := range compiled {
		gl.DetachShader(program, s)
	}
	release()

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link program: %s", particles.ErrConstruction, strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
