package emu

// FragmentIn carries interpolated fragment attributes into a shader run.
type FragmentIn struct {
	X, Y float32
	Z    float32

	U, V float32

	R, G, B, A float32

	Nx, Ny, Nz float32
}

// FragmentOut is the result of one fragment shader invocation.
type FragmentOut struct {
	R, G, B, A float32
	Depth      float32
	Discard    bool
}

// VertexIn carries one vertex's attributes into a shader run.
type VertexIn struct {
	X, Y, Z    float32
	U, V       float32
	R, G, B, A float32
	Nx, Ny, Nz float32
}

// VertexOut is the clip-space result of one vertex shader invocation.
type VertexOut struct {
	X, Y, Z, W float32
}

// ExecFragment runs the loaded program as a fragment shader with the
// compiler's input register convention: r2-r3 texcoord, r4-r6 normal,
// r7-r10 color. The output color is read from r4-r7.
func (e *Emulator) ExecFragment(in FragmentIn) (FragmentOut, error) {
	e.Reset()

	e.regFile.WriteFloat(2, in.U)
	e.regFile.WriteFloat(3, in.V)
	e.regFile.WriteFloat(4, in.Nx)
	e.regFile.WriteFloat(5, in.Ny)
	e.regFile.WriteFloat(6, in.Nz)
	e.regFile.WriteFloat(7, in.R)
	e.regFile.WriteFloat(8, in.G)
	e.regFile.WriteFloat(9, in.B)
	e.regFile.WriteFloat(10, in.A)

	if err := e.runLoaded(); err != nil {
		return FragmentOut{}, err
	}

	return FragmentOut{
		R:     e.regFile.ReadFloat(4),
		G:     e.regFile.ReadFloat(5),
		B:     e.regFile.ReadFloat(6),
		A:     e.regFile.ReadFloat(7),
		Depth: in.Z,
	}, nil
}

// ExecVertex runs the loaded program as a vertex shader: inputs in
// r2-r13, clip-space position read back from r1-r4.
func (e *Emulator) ExecVertex(in VertexIn) (VertexOut, error) {
	e.Reset()

	e.regFile.WriteFloat(2, in.X)
	e.regFile.WriteFloat(3, in.Y)
	e.regFile.WriteFloat(4, in.Z)
	e.regFile.WriteFloat(5, in.U)
	e.regFile.WriteFloat(6, in.V)
	e.regFile.WriteFloat(7, in.R)
	e.regFile.WriteFloat(8, in.G)
	e.regFile.WriteFloat(9, in.B)
	e.regFile.WriteFloat(10, in.A)
	e.regFile.WriteFloat(11, in.Nx)
	e.regFile.WriteFloat(12, in.Ny)
	e.regFile.WriteFloat(13, in.Nz)

	if err := e.runLoaded(); err != nil {
		return VertexOut{}, err
	}

	return VertexOut{
		X: e.regFile.ReadFloat(1),
		Y: e.regFile.ReadFloat(2),
		Z: e.regFile.ReadFloat(3),
		W: e.regFile.ReadFloat(4),
	}, nil
}
