package gpu

// Driver is the EGL/GLES boundary: compiling the luma/chroma programs,
// importing a dmabuf-backed image, binding it to a framebuffer-attachable
// texture, running the draw calls, and fencing. A real implementation is
// cgo-backed against libEGL/libGLESv2; tests use a fake that records the
// sequence of calls.
type Driver interface {
	// CompilePrograms builds the luma and chroma fragment-shader programs
	// (sharing one full-screen-quad vertex shader) and uploads the
	// img_input/colorspace/ranges uniforms once.
	CompilePrograms(matrix Matrix3, ranges Ranges) error

	// ImportImage imports a dmabuf-backed image described by planes and
	// binds it to a newly allocated 2D texture per logical plane,
	// NEAREST/NEAREST/CLAMP_TO_EDGE. Returns an opaque driver handle.
	ImportImage(width, height, fourcc uint32, planes []Plane) (any, error)

	// ReleaseImage releases the driver objects associated with handle, in
	// reverse creation order.
	ReleaseImage(handle any) error

	// DrawLuma attaches to.plane[0] as the color target, binds
	// from.plane[0] as the source texture, runs the luma program at full
	// target resolution.
	DrawLuma(from, to any, width, height uint32) error

	// DrawChroma attaches to.plane[1], sets sample_offsets from the
	// source dimensions, runs the chroma program at half resolution.
	DrawChroma(from, to any, sampleOffsets [4][2]float32, width, height uint32) error

	// Fence inserts a GPU fence and blocks until it signals, so the
	// encoder observes the completed write before Convert returns.
	Fence() error

	// Close destroys the GL ES context and both programs.
	Close() error
}

// Context is the process-wide GPU context: one driver, created once
// at startup with a colorspace/range pair, used for every Convert call for
// the lifetime of the process.
type Context struct {
	driver Driver
	cs     Colorspace
	rng    Range
}

// NewContext compiles the luma/chroma programs against cs/rng and returns
// a ready Context. On shader compile/link failure it returns the driver's
// CompilePrograms error as is.
func NewContext(driver Driver, cs Colorspace, rng Range) (*Context, error) {
	if err := driver.CompilePrograms(Matrix(cs), RangeOffsets(rng)); err != nil {
		return nil, err
	}
	return &Context{driver: driver, cs: cs, rng: rng}, nil
}

// ImportDmabufImage imports a capture-source or encoder-surface image. For
// NV12 captures the caller passes two logical planes (R8 luma, GR88
// chroma at half resolution); for RGB captures, one multiplanar image.
func (c *Context) ImportDmabufImage(width, height, fourcc uint32, planes []Plane) (*Image, error) {
	handle, err := c.driver.ImportImage(width, height, fourcc, planes)
	if err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, Fourcc: fourcc, Planes: planes, driverHandle: handle}, nil
}

// Convert renders from (the captured RGB surface) into to (the encoder's
// NV12 input surface): luma at full resolution, chroma at half
// resolution, then fences and waits before returning.
func (c *Context) Convert(from, to *Image) error {
	if err := c.driver.DrawLuma(from.driverHandle, to.driverHandle, to.Width, to.Height); err != nil {
		return err
	}
	offsets := SampleOffsets(from.Width, from.Height)
	if err := c.driver.DrawChroma(from.driverHandle, to.driverHandle, offsets, to.Width/2, to.Height/2); err != nil {
		return err
	}
	return c.driver.Fence()
}

// CloseImage releases img's owned planes and driver-side objects.
func (c *Context) CloseImage(img *Image) error {
	return img.Close(c.driver)
}

// Close tears down the underlying driver.
func (c *Context) Close() error {
	return c.driver.Close()
}
