package platform

// PipeWireCapture is the audio.Capture stub. A real implementation owns
// PipeWire's real-time thread, connecting to the virtual monitor sink
// audio.Config names and invoking onBlock once per captured period.
// PipeWire's client library is an external collaborator; this type
// documents where its bindings are wired in.
type PipeWireCapture struct{}

func NewPipeWireCapture() *PipeWireCapture { return &PipeWireCapture{} }

func (c *PipeWireCapture) Start(onBlock func(data []byte)) error { return ErrNotImplemented }
func (c *PipeWireCapture) Stop()                                 {}
