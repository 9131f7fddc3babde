package platform

import (
	"github.com/zsiec/deskstream/internal/capture/kms"
)

// DRMCard is the kms.Card stub. A real implementation issues
// GETRESOURCES/GETCRTC/PRIME_HANDLE_TO_FD ioctls against an open DRM
// render node. (The Wayland backend's D-Bus portal negotiation and
// display connection are real in internal/capture/wayland.DBusPortal;
// its capture protocol dispatch is its own documented stub there — see
// wayland.ErrExportUnbound.)
type DRMCard struct{}

func NewDRMCard() *DRMCard { return &DRMCard{} }

func (c *DRMCard) Open(candidates []string) error { return ErrNotImplemented }
func (c *DRMCard) FirstCRTCWithFramebuffer() (kms.Framebuffer, error) {
	return kms.Framebuffer{}, ErrNotImplemented
}
func (c *DRMCard) ExportPlaneFd(handle uint32) (int, error) { return -1, ErrNotImplemented }
func (c *DRMCard) Close() error                             { return nil }
