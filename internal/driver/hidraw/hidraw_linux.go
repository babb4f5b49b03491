//go:build linux

package hidraw

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl numbers from linux/hidraw.h.
const (
	iocReadWrite = 3
	iocTypeHID   = 'H'
	nrSetFeature = 0x06
	nrGetFeature = 0x07
)

// rawNode is a hidraw character device.
type rawNode struct {
	file *os.File
}

// openNode opens a hidraw device for feature report exchange.
//
//nolint:ireturn // nodeOpener returns the narrow interface.
func openNode(path string) (node, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	return &rawNode{file: file}, nil
}

// GetFeature issues HIDIOCGFEATURE; buf[0] selects the report.
func (n *rawNode) GetFeature(buf []byte) error {
	return n.ioctl(nrGetFeature, buf)
}

// SetFeature issues HIDIOCSFEATURE; buf[0] is the report number.
func (n *rawNode) SetFeature(buf []byte) error {
	return n.ioctl(nrSetFeature, buf)
}

// Close closes the device file.
func (n *rawNode) Close() error {
	return n.file.Close()
}

// ioctl runs a variable-length hidraw feature request.
func (n *rawNode) ioctl(nr uintptr, buf []byte) error {
	request := uintptr(iocReadWrite)<<30 | uintptr(len(buf))<<16 | uintptr(iocTypeHID)<<8 | nr

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, n.file.Fd(), request, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}

	return nil
}
