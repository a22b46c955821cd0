// Package ioctl encodes and issues Linux ioctl requests.
package ioctl

import (
	"fmt"
	"os"
	"reflect"

	"golang.org/x/sys/unix"
)

// Mode is the data direction of a request, from the caller's point of view.
type Mode uint8

// Modes
const (
	None  Mode = iota
	Write      // _IOC_WRITE
	Read       // _IOC_READ
)

// Command to be sent over ioctl.
type Command uintptr

func (c Command) String() string {
	var (
		mode = Mode(c >> 30 & 0x03)
		size = c >> 16 & 0x3fff
		cmd  = c & 0xffff
		str  string
	)
	if mode&Write > 0 {
		str += " write"
	}
	if mode&Read > 0 {
		str += " read"
	}
	return fmt.Sprintf("ioctl%s (%d bytes) 0x%04x", str, size, uintptr(cmd))
}

// Do issues command with a pointer argument. A nil ptr passes zero.
//
// Errors wrap the errno, so errors.Is(err, unix.ENOMEM) and friends work.
func Do(fd uintptr, command Command, ptr any) error {
	var p uintptr
	if ptr != nil {
		p = reflect.ValueOf(ptr).Pointer()
	}
	return Call(fd, uintptr(command), p)
}

// Call does a plain ioctl system call.
func Call(fd, command, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, command, arg); errno != 0 {
		return fmt.Errorf("%s: %w", Command(command), os.NewSyscallError("ioctl", errno))
	}
	return nil
}

// Encode an ioctl command.
func Encode(mode Mode, size uint16, cmd uintptr) Command {
	return Command(mode)<<30 | Command(size)<<16 | Command(cmd)
}

// Pointer encodes cmd with the size of the value ref points to.
func Pointer(mode Mode, ref any, cmd uintptr) Command {
	size := uint16(reflect.TypeOf(ref).Elem().Size())
	return Encode(mode, size, cmd)
}
