//go:build linux
// +build linux

package platform

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

func (p *linuxProbe) Shell() (string, error) {
	return shellFromEnv(p.getenv)
}

func (p *linuxProbe) DesktopEnvironment() (string, error) {
	return desktopFromEnv(p.getenv)
}

// WindowManager identifies the Wayland compositor from the process on the
// other end of the Wayland socket, or the X11 window manager via EWMH.
func (p *linuxProbe) WindowManager() (string, error) {
	if wl := p.getenv("WAYLAND_DISPLAY"); wl != "" {
		name, err := p.waylandCompositor(wl)
		if err == nil {
			return name, nil
		}
		if p.getenv("DISPLAY") == "" {
			return "", err
		}
	}
	if display := p.getenv("DISPLAY"); display != "" {
		return x11WindowManager(display)
	}
	return "", unavailable(FactWindowManager, "neither WAYLAND_DISPLAY nor DISPLAY is set")
}

// Outputs asks the Wayland compositor for its outputs and falls back to
// RandR, which also covers XWayland.
func (p *linuxProbe) Outputs() ([]Output, error) {
	return sessionOutputs(p.getenv)
}

func (p *linuxProbe) waylandCompositor(display string) (string, error) {
	socket := waylandSocketPath(display, p.getenv)
	conn, err := net.DialTimeout("unix", socket, time.Second)
	if err != nil {
		return "", unavailable(FactWindowManager, "connecting to Wayland socket %s: %v", socket, err)
	}
	defer conn.Close()

	pid, err := peerPID(conn.(*net.UnixConn))
	if err != nil {
		return "", probeFailure(FactWindowManager, CodeAPIUnavailable, err)
	}

	exe, err := os.Readlink(filepath.Join(p.procPath, strconv.Itoa(pid), "exe"))
	if err != nil {
		return "", classifyIOError(FactWindowManager, err)
	}
	return cleanCompositorName(filepath.Base(exe)), nil
}

// peerPID returns the pid of the process that owns the other end of a unix
// socket connection.
func peerPID(conn *net.UnixConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("raw socket: %w", err)
	}
	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return 0, fmt.Errorf("socket control: %w", err)
	}
	if credErr != nil {
		return 0, fmt.Errorf("SO_PEERCRED: %w", credErr)
	}
	return int(cred.Pid), nil
}
