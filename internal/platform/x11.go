//go:build linux || freebsd || openbsd || netbsd || dragonfly
// +build linux freebsd openbsd netbsd dragonfly

package platform

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// sessionOutputs lists outputs through the Wayland compositor when one is
// running and through RandR otherwise, or when the compositor query fails
// and an X display is also available.
func sessionOutputs(getenv func(string) string) ([]Output, error) {
	if wl := getenv("WAYLAND_DISPLAY"); wl != "" {
		outputs, err := waylandOutputs(waylandSocketPath(wl, getenv))
		if err == nil {
			return outputs, nil
		}
		if getenv("DISPLAY") == "" {
			return nil, err
		}
	}
	if display := getenv("DISPLAY"); display != "" {
		return x11Outputs(display)
	}
	return nil, unavailable(FactOutputs, "neither WAYLAND_DISPLAY nor DISPLAY is set")
}

// x11Outputs lists the active RandR outputs of the given X display.
func x11Outputs(display string) ([]Output, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, unavailable(FactOutputs, "connecting to X display %q: %v", display, err)
	}
	defer conn.Close()

	if err := randr.Init(conn); err != nil {
		return nil, probeFailure(FactOutputs, CodeAPIUnavailable, fmt.Errorf("RandR extension: %w", err))
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	res, err := randr.GetScreenResourcesCurrent(conn, root).Reply()
	if err != nil {
		return nil, probeFailure(FactOutputs, CodeAPIUnavailable, fmt.Errorf("GetScreenResourcesCurrent: %w", err))
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primary = reply.Output
	}

	modes := make(map[uint32]randr.ModeInfo, len(res.Modes))
	for _, m := range res.Modes {
		modes[m.Id] = m
	}

	var outputs []Output
	for _, out := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, out, res.ConfigTimestamp).Reply()
		if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil || crtc.Width == 0 || crtc.Height == 0 {
			continue
		}
		mode, ok := modes[uint32(crtc.Mode)]
		if !ok {
			continue
		}
		refresh, ok := modeRefreshRate(mode.DotClock, uint32(mode.Htotal), uint32(mode.Vtotal))
		if !ok {
			continue
		}
		outputs = append(outputs, Output{
			ID:          uint64(out),
			Width:       uint(crtc.Width),
			Height:      uint(crtc.Height),
			RefreshRate: refresh,
			IsPrimary:   primary != 0 && out == primary,
		})
	}

	if len(outputs) == 0 {
		return nil, unavailable(FactOutputs, "no active outputs on X display %q", display)
	}
	return outputs, nil
}

// x11WindowManager reads the EWMH window manager name: the root window's
// _NET_SUPPORTING_WM_CHECK points at a child window carrying _NET_WM_NAME.
func x11WindowManager(display string) (string, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return "", unavailable(FactWindowManager, "connecting to X display %q: %v", display, err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	checkAtom, err := internAtom(conn, "_NET_SUPPORTING_WM_CHECK")
	if err != nil {
		return "", probeFailure(FactWindowManager, CodeAPIUnavailable, err)
	}
	check, err := xproto.GetProperty(conn, false, root, checkAtom, xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return "", probeFailure(FactWindowManager, CodeAPIUnavailable, fmt.Errorf("reading _NET_SUPPORTING_WM_CHECK: %w", err))
	}
	if len(check.Value) < 4 {
		return "", unavailable(FactWindowManager, "no EWMH-compliant window manager running")
	}
	wmWindow := xproto.Window(xgb.Get32(check.Value))

	nameAtom, err := internAtom(conn, "_NET_WM_NAME")
	if err != nil {
		return "", probeFailure(FactWindowManager, CodeAPIUnavailable, err)
	}
	utf8Atom, err := internAtom(conn, "UTF8_STRING")
	if err != nil {
		return "", probeFailure(FactWindowManager, CodeAPIUnavailable, err)
	}

	name, err := xproto.GetProperty(conn, false, wmWindow, nameAtom, utf8Atom, 0, 256).Reply()
	if err == nil && len(name.Value) > 0 {
		return string(name.Value), nil
	}

	// Some window managers only set the legacy WM_NAME.
	name, err = xproto.GetProperty(conn, false, wmWindow, xproto.AtomWmName, xproto.AtomString, 0, 256).Reply()
	if err == nil && len(name.Value) > 0 {
		return string(name.Value), nil
	}
	return "", unavailable(FactWindowManager, "window manager does not set _NET_WM_NAME")
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("interning atom %s: %w", name, err)
	}
	return reply.Atom, nil
}
