//go:build linux || freebsd || openbsd || netbsd || dragonfly
// +build linux freebsd openbsd netbsd dragonfly

package platform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"time"
)

// Object ids, opcodes and flags of the core Wayland protocol used to list
// outputs. The client owns ids from 2 upward; 1 is always wl_display.
const (
	wlDisplayID = 1

	wlDisplaySync        = 0
	wlDisplayGetRegistry = 1
	wlRegistryBind       = 0
	wlDisplayErrorEvent  = 0
	wlRegistryGlobal     = 0
	wlCallbackDone       = 0
	wlOutputMode         = 1

	wlOutputModeCurrent = 0x1
	wlOutputMaxVersion  = 2

	wlHeaderSize     = 8
	wlMaxMessageSize = 4096
)

var errWaylandProtocol = errors.New("wayland protocol error")

// waylandSocketPath resolves WAYLAND_DISPLAY against XDG_RUNTIME_DIR.
func waylandSocketPath(display string, getenv func(string) string) string {
	if filepath.IsAbs(display) {
		return display
	}
	return filepath.Join(getenv("XDG_RUNTIME_DIR"), display)
}

// waylandOutputs lists the outputs the compositor behind socket advertises.
func waylandOutputs(socket string) ([]Output, error) {
	conn, err := net.DialTimeout("unix", socket, time.Second)
	if err != nil {
		return nil, unavailable(FactOutputs, "connecting to Wayland socket %s: %v", socket, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))

	outputs, err := newWaylandClient(conn).outputs()
	if err != nil {
		return nil, probeFailure(FactOutputs, CodeAPIUnavailable, fmt.Errorf("Wayland: %w", err))
	}
	if len(outputs) == 0 {
		return nil, unavailable(FactOutputs, "compositor advertises no output with a current mode")
	}
	return outputs, nil
}

// waylandClient speaks just enough of the wire protocol to bind every
// wl_output global and collect its current mode.
type waylandClient struct {
	rw     io.ReadWriter
	nextID uint32
}

type waylandGlobal struct {
	name    uint32
	iface   string
	version uint32
}

type waylandMode struct {
	width, height int32
	refreshMHz    int32
	current       bool
}

func newWaylandClient(rw io.ReadWriter) *waylandClient {
	return &waylandClient{rw: rw, nextID: 2}
}

func (c *waylandClient) newID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

// outputs performs two round trips: one to enumerate globals, one to bind
// the wl_output globals and receive their mode events.
func (c *waylandClient) outputs() ([]Output, error) {
	registry := c.newID()
	if err := c.send(wlDisplayID, wlDisplayGetRegistry, wlUint(registry)); err != nil {
		return nil, err
	}

	var globals []waylandGlobal
	err := c.roundtrip(func(sender, opcode uint32, body []byte) error {
		if sender != registry || opcode != wlRegistryGlobal {
			return nil
		}
		g, err := parseWaylandGlobal(body)
		if err != nil {
			return err
		}
		if g.iface == "wl_output" {
			globals = append(globals, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(globals) == 0 {
		return nil, nil
	}

	bound := make(map[uint32]uint32, len(globals)) // object id -> global name
	order := make([]uint32, 0, len(globals))
	for _, g := range globals {
		id := c.newID()
		version := min(g.version, wlOutputMaxVersion)
		args := [][]byte{wlUint(g.name), wlString(g.iface), wlUint(version), wlUint(id)}
		if err := c.send(registry, wlRegistryBind, args...); err != nil {
			return nil, err
		}
		bound[id] = g.name
		order = append(order, id)
	}

	modes := make(map[uint32]waylandMode, len(globals))
	err = c.roundtrip(func(sender, opcode uint32, body []byte) error {
		if _, ok := bound[sender]; !ok || opcode != wlOutputMode {
			return nil
		}
		m, err := parseWaylandMode(body)
		if err != nil {
			return err
		}
		if m.current {
			modes[sender] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return waylandOutputList(order, bound, modes), nil
}

// waylandOutputList converts the current modes in bind order. The first
// output is primary, as Wayland has no such notion of its own.
func waylandOutputList(order []uint32, bound map[uint32]uint32, modes map[uint32]waylandMode) []Output {
	var outputs []Output
	for _, id := range order {
		m, ok := modes[id]
		if !ok || m.width <= 0 || m.height <= 0 || m.refreshMHz <= 0 {
			continue
		}
		outputs = append(outputs, Output{
			ID:          uint64(bound[id]),
			Width:       uint(m.width),
			Height:      uint(m.height),
			RefreshRate: float64(m.refreshMHz) / 1000,
			IsPrimary:   len(outputs) == 0,
		})
	}
	return outputs
}

// roundtrip sends wl_display.sync and hands every event to handle until
// the sync callback fires.
func (c *waylandClient) roundtrip(handle func(sender, opcode uint32, body []byte) error) error {
	callback := c.newID()
	if err := c.send(wlDisplayID, wlDisplaySync, wlUint(callback)); err != nil {
		return err
	}
	for {
		sender, opcode, body, err := c.readEvent()
		if err != nil {
			return err
		}
		switch {
		case sender == callback && opcode == wlCallbackDone:
			return nil
		case sender == wlDisplayID && opcode == wlDisplayErrorEvent:
			return parseWaylandError(body)
		}
		if err := handle(sender, opcode, body); err != nil {
			return err
		}
	}
}

func (c *waylandClient) send(object, opcode uint32, args ...[]byte) error {
	size := wlHeaderSize
	for _, a := range args {
		size += len(a)
	}
	msg := make([]byte, wlHeaderSize, size)
	binary.NativeEndian.PutUint32(msg[0:], object)
	binary.NativeEndian.PutUint32(msg[4:], uint32(size)<<16|opcode)
	for _, a := range args {
		msg = append(msg, a...)
	}
	if _, err := c.rw.Write(msg); err != nil {
		return fmt.Errorf("writing request: %w", err)
	}
	return nil
}

func (c *waylandClient) readEvent() (sender, opcode uint32, body []byte, err error) {
	var header [wlHeaderSize]byte
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return 0, 0, nil, fmt.Errorf("reading event: %w", err)
	}
	sender = binary.NativeEndian.Uint32(header[0:])
	word := binary.NativeEndian.Uint32(header[4:])
	size, opcode := int(word>>16), word&0xffff
	if size < wlHeaderSize || size > wlMaxMessageSize || size%4 != 0 {
		return 0, 0, nil, fmt.Errorf("%w: event size %d", errWaylandProtocol, size)
	}
	body = make([]byte, size-wlHeaderSize)
	if _, err := io.ReadFull(c.rw, body); err != nil {
		return 0, 0, nil, fmt.Errorf("reading event body: %w", err)
	}
	return sender, opcode, body, nil
}

func wlUint(v uint32) []byte {
	return binary.NativeEndian.AppendUint32(nil, v)
}

// wlString encodes a length-prefixed, NUL-terminated string padded to 32 bits.
func wlString(s string) []byte {
	n := len(s) + 1
	b := binary.NativeEndian.AppendUint32(nil, uint32(n))
	b = append(b, s...)
	return append(b, make([]byte, 1+(4-n%4)%4)...)
}

// wlArgs reads wire arguments from an event body in order.
type wlArgs struct {
	body []byte
	err  error
}

func (a *wlArgs) u32() uint32 {
	if a.err != nil {
		return 0
	}
	if len(a.body) < 4 {
		a.err = fmt.Errorf("%w: truncated argument", errWaylandProtocol)
		return 0
	}
	v := binary.NativeEndian.Uint32(a.body)
	a.body = a.body[4:]
	return v
}

func (a *wlArgs) i32() int32 { return int32(a.u32()) }

func (a *wlArgs) str() string {
	n := int(a.u32())
	if a.err != nil || n == 0 {
		return ""
	}
	padded := (n + 3) &^ 3
	if padded > len(a.body) {
		a.err = fmt.Errorf("%w: truncated string", errWaylandProtocol)
		return ""
	}
	s := string(a.body[:n-1])
	a.body = a.body[padded:]
	return s
}

func parseWaylandGlobal(body []byte) (waylandGlobal, error) {
	a := wlArgs{body: body}
	g := waylandGlobal{name: a.u32(), iface: a.str(), version: a.u32()}
	return g, a.err
}

func parseWaylandMode(body []byte) (waylandMode, error) {
	a := wlArgs{body: body}
	flags := a.u32()
	m := waylandMode{width: a.i32(), height: a.i32(), refreshMHz: a.i32()}
	m.current = flags&wlOutputModeCurrent != 0
	return m, a.err
}

func parseWaylandError(body []byte) error {
	a := wlArgs{body: body}
	object, code, msg := a.u32(), a.u32(), a.str()
	if a.err != nil {
		return a.err
	}
	return fmt.Errorf("%w: object %d code %d: %s", errWaylandProtocol, object, code, msg)
}
