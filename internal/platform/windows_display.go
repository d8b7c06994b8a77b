//go:build windows
// +build windows

package platform

import "unsafe"

const (
	displayDeviceAttachedToDesktop = 0x1
	displayDevicePrimaryDevice     = 0x4
	enumCurrentSettings            = 0xFFFFFFFF
)

type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// devMode is DEVMODEW with the display variant of its union.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

func (p *windowsProbe) Outputs() ([]Output, error) {
	var outputs []Output
	for i := uint32(0); ; i++ {
		var dd displayDevice
		dd.Cb = uint32(unsafe.Sizeof(dd))
		ret, _, _ := procEnumDisplayDevicesW.Call(0, uintptr(i), uintptr(unsafe.Pointer(&dd)), 0)
		if ret == 0 {
			break
		}
		if dd.StateFlags&displayDeviceAttachedToDesktop == 0 {
			continue
		}

		var dm devMode
		dm.Size = uint16(unsafe.Sizeof(dm))
		ret, _, _ = procEnumDisplaySettingsW.Call(
			uintptr(unsafe.Pointer(&dd.DeviceName[0])),
			uintptr(enumCurrentSettings),
			uintptr(unsafe.Pointer(&dm)),
		)
		// A frequency of 0 or 1 means the hardware default, not a rate.
		if ret == 0 || dm.PelsWidth == 0 || dm.PelsHeight == 0 || dm.DisplayFrequency <= 1 {
			continue
		}
		outputs = append(outputs, Output{
			ID:          uint64(i),
			Width:       uint(dm.PelsWidth),
			Height:      uint(dm.PelsHeight),
			RefreshRate: float64(dm.DisplayFrequency),
			IsPrimary:   dd.StateFlags&displayDevicePrimaryDevice != 0,
		})
	}
	if len(outputs) == 0 {
		return nil, unavailable(FactOutputs, "no display attached to the desktop")
	}
	return outputs, nil
}

func (p *windowsProbe) WindowManager() (string, error) {
	if name, ok := findProcess(windowsWindowManagers); ok {
		return name, nil
	}
	return "DWM", nil
}
