package lua

import (
	"fmt"
	"time"

	rt "github.com/arnodel/golua/runtime"
	"github.com/spf13/cast"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// FactSource is the part of *sysinfo.SystemInfo the Lua API reads.
type FactSource interface {
	OS() (sysinfo.OSInfo, error)
	KernelVersion() (string, error)
	Host() (string, error)
	Shell() (string, error)
	CPUModel() (string, error)
	CPUCores() (sysinfo.CPUCores, error)
	GPUModel() (string, error)
	MemInfo() (sysinfo.MemInfo, error)
	DiskUsage() (sysinfo.DiskUsage, error)
	Disks() ([]sysinfo.Disk, error)
	SystemDisk() (sysinfo.Disk, error)
	DiskByPath(path string) (sysinfo.Disk, error)
	Outputs() ([]sysinfo.Output, error)
	PrimaryOutput() (sysinfo.Output, error)
	NetworkInterfaces() ([]sysinfo.NetworkInterface, error)
	PrimaryNetworkInterface() (sysinfo.NetworkInterface, error)
	BatteryInfo() (sysinfo.BatteryInfo, error)
	DesktopEnvironment() (string, error)
	WindowManager() (string, error)
	Packages() ([]sysinfo.PackageCount, error)
}

// API exposes a FactSource to Lua as the global table "sysinfo". Every
// function returns its value, or nil and an error message.
type API struct {
	source FactSource
	uptime func() (time.Duration, error)
}

// Register installs the sysinfo table in r.
func Register(r *Runtime, source FactSource) (*API, error) {
	if r == nil {
		return nil, ErrNilRuntime
	}
	if source == nil {
		return nil, ErrNilSource
	}

	api := &API{source: source, uptime: sysinfo.Uptime}
	r.SetGlobal("sysinfo", rt.TableValue(api.table()))
	return api, nil
}

type binding struct {
	name  string
	nArgs int
	fn    rt.GoFunctionFunc
}

func (api *API) table() *rt.Table {
	bindings := []binding{
		{"os", 0, noArgs(func() (rt.Value, error) { return call(api.source.OS, osTable) })},
		{"kernel_version", 0, noArgs(func() (rt.Value, error) { return call(api.source.KernelVersion, rt.StringValue) })},
		{"host", 0, noArgs(func() (rt.Value, error) { return call(api.source.Host, rt.StringValue) })},
		{"shell", 0, noArgs(func() (rt.Value, error) { return call(api.source.Shell, rt.StringValue) })},
		{"cpu_model", 0, noArgs(func() (rt.Value, error) { return call(api.source.CPUModel, rt.StringValue) })},
		{"cpu_cores", 0, noArgs(func() (rt.Value, error) { return call(api.source.CPUCores, coresTable) })},
		{"gpu_model", 0, noArgs(func() (rt.Value, error) { return call(api.source.GPUModel, rt.StringValue) })},
		{"mem_info", 0, noArgs(func() (rt.Value, error) { return call(api.source.MemInfo, memTable) })},
		{"disk_usage", 0, noArgs(func() (rt.Value, error) { return call(api.source.DiskUsage, diskUsageTable) })},
		{"disks", 0, noArgs(func() (rt.Value, error) { return call(api.source.Disks, listOf(diskTable)) })},
		{"system_disk", 0, noArgs(func() (rt.Value, error) { return call(api.source.SystemDisk, diskTable) })},
		{"disk_by_path", 1, api.diskByPath},
		{"outputs", 0, noArgs(func() (rt.Value, error) { return call(api.source.Outputs, listOf(outputTable)) })},
		{"primary_output", 0, noArgs(func() (rt.Value, error) { return call(api.source.PrimaryOutput, outputTable) })},
		{"network_interfaces", 0, noArgs(func() (rt.Value, error) {
			return call(api.source.NetworkInterfaces, listOf(interfaceTable))
		})},
		{"primary_network_interface", 0, noArgs(func() (rt.Value, error) {
			return call(api.source.PrimaryNetworkInterface, interfaceTable)
		})},
		{"battery_info", 0, noArgs(func() (rt.Value, error) { return call(api.source.BatteryInfo, batteryTable) })},
		{"desktop_environment", 0, noArgs(func() (rt.Value, error) { return call(api.source.DesktopEnvironment, rt.StringValue) })},
		{"window_manager", 0, noArgs(func() (rt.Value, error) { return call(api.source.WindowManager, rt.StringValue) })},
		{"packages", 0, noArgs(func() (rt.Value, error) { return call(api.source.Packages, packagesTable) })},
		{"uptime", 0, noArgs(func() (rt.Value, error) { return call(api.uptime, secondsValue) })},
	}

	t := rt.NewTable()
	for _, b := range bindings {
		t.Set(rt.StringValue(b.name), rt.FunctionValue(newGoFunction(b.name, b.fn, b.nArgs)))
	}
	return t
}

func (api *API) diskByPath(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	path, err := c.StringArg(0)
	if err != nil {
		return nil, fmt.Errorf("disk_by_path: %w", err)
	}
	v, err := call(func() (sysinfo.Disk, error) { return api.source.DiskByPath(path) }, diskTable)
	return push(t, c, v, err), nil
}

// noArgs adapts a zero-argument query to a Lua function.
func noArgs(query func() (rt.Value, error)) rt.GoFunctionFunc {
	return func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		v, err := query()
		return push(t, c, v, err), nil
	}
}

// push returns v, or nil and the error message, following the Lua io
// library convention.
func push(t *rt.Thread, c *rt.GoCont, v rt.Value, err error) rt.Cont {
	if err != nil {
		return c.PushingNext(t.Runtime, rt.NilValue, rt.StringValue(err.Error()))
	}
	return c.PushingNext1(t.Runtime, v)
}

func call[T any](query func() (T, error), convert func(T) rt.Value) (rt.Value, error) {
	v, err := query()
	if err != nil {
		return rt.NilValue, err
	}
	return convert(v), nil
}

func listOf[T any](convert func(T) rt.Value) func([]T) rt.Value {
	return func(items []T) rt.Value {
		t := rt.NewTable()
		for i, item := range items {
			t.Set(rt.IntValue(int64(i+1)), convert(item))
		}
		return rt.TableValue(t)
	}
}

// record builds a Lua table from ordered key/value pairs. Nil values are
// skipped so absent optional fields read as nil in Lua.
func record(fields ...any) rt.Value {
	t := rt.NewTable()
	for i := 0; i+1 < len(fields); i += 2 {
		if v := luaValue(fields[i+1]); v != rt.NilValue {
			t.Set(rt.StringValue(cast.ToString(fields[i])), v)
		}
	}
	return rt.TableValue(t)
}

func luaValue(v any) rt.Value {
	switch x := v.(type) {
	case nil:
		return rt.NilValue
	case rt.Value:
		return x
	case string:
		return rt.StringValue(x)
	case *string:
		if x == nil {
			return rt.NilValue
		}
		return rt.StringValue(*x)
	case bool:
		return rt.BoolValue(x)
	case float32, float64:
		return rt.FloatValue(cast.ToFloat64(x))
	case *uint8:
		if x == nil {
			return rt.NilValue
		}
		return rt.IntValue(int64(*x))
	case uint64:
		return rt.IntValue(cast.ToInt64(x))
	case int, int64, uint, uint8, uint32:
		return rt.IntValue(cast.ToInt64(x))
	default:
		return rt.StringValue(cast.ToString(x))
	}
}

func osTable(o sysinfo.OSInfo) rt.Value {
	return record("name", o.Name, "version", o.Version, "id", o.ID)
}

func coresTable(c sysinfo.CPUCores) rt.Value {
	return record("physical", c.Physical, "logical", c.Logical)
}

func memTable(m sysinfo.MemInfo) rt.Value {
	return record("total_bytes", m.TotalBytes, "used_bytes", m.UsedBytes, "used_percent", m.UsedPercent())
}

func diskUsageTable(d sysinfo.DiskUsage) rt.Value {
	return record("total_bytes", d.TotalBytes, "used_bytes", d.UsedBytes, "used_percent", d.UsedPercent())
}

func diskTable(d sysinfo.Disk) rt.Value {
	return record(
		"name", d.Name,
		"mount_point", d.MountPoint,
		"filesystem", d.Filesystem,
		"drive_type", d.DriveType,
		"total_bytes", d.TotalBytes,
		"used_bytes", d.UsedBytes,
		"is_system_drive", d.IsSystemDrive,
	)
}

func outputTable(o sysinfo.Output) rt.Value {
	return record(
		"id", o.ID,
		"width", o.Width,
		"height", o.Height,
		"refresh_rate", o.RefreshRate,
		"is_primary", o.IsPrimary,
	)
}

func interfaceTable(n sysinfo.NetworkInterface) rt.Value {
	return record(
		"name", n.Name,
		"is_up", n.IsUp,
		"is_loopback", n.IsLoopback,
		"ipv4_address", n.IPv4Address,
		"ipv6_address", n.IPv6Address,
		"mac_address", n.MACAddress,
	)
}

func batteryTable(b sysinfo.BatteryInfo) rt.Value {
	var remaining any
	if b.TimeRemaining != nil {
		remaining = int64(b.TimeRemaining.Seconds())
	}
	return record(
		"status", b.Status.String(),
		"percentage", b.Percentage,
		"time_remaining", remaining,
	)
}

// packagesTable maps each manager name to its count next to the total.
func packagesTable(counts []sysinfo.PackageCount) rt.Value {
	managers := rt.NewTable()
	for _, c := range counts {
		managers.Set(rt.StringValue(c.Manager), luaValue(c.Count))
	}
	return record("total", sysinfo.TotalPackages(counts), "managers", rt.TableValue(managers))
}

func secondsValue(d time.Duration) rt.Value {
	return rt.IntValue(int64(d / time.Second))
}
