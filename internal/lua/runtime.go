// Package lua runs Lua scripts against a sysinfo table backed by the
// system-information facade.
package lua

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"
)

// RuntimeConfig contains configuration options for the Lua runtime.
type RuntimeConfig struct {
	// CPULimit is the CPU instruction limit for one script execution.
	// 0 means unlimited.
	CPULimit uint64
	// MemoryLimit is the maximum memory in bytes a script may allocate.
	// 0 means unlimited.
	MemoryLimit uint64
	// Stdout receives Lua print output in addition to the capture buffer.
	// If nil, output is only captured.
	Stdout io.Writer
}

// DefaultConfig returns a RuntimeConfig with a 10M instruction and 50 MB
// budget, printing to stdout.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		CPULimit:    10_000_000,
		MemoryLimit: 50 * 1024 * 1024,
		Stdout:      os.Stdout,
	}
}

// Runtime wraps a Golua runtime with resource limits. All methods are safe
// for concurrent use; executions are serialized.
type Runtime struct {
	config  RuntimeConfig
	runtime *rt.Runtime
	output  *bytes.Buffer
	cleanup func()
	mu      sync.RWMutex
}

// New creates a Runtime with the Lua standard libraries loaded.
func New(config RuntimeConfig) (*Runtime, error) {
	output := &bytes.Buffer{}
	var stdout io.Writer = output
	if config.Stdout != nil {
		stdout = io.MultiWriter(config.Stdout, output)
	}

	r := rt.New(stdout)
	cleanup := lib.LoadAll(r)

	return &Runtime{
		config:  config,
		runtime: r,
		output:  output,
		cleanup: cleanup,
	}, nil
}

// LoadString compiles a chunk of Lua source.
func (lr *Runtime) LoadString(name, code string) (*rt.Closure, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.load(name, []byte(code))
}

// LoadFile compiles a Lua script from disk.
func (lr *Runtime) LoadFile(path string) (*rt.Closure, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading Lua file %s: %w", path, err)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.load(path, content)
}

func (lr *Runtime) load(name string, code []byte) (*rt.Closure, error) {
	closure, err := lr.runtime.CompileAndLoadLuaChunk(name, code, rt.TableValue(lr.runtime.GlobalEnv()))
	if err != nil {
		return nil, fmt.Errorf("loading Lua chunk %s: %w", name, err)
	}
	return closure, nil
}

// Execute runs a compiled closure within the configured limits. golua
// enforces hard limits by panicking; that panic is returned as an error.
func (lr *Runtime) Execute(closure *rt.Closure) (result rt.Value, err error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			result = rt.NilValue
			err = fmt.Errorf("Lua execution error: %v", r)
		}
	}()

	lr.runtime.PushContext(rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    lr.config.CPULimit,
			Memory: lr.config.MemoryLimit,
		},
	})
	defer lr.runtime.PopContext()

	result, err = rt.Call1(lr.runtime.MainThread(), rt.FunctionValue(closure))
	if err != nil {
		return rt.NilValue, fmt.Errorf("Lua execution error: %w", err)
	}
	return result, nil
}

// ExecuteString compiles and runs code.
func (lr *Runtime) ExecuteString(name, code string) (rt.Value, error) {
	closure, err := lr.LoadString(name, code)
	if err != nil {
		return rt.NilValue, err
	}
	return lr.Execute(closure)
}

// ExecuteFile compiles and runs the script at path.
func (lr *Runtime) ExecuteFile(path string) (rt.Value, error) {
	closure, err := lr.LoadFile(path)
	if err != nil {
		return rt.NilValue, err
	}
	return lr.Execute(closure)
}

// GetGlobal retrieves a global variable.
func (lr *Runtime) GetGlobal(name string) rt.Value {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.runtime.GlobalEnv().Get(rt.StringValue(name))
}

// SetGlobal sets a global variable.
func (lr *Runtime) SetGlobal(name string, value rt.Value) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.runtime.GlobalEnv().Set(rt.StringValue(name), value)
}

// newGoFunction wraps fn as a Lua function that may run under resource
// limits.
func newGoFunction(name string, fn rt.GoFunctionFunc, nArgs int) *rt.GoFunction {
	goFunc := rt.NewGoFunction(fn, name, nArgs, false)
	rt.SolemnlyDeclareCompliance(rt.ComplyMemSafe|rt.ComplyCpuSafe, goFunc)
	return goFunc
}

// Output returns everything the scripts have printed so far.
func (lr *Runtime) Output() string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.output.String()
}

// Close releases the runtime. It must not be used afterwards.
func (lr *Runtime) Close() error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.cleanup != nil {
		lr.cleanup()
		lr.cleanup = nil
	}
	return nil
}
