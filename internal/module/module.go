// Package module loads the game module and exposes its entry points.
package module

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"glbridge/internal/memview"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// HostModuleName is the import module the bridge calls are exported under.
const HostModuleName = "env"

var (
	ErrMissingExport = errors.New("module: missing export")
	ErrBadSignature  = errors.New("module: export has wrong signature")
)

// Imports are the calls a module can make back into the bridge. Returning an
// error from Draw or DrawIndexed traps the module.
type Imports interface {
	Draw(mem memview.Memory, vertexOffset, vertexCount uint32) error
	DrawIndexed(mem memview.Memory, vertexOffset, vertexCount, indexOffset, indexCount uint32) error
	Print(mem memview.Memory, ptr, length uint32)
}

// Options for Load.
type Options struct {
	Name string
	// WASI instantiates wasi_snapshot_preview1 when the module imports it.
	WASI bool
}

// Instance is a running game module.
type Instance struct {
	rt  wazero.Runtime
	mod api.Module

	init  api.Function
	frame api.Function
	click api.Function

	log *zap.Logger
}

// Load compiles and instantiates wasm with the bridge calls linked in.
func Load(ctx context.Context, wasm []byte, imports Imports, opts Options, log *zap.Logger) (*Instance, error) {
	log = log.Named("module")
	rt := wazero.NewRuntime(ctx)

	inst, err := load(ctx, rt, wasm, imports, opts, log)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return inst, nil
}

func load(ctx context.Context, rt wazero.Runtime, wasm []byte, imports Imports, opts Options, log *zap.Logger) (*Instance, error) {
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("compile module: %w", err)
	}
	if len(compiled.ExportedMemories()) == 0 {
		return nil, fmt.Errorf("%w: memory", ErrMissingExport)
	}

	if importsModule(compiled, wasi_snapshot_preview1.ModuleName) {
		if !opts.WASI {
			return nil, fmt.Errorf("module imports %s but WASI is disabled", wasi_snapshot_preview1.ModuleName)
		}
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			return nil, fmt.Errorf("instantiate WASI: %w", err)
		}
		log.Debug("WASI enabled")
	}

	if err := instantiateHost(ctx, rt, imports); err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", HostModuleName, err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(opts.Name).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStartFunctions("_initialize")
	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	inst := &Instance{rt: rt, mod: mod, log: log}
	if inst.frame, err = export(mod, "frame", nil); err != nil {
		return nil, err
	}
	if inst.init, err = export(mod, "init", []api.ValueType{api.ValueTypeI32}); err != nil && !errors.Is(err, ErrMissingExport) {
		return nil, err
	}
	if inst.init == nil {
		log.Warn("module has no init export")
	}
	if inst.click, err = export(mod, "click", []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}); err != nil && !errors.Is(err, ErrMissingExport) {
		return nil, err
	}
	if inst.click == nil {
		log.Warn("module has no click export; input is ignored")
	}

	log.Info("module loaded",
		zap.String("name", opts.Name),
		zap.Uint32("memory_bytes", mod.Memory().Size()))
	return inst, nil
}

func instantiateHost(ctx context.Context, rt wazero.Runtime, imports Imports) error {
	_, err := rt.NewHostModuleBuilder(HostModuleName).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, vertexOffset, vertexCount uint32) {
			if err := imports.Draw(m.Memory(), vertexOffset, vertexCount); err != nil {
				panic(err)
			}
		}).
		WithParameterNames("vertexOffset", "vertexCount").
		Export("draw").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, vertexOffset, vertexCount, indexOffset, indexCount uint32) {
			if err := imports.DrawIndexed(m.Memory(), vertexOffset, vertexCount, indexOffset, indexCount); err != nil {
				panic(err)
			}
		}).
		WithParameterNames("vertexOffset", "vertexCount", "indexOffset", "indexCount").
		Export("drawIndexed").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, length uint32) {
			imports.Print(m.Memory(), ptr, length)
		}).
		WithParameterNames("pointer", "length").
		Export("print").
		Instantiate(ctx)
	return err
}

func importsModule(compiled wazero.CompiledModule, name string) bool {
	for _, f := range compiled.ImportedFunctions() {
		if moduleName, _, _ := f.Import(); moduleName == name {
			return true
		}
	}
	return false
}

func export(mod api.Module, name string, params []api.ValueType) (api.Function, error) {
	fn := mod.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
	}
	if got := fn.Definition().ParamTypes(); !slices.Equal(got, params) {
		return nil, fmt.Errorf("%w: %s takes %d params, want %d", ErrBadSignature, name, len(got), len(params))
	}
	return fn, nil
}

// Init seeds the module. It is called once, before the first frame.
func (i *Instance) Init(ctx context.Context, seed uint32) error {
	if i.init == nil {
		return nil
	}
	if _, err := i.init.Call(ctx, api.EncodeU32(seed)); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	i.log.Debug("module initialized", zap.Uint32("seed", seed))
	return nil
}

// Frame advances the module by one tick. The module draws through the
// bridge calls before it returns.
func (i *Instance) Frame(ctx context.Context) error {
	if _, err := i.frame.Call(ctx); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	return nil
}

// Click delivers one input event.
func (i *Instance) Click(ctx context.Context, x, y int32, button uint8) error {
	if i.click == nil {
		return nil
	}
	if _, err := i.click.Call(ctx, api.EncodeI32(x), api.EncodeI32(y), api.EncodeU32(uint32(button))); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// Memory is the module's linear memory. Take views from it per call, never
// across calls.
func (i *Instance) Memory() api.Memory {
	return i.mod.Memory()
}

// Close releases the runtime and everything instantiated in it.
func (i *Instance) Close(ctx context.Context) error {
	return i.rt.Close(ctx)
}
