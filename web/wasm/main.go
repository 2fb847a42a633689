//go:build js && wasm

package main

import (
	"time"

	"syscall/js"

	"github.com/cwbudde/algo-glow/analysis"
	"github.com/cwbudde/algo-glow/composite"
	"github.com/cwbudde/algo-glow/engine"
	"github.com/cwbudde/algo-glow/input"
	"github.com/cwbudde/algo-glow/patterns"
	"github.com/cwbudde/algo-glow/scene"
)

var (
	eng      *engine.Engine
	analyzer *analysis.Analyzer
	tracker  *input.Tracker
	samples  []float32
	pix      []byte
	funcs    []js.Func
)

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", export(func(args []js.Value) any {
		if len(args) < 2 {
			return "init(width, height[, sampleRate[, seed]])"
		}
		w, h := args[0].Int(), args[1].Int()
		sr := 48000.0
		if len(args) > 2 {
			sr = args[2].Float()
		}
		seed := int64(1)
		if len(args) > 3 {
			seed = int64(args[3].Int())
		}
		if err := setup(w, h, sr, seed); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("pushAudio", export(func(args []js.Value) any {
		if analyzer == nil || len(args) < 1 {
			return js.Null()
		}
		arr := args[0]
		n := arr.Length()
		if cap(samples) < n {
			samples = make([]float32, n)
		}
		samples = samples[:n]
		for i := 0; i < n; i++ {
			samples[i] = float32(arr.Index(i).Float())
		}
		analyzer.Process(samples)
		return js.Null()
	}))

	api.Set("pointer", export(func(args []js.Value) any {
		if tracker == nil || len(args) < 3 {
			return js.Null()
		}
		x, y, now := args[0].Float(), args[1].Float(), millis(args[3:])
		switch args[2].String() {
		case "down":
			tracker.Press(x, y, now)
		case "up":
			tracker.Release(x, y, now)
		default:
			tracker.Move(x, y, now)
		}
		return js.Null()
	}))

	api.Set("click", export(func(args []js.Value) any {
		if tracker == nil || len(args) < 2 {
			return js.Null()
		}
		tracker.Click(args[0].Float(), args[1].Float(), millis(args[2:]))
		return js.Null()
	}))

	api.Set("setPattern", export(func(args []js.Value) any {
		if eng == nil || len(args) < 1 {
			return js.Null()
		}
		index := args[0]
		if index.Type() == js.TypeString {
			i, ok := patternIndex(index.String())
			if !ok {
				return scene.ErrUnknownPattern.Error()
			}
			index = js.ValueOf(i)
		}
		if err := eng.Manager().SetActivePattern(index.Int()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("setLayers", export(func(args []js.Value) any {
		if eng == nil || len(args) < 1 {
			return js.Null()
		}
		arr := args[0]
		set := make([]int, arr.Length())
		for i := range set {
			set[i] = arr.Index(i).Int()
		}
		if err := eng.Manager().SetLayers(set); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("setTunable", export(func(args []js.Value) any {
		if eng == nil || len(args) < 3 {
			return js.Null()
		}
		if err := eng.Manager().SetTunable(args[0].Int(), args[1].String(), args[2].Float()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("step", export(func(args []js.Value) any {
		if eng == nil {
			return js.Global().Get("Uint8ClampedArray").New(0)
		}
		frame, err := eng.Step(millis(args))
		if err != nil || frame == nil {
			return js.Global().Get("Uint8ClampedArray").New(0)
		}
		n := 4 * frame.Width * frame.Height
		if cap(pix) < n {
			pix = make([]byte, n)
		}
		pix = pix[:n]
		if err := frame.WriteRGBA(pix); err != nil {
			return js.Global().Get("Uint8ClampedArray").New(0)
		}
		arr := js.Global().Get("Uint8ClampedArray").New(n)
		js.CopyBytesToJS(arr, pix)
		return arr
	}))

	api.Set("resize", export(func(args []js.Value) any {
		if eng == nil || len(args) < 2 {
			return js.Null()
		}
		if err := eng.Resize(args[0].Int(), args[1].Int()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("patterns", export(func(args []js.Value) any {
		if eng == nil {
			return js.Global().Get("Array").New(0)
		}
		infos := eng.Manager().Patterns()
		arr := js.Global().Get("Array").New(len(infos))
		for i, info := range infos {
			item := js.Global().Get("Object").New()
			item.Set("index", info.Index)
			item.Set("name", info.Name)
			item.Set("state", info.State.String())
			tun := js.Global().Get("Object").New()
			for k, v := range info.Tunables {
				tun.Set(k, v)
			}
			item.Set("tunables", tun)
			arr.SetIndex(i, item)
		}
		return arr
	}))

	js.Global().Set("AlgoGlow", api)
	select {}
}

func setup(width, height int, sampleRate float64, seed int64) error {
	a, err := analysis.New(analysis.WithSampleRate(sampleRate))
	if err != nil {
		return err
	}
	reg := scene.NewRegistry()
	if err := patterns.Register(reg); err != nil {
		return err
	}
	mgr := scene.NewManager(scene.WithRegistry(reg))
	if _, err := mgr.AddAll(scene.Context{Width: width, Height: height, Seed: seed}); err != nil {
		return err
	}
	if err := mgr.SetActivePattern(0); err != nil {
		return err
	}
	comp, err := composite.New(width, height)
	if err != nil {
		return err
	}
	tr := input.NewTracker()
	e, err := engine.New(a, tr, mgr, comp)
	if err != nil {
		return err
	}

	if eng != nil {
		eng.Close()
	}
	eng, analyzer, tracker = e, a, tr
	return nil
}

func patternIndex(name string) (int, bool) {
	for _, info := range eng.Manager().Patterns() {
		if info.Name == name {
			return info.Index, true
		}
	}
	return 0, false
}

// millis reads an optional performance.now() timestamp in milliseconds.
func millis(args []js.Value) time.Duration {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return 0
	}
	return time.Duration(args[0].Float() * float64(time.Millisecond))
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
