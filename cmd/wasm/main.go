//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"strings"
	"syscall/js"

	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/audio"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/heuristic"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
	"github.com/himanishpuri/MelodyDNA/pkg/models"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorHeuristic
	ErrorSearch
)

const (
	defaultHeuristic = heuristic.BuiltinPrefix + "monotonic"

	// maxGenerations keeps a single call from freezing the page
	maxGenerations = 20000
)

// intArray copies a JS Array of numbers into a Go slice.
func intArray(v js.Value, name string) ([]int, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("%s must be an Array", name)
	}
	out := make([]int, v.Length())
	for i := range out {
		el := v.Index(i)
		if el.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s element %d is not a number", name, i)
		}
		out[i] = el.Int()
	}
	return out, nil
}

func jsIntArray(values []int) js.Value {
	arr := js.Global().Get("Array").New(len(values))
	for i, v := range values {
		arr.SetIndex(i, v)
	}
	return arr
}

// loadHeuristic only accepts builtin patterns, the browser has no config files.
func loadHeuristic(args []js.Value, idx int) (*heuristic.Heuristic, error) {
	ref := defaultHeuristic
	if len(args) > idx && args[idx].Type() == js.TypeString {
		ref = args[idx].String()
	}
	if !strings.HasPrefix(ref, heuristic.BuiltinPrefix) {
		return nil, fmt.Errorf("heuristic must be a %s<name> reference, got %q", heuristic.BuiltinPrefix, ref)
	}
	return heuristic.FromRef(ref)
}

// melodyEvaluate(pitches, heuristicRef?) scores a pitch sequence.
// Returns: {error: number, data: number | string}
func melodyEvaluate(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 1 argument: pitches")
	}
	pitches, err := intArray(args[0], "pitches")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	h, err := loadHeuristic(args, 1)
	if err != nil {
		return makeErrorResponse(ErrorHeuristic, err.Error())
	}
	return makeResponse(h.Evaluate(pitches))
}

// melodyRender(pitches, durations, sampleRate?) synthesizes mono samples for Web Audio.
// Returns: {error: number, data: Float32Array | string}
func melodyRender(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: pitches, durations")
	}
	pitches, err := intArray(args[0], "pitches")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	durations, err := intArray(args[1], "durations")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	m := models.Melody{Pitches: pitches, Durations: durations}
	if err := m.Validate(-1); err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}

	cfg := audio.DefaultRenderConfig()
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		if rate := args[2].Int(); rate > 0 {
			cfg.SampleRate = rate
		}
	}

	samples := audio.Render(m, cfg)
	out := js.Global().Get("Float32Array").New(len(samples))
	for i, s := range samples {
		out.SetIndex(i, s)
	}
	return makeResponse(out)
}

// melodyGenerate(melodies, notes, generations, seed, heuristicRef?) runs the genetic search.
// Returns: {error: number, data: {pitches, durations, notes, score, initialScore} | string}
func melodyGenerate(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 4 arguments: melodies, notes, generations, seed")
	}
	for i, name := range []string{"melodies", "notes", "generations", "seed"} {
		if args[i].Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, name+" must be a number")
		}
	}
	generations := args[2].Int()
	if generations > maxGenerations {
		return makeErrorResponse(ErrorInvalidArgs,
			fmt.Sprintf("generations must be at most %d, got %d", maxGenerations, generations))
	}

	h, err := loadHeuristic(args, 4)
	if err != nil {
		return makeErrorResponse(ErrorHeuristic, err.Error())
	}

	gen, err := search.NewGenetic(args[0].Int(), args[1].Int(), h, search.WithSeed(uint64(args[3].Int())))
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	if err := gen.Run(generations); err != nil {
		return makeErrorResponse(ErrorSearch, err.Error())
	}

	best := gen.BestMelody()
	result := js.Global().Get("Object").New()
	result.Set("pitches", jsIntArray(best.Pitches))
	result.Set("durations", jsIntArray(best.Durations))
	result.Set("notes", best.String())
	result.Set("score", gen.BestScore())
	result.Set("initialScore", gen.InitialBestScore())
	return makeResponse(result)
}

func makeResponse(data any) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "MelodyDNA WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("melodyEvaluate", js.FuncOf(melodyEvaluate))
	js.Global().Set("melodyRender", js.FuncOf(melodyRender))
	js.Global().Set("melodyGenerate", js.FuncOf(melodyGenerate))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined, wasmReady not dispatched")
	}

	if !console.IsUndefined() {
		console.Call("log", "MelodyDNA WASM module loaded and ready")
	}

	<-done
}
