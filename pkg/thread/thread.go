// Package thread runs the player's single logical thread.
//
// Windowing calls must come from the main OS thread. The process body
// goes through MainWrapMaybe and anything touching the window, the
// event loop included, through MainMaybe.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"runtime"

	"github.com/faiface/mainthread"
)

var isMacOs = runtime.GOOS == "darwin"

// MainWrapMaybe runs the program body. On macOS the main thread is kept
// free to serve MainMaybe calls, elsewhere the caller must have locked
// the main goroutine with runtime.LockOSThread in init.
func MainWrapMaybe(f func()) {
	if isMacOs {
		mainthread.Run(f)
	} else {
		f()
	}
}

// MainMaybe calls a function on the main thread and waits for it.
func MainMaybe(f func()) {
	if isMacOs {
		mainthread.Call(f)
	} else {
		f()
	}
}

// RunMain drains the loop on the main thread until it stops.
func (l *Loop) RunMain() { MainMaybe(l.Run) }
