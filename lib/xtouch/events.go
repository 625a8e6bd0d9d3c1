// Package xtouch drives a Behringer X-Touch (or X-Touch Extender) in
// Mackie Control mode as a hardware fader bank for the bridge.
package xtouch

import "fmt"

const (
	DeviceIDXTouch   = 0x14
	DeviceIDExtender = 0x15
)

// Control change numbers sent and received in MC mode.
const (
	CCFaderFirst = 70
	CCFaderLast  = 77
	CCFaderMain  = 78
)

// Note numbers of the channel strip buttons and fader touch sensors.
const (
	NoteRecFirst        = 0
	NoteSoloFirst       = 8
	NoteMuteFirst       = 16
	NoteSelectFirst     = 24
	NoteSelectLast      = 31
	NoteButtonLast      = 103
	NoteFaderTouchFirst = 110
	NoteFaderTouchLast  = 117
	NoteFaderTouchMain  = 118
)

// MainFader is the index reported for the master fader.
const MainFader = 8

type Event interface {
	String() string
}

type ButtonEvent struct {
	Button  uint8
	Pressed bool
}

func (e ButtonEvent) String() string {
	if e.Pressed {
		return fmt.Sprintf("Button %d pressed", e.Button)
	}
	return fmt.Sprintf("Button %d released", e.Button)
}

// SelectIndex reports which strip's select button this is.
func (e ButtonEvent) SelectIndex() (int, bool) {
	if e.Button < NoteSelectFirst || e.Button > NoteSelectLast {
		return 0, false
	}
	return int(e.Button - NoteSelectFirst), true
}

type FaderEvent struct {
	Fader uint8
	Value uint8
}

func (e FaderEvent) String() string {
	return fmt.Sprintf("%s = %d", faderLabel(e.Fader), e.Value)
}

type FaderTouchEvent struct {
	Fader   uint8
	Touched bool
}

func (e FaderTouchEvent) String() string {
	if e.Touched {
		return faderLabel(e.Fader) + " touched"
	}
	return faderLabel(e.Fader) + " released"
}

func faderLabel(f uint8) string {
	if f == MainFader {
		return "Fader main"
	}
	return fmt.Sprintf("Fader %d", f)
}
