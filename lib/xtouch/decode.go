package xtouch

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// FindInPort returns the first MIDI input whose name contains substr,
// case-insensitively.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", substr)
}

func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", substr)
}

// Decode maps a raw MIDI message to a surface event, or nil for messages
// the bridge does not use.
func Decode(msg midi.Message) Event {
	var channel, key, value uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		return decodeNote(key, value > 0)
	case msg.GetNoteOff(&channel, &key, &value):
		return decodeNote(key, false)
	case msg.GetControlChange(&channel, &key, &value):
		switch {
		case key >= CCFaderFirst && key <= CCFaderLast:
			return FaderEvent{Fader: key - CCFaderFirst, Value: value}
		case key == CCFaderMain:
			return FaderEvent{Fader: MainFader, Value: value}
		}
	}
	return nil
}

func decodeNote(key uint8, on bool) Event {
	switch {
	case key <= NoteButtonLast:
		return ButtonEvent{Button: key, Pressed: on}
	case key >= NoteFaderTouchFirst && key <= NoteFaderTouchLast:
		return FaderTouchEvent{Fader: key - NoteFaderTouchFirst, Touched: on}
	case key == NoteFaderTouchMain:
		return FaderTouchEvent{Fader: MainFader, Touched: on}
	}
	return nil
}
