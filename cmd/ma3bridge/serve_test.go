package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"ma3bridge/lib/config"
	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
	"ma3bridge/lib/ma3"
)

func TestAttachXTouchClosesDriverOnError(t *testing.T) {
	closed := 0
	orig := closeMIDIDriver
	closeMIDIDriver = func() { closed++ }
	t.Cleanup(func() { closeMIDIDriver = orig })

	engine := fade.New(fade.NewStore(4), ma3.DefaultEncoder(), ma3.NewSender(nopTransport{}, "/gma3", nil), fade.Options{
		Scenes: 9,
		Sleep:  func(time.Duration) {},
	})
	var wg sync.WaitGroup
	cfg := config.XTouch{Enabled: true, Port: "no-such-midi-port-for-tests", XFadeMs: 100}

	if err := attachXTouch(context.Background(), &wg, cfg, engine, logging.NewNop()); err == nil {
		t.Fatal("expected an error for a missing MIDI port")
	}
	wg.Wait()
	if closed != 1 {
		t.Errorf("driver closed %d times, want 1", closed)
	}
}
