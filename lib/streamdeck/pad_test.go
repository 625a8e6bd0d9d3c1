package streamdeck

import (
	"context"
	"image"
	"image/color"
	"slices"
	"sync"
	"testing"
	"time"

	"ma3bridge/lib/fade"
)

type nullSender struct{}

func (nullSender) Send(string) {}

type nullEncoder struct{}

func (nullEncoder) Encode(int, int) string { return "" }

type fakeKeys struct {
	mu     sync.Mutex
	count  int
	images map[int]image.Image
}

func (f *fakeKeys) KeyCount() int { return f.count }
func (f *fakeKeys) KeySize() int  { return 72 }

func (f *fakeKeys) SetKeyImage(key int, img image.Image) error {
	f.mu.Lock()
	f.images[key] = img
	f.mu.Unlock()
	return nil
}

// background samples the corner pixel, which text never covers.
func (f *fakeKeys) background(key int) color.RGBA {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[key]
	if !ok {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
}

func setupPad(t *testing.T, keyCount int) (*ScenePad, *fade.Engine, *fakeKeys, chan KeyEvent) {
	t.Helper()
	engine := fade.New(fade.NewStore(4), nullEncoder{}, nullSender{}, fade.Options{
		Scenes: 9,
		Sleep:  func(time.Duration) {},
	})
	keys := &fakeKeys{count: keyCount, images: map[int]image.Image{}}
	pad := NewScenePad(keys, engine, 200, nil)

	events := make(chan KeyEvent)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pad.Run(ctx, events)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return pad, engine, keys, events
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTextImageSize(t *testing.T) {
	img := TextImage(96, color.Black, color.White, "SCENE", "1")
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Errorf("got bounds %v", b)
	}
}

func TestDrawsOnlySceneKeys(t *testing.T) {
	_, _, keys, _ := setupPad(t, 15)
	waitFor(t, func() bool {
		keys.mu.Lock()
		defer keys.mu.Unlock()
		return len(keys.images) == 9
	})
}

func TestKeyPressChangesScene(t *testing.T) {
	pad, engine, keys, events := setupPad(t, 15)

	events <- KeyEvent{Key: 1, Pressed: true}
	waitFor(t, func() bool { return pad.Active() == 2 })

	if got := engine.Snapshot(); !slices.Equal(got, []int{0, 100, 0, 0}) {
		t.Errorf("got %v", got)
	}
	waitFor(t, func() bool { return keys.background(1) == colorActive })
	if keys.background(0) != colorIdle {
		t.Errorf("key 0 background %v", keys.background(0))
	}
}

func TestIgnoresReleasesAndSpareKeys(t *testing.T) {
	pad, engine, _, events := setupPad(t, 15)

	events <- KeyEvent{Key: 0, Pressed: false}
	events <- KeyEvent{Key: 12, Pressed: true}
	time.Sleep(20 * time.Millisecond)

	if pad.Active() != 0 {
		t.Errorf("active scene %d", pad.Active())
	}
	if got := engine.Snapshot(); !slices.Equal(got, []int{0, 0, 0, 0}) {
		t.Errorf("got %v", got)
	}
}

func TestFaderSetClearsActiveScene(t *testing.T) {
	pad, engine, _, _ := setupPad(t, 15)

	if _, err := engine.Crossfade(3, 0); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return pad.Active() == 3 })
	if err := engine.SetFader(1, 40); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return pad.Active() == 0 })
}
