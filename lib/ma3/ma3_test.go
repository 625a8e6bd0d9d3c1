package ma3

import (
	"errors"
	"testing"
	"time"

	"ma3bridge/lib/osc"
)

func TestEncode(t *testing.T) {
	enc := DefaultEncoder()
	for _, tc := range []struct {
		channel, value int
		want           string
	}{
		{1, 50, "FaderMaster Page 1.201 At 50"},
		{4, 0, "FaderMaster Page 1.204 At 0"},
		{12, 100, "FaderMaster Page 1.212 At 100"},
	} {
		if got := enc.Encode(tc.channel, tc.value); got != tc.want {
			t.Errorf("Encode(%d, %d) = %q, want %q", tc.channel, tc.value, got, tc.want)
		}
	}
}

func TestEncodeCustomClass(t *testing.T) {
	enc := Encoder{ObjectClass: "Fader", Page: 3, PageOffset: 100}
	if got := enc.Encode(2, 75); got != "Fader Page 3.102 At 75" {
		t.Errorf("got %q", got)
	}
}

func TestCommandAddress(t *testing.T) {
	for prefix, want := range map[string]string{
		"/gma3":  "/gma3/cmd",
		"/gma3/": "/gma3/cmd",
		"":       "/cmd",
	} {
		if got := CommandAddress(prefix); got != want {
			t.Errorf("CommandAddress(%q) = %q, want %q", prefix, got, want)
		}
	}
}

type failingTransport struct {
	calls int
}

func (f *failingTransport) Send(string, ...any) error {
	f.calls++
	return errors.New("network unreachable")
}

func TestSenderSwallowsErrors(t *testing.T) {
	tr := &failingTransport{}
	s := NewSender(tr, "/gma3", nil)
	s.Send("Go+")
	if tr.calls != 1 {
		t.Errorf("got %d calls, want 1", tr.calls)
	}
}

func TestSenderOverOSC(t *testing.T) {
	mock, err := osc.NewMockConsole()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mock.Close() })

	client, err := osc.Dial(0, "127.0.0.1", mock.Port())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	s := NewSender(client, "/gma3", nil)
	s.Send(DefaultEncoder().Encode(1, 50))

	msgs := mock.WaitFor(1, 2*time.Second)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Address != "/gma3/cmd" {
		t.Errorf("got %q, want %q", msgs[0].Address, "/gma3/cmd")
	}
	if len(msgs[0].Args) != 1 || msgs[0].Args[0] != "FaderMaster Page 1.201 At 50" {
		t.Errorf("got %v", msgs[0].Args)
	}
}
