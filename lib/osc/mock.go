package osc

import (
	"net"
	"sync"
	"time"
)

// Message is one datagram received by MockConsole.
type Message struct {
	Address string
	Args    []any
}

// MockConsole listens on a loopback UDP port and records every OSC
// message it receives.
type MockConsole struct {
	conn     *net.UDPConn
	mu       sync.Mutex
	messages []Message
	notify   chan struct{}
}

func NewMockConsole() (*MockConsole, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}
	m := &MockConsole{
		conn:   conn,
		notify: make(chan struct{}, 1),
	}
	go m.serve()
	return m, nil
}

func (m *MockConsole) Port() int {
	return m.conn.LocalAddr().(*net.UDPAddr).Port
}

func (m *MockConsole) Close() error {
	return m.conn.Close()
}

func (m *MockConsole) serve() {
	buf := make([]byte, 65536)
	for {
		n, _, err := m.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		addr, args, err := Parse(buf[:n])
		if err != nil {
			continue
		}
		m.mu.Lock()
		m.messages = append(m.messages, Message{Address: addr, Args: args})
		m.mu.Unlock()
		select {
		case m.notify <- struct{}{}:
		default:
		}
	}
}

func (m *MockConsole) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// WaitFor blocks until at least n messages arrived or the timeout passed,
// and returns what was received.
func (m *MockConsole) WaitFor(n int, timeout time.Duration) []Message {
	deadline := time.After(timeout)
	for {
		if msgs := m.Messages(); len(msgs) >= n {
			return msgs
		}
		select {
		case <-m.notify:
		case <-deadline:
			return m.Messages()
		}
	}
}
