package osc

import (
	"fmt"
	"net"
	"strconv"
	"sync"
)

// Client sends OSC messages as UDP datagrams. Nothing is ever read back.
type Client struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
	mu     sync.Mutex
}

// Dial binds localPort on all interfaces (0 picks an ephemeral port) and
// targets host:port.
func Dial(localPort int, host string, port int) (*Client, error) {
	remote, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("osc: resolve %s:%d: %w", host, port, err)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("osc: bind local port %d: %w", localPort, err)
	}
	return &Client{conn: conn, remote: remote}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Client) RemoteAddr() net.Addr {
	return c.remote
}

// Send writes one datagram. Delivery is not confirmed; the error only
// reports local socket failures.
func (c *Client) Send(addr string, args ...any) error {
	msg := Build(addr, args...)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.WriteToUDP(msg, c.remote)
	return err
}
