// Package ma3 turns channel values into grandMA3 command-line strings and
// ships them to the console over OSC.
package ma3

import (
	"fmt"
	"log/slog"
	"strings"

	"ma3bridge/lib/logging"
	"ma3bridge/lib/osc"
)

const (
	DefaultObjectClass = "FaderMaster"
	DefaultPage        = 1
	DefaultPageOffset  = 200
	DefaultPrefix      = "/gma3"
)

// Encoder renders `<ObjectClass> Page <Page>.<PageOffset+channel> At <value>`.
// It does no range checking.
type Encoder struct {
	ObjectClass string
	Page        int
	PageOffset  int
}

func DefaultEncoder() Encoder {
	return Encoder{
		ObjectClass: DefaultObjectClass,
		Page:        DefaultPage,
		PageOffset:  DefaultPageOffset,
	}
}

func (e Encoder) Encode(channel, value int) string {
	return fmt.Sprintf("%s Page %d.%d At %d", e.ObjectClass, e.Page, e.PageOffset+channel, value)
}

// CommandAddress is the OSC address the console's command-line endpoint
// listens on for the given prefix.
func CommandAddress(prefix string) string {
	return strings.TrimRight(prefix, "/") + "/cmd"
}

// Transport is the part of osc.Client the sender needs.
type Transport interface {
	Send(addr string, args ...any) error
}

// Sender delivers command strings fire-and-forget. Socket errors are
// logged and dropped.
type Sender struct {
	transport Transport
	address   string
	logger    *slog.Logger
}

func NewSender(t Transport, prefix string, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sender{
		transport: t,
		address:   CommandAddress(prefix),
		logger:    logger,
	}
}

func (s *Sender) Address() string {
	return s.address
}

func (s *Sender) Send(cmd string) {
	s.logger.Debug("sending command", slog.String("address", s.address), slog.String("command", cmd))
	if err := s.transport.Send(s.address, cmd); err != nil {
		s.logger.Warn("command send failed",
			slog.String("address", s.address),
			slog.String("command", cmd),
			slog.String("error", err.Error()))
	}
}

var _ Transport = (*osc.Client)(nil)
