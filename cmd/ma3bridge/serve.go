package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"ma3bridge/lib/api"
	"ma3bridge/lib/config"
	"ma3bridge/lib/fade"
	"ma3bridge/lib/logging"
	"ma3bridge/lib/ma3"
	"ma3bridge/lib/osc"
	"ma3bridge/lib/streamdeck"
	"ma3bridge/lib/xtouch"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var useXTouch, useStreamDeck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP control API and drive the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.API.Bind = bind
			}
			if cmd.Flags().Changed("xtouch") {
				cfg.Surfaces.XTouch.Enabled = useXTouch
			}
			if cmd.Flags().Changed("streamdeck") {
				cfg.Surfaces.StreamDeck.Enabled = useStreamDeck
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if ctx.usedPath != "" {
				logger.Info("config loaded", slog.String("path", ctx.usedPath))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "HTTP listen address (overrides api.bind)")
	cmd.Flags().BoolVar(&useXTouch, "xtouch", false, "Attach an X-Touch fader surface")
	cmd.Flags().BoolVar(&useStreamDeck, "streamdeck", false, "Attach a Stream Deck scene pad")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := osc.Dial(cfg.Console.LocalPort, cfg.Console.IP, cfg.Console.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	sender := ma3.NewSender(client, cfg.Console.Prefix, logging.Component(logger, "osc"))
	logger.Info("osc ready",
		slog.String("remote", client.RemoteAddr().String()),
		slog.String("local", client.LocalAddr().String()),
		slog.String("address", sender.Address()))

	enc := ma3.Encoder{
		ObjectClass: cfg.Console.ObjectClass,
		Page:        cfg.Console.Page,
		PageOffset:  cfg.Console.PageOffset,
	}
	engine := fade.New(fade.NewStore(cfg.Show.Channels), enc, sender, fade.Options{
		Scenes: cfg.Show.Scenes,
		Logger: logging.Component(logger, "fade"),
	})

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Surfaces.XTouch.Enabled {
		if err := attachXTouch(ctx, &wg, cfg.Surfaces.XTouch, engine, logging.Component(logger, "xtouch")); err != nil {
			return err
		}
	}
	if cfg.Surfaces.StreamDeck.Enabled {
		if err := attachStreamDeck(ctx, &wg, cfg.Surfaces.StreamDeck, engine, logging.Component(logger, "streamdeck")); err != nil {
			return err
		}
	}

	ln, err := net.Listen("tcp", cfg.API.Bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	srv := api.NewServer(engine, api.Connection{
		IP:        cfg.Console.IP,
		Port:      cfg.Console.Port,
		LocalPort: cfg.Console.LocalPort,
		Prefix:    cfg.Console.Prefix,
	}, cfg.API.AllowOrigin, logging.Component(logger, "api"))
	return srv.Serve(ctx, ln)
}

// closeMIDIDriver releases every port the MIDI driver opened.
var closeMIDIDriver = midi.CloseDriver

func attachXTouch(ctx context.Context, wg *sync.WaitGroup, cfg config.XTouch, engine *fade.Engine, logger *slog.Logger) (err error) {
	defer func() {
		if err != nil {
			closeMIDIDriver()
		}
	}()

	inPort, err := xtouch.FindInPort(cfg.Port)
	if err != nil {
		return err
	}
	outPort, err := xtouch.FindOutPort(cfg.Port)
	if err != nil {
		return err
	}
	out, err := xtouch.NewOutput(outPort, xtouch.DeviceIDXTouch)
	if err != nil {
		return err
	}

	surface := xtouch.NewSurface(engine, out, cfg.XFadeMs, logger)
	stopListen, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		if ev := xtouch.Decode(msg); ev != nil {
			logger.Debug("surface event", slog.String("event", ev.String()))
			surface.HandleEvent(ev)
		}
	})
	if err != nil {
		return fmt.Errorf("listen on %s: %w", inPort, err)
	}
	logger.Info("x-touch attached", slog.String("port", inPort.String()))

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer closeMIDIDriver()
		defer stopListen()
		surface.Run(ctx)
	}()
	return nil
}

func attachStreamDeck(ctx context.Context, wg *sync.WaitGroup, cfg config.StreamDeck, engine *fade.Engine, logger *slog.Logger) error {
	dev, err := streamdeck.Open()
	if err != nil {
		return err
	}
	if err := dev.SetBrightness(byte(cfg.Brightness)); err != nil {
		logger.Warn("set brightness failed", slog.String("error", err.Error()))
	}
	logger.Info("stream deck attached",
		slog.String("product", dev.Product()),
		slog.String("serial", dev.SerialNumber()))

	pad := streamdeck.NewScenePad(dev, engine, cfg.XFadeMs, logger)
	keys := make(chan streamdeck.KeyEvent, 64)
	go func() {
		if err := dev.ReadKeys(ctx, keys); err != nil && ctx.Err() == nil {
			logger.Warn("stream deck read failed", slog.String("error", err.Error()))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer dev.Close()
		pad.Run(ctx, keys)
	}()
	return nil
}
