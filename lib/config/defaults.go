package config

const (
	defaultConsoleIP      = "127.0.0.1"
	defaultConsolePort    = 8000
	defaultLocalPort      = 9001
	defaultPrefix         = "/gma3"
	defaultObjectClass    = "FaderMaster"
	defaultPage           = 1
	defaultPageOffset     = 200
	defaultChannels       = 4
	defaultScenes         = 9
	defaultAPIBind        = ":3001"
	defaultAllowOrigin    = "*"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultXTouchPort     = "x-touch"
	defaultSurfaceXFadeMs = 1000
	defaultDeckBrightness = 80
)

// DefaultSendLocalPort is the local port the one-shot sender binds.
const DefaultSendLocalPort = 9002

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Console: Console{
			IP:          defaultConsoleIP,
			Port:        defaultConsolePort,
			LocalPort:   defaultLocalPort,
			Prefix:      defaultPrefix,
			ObjectClass: defaultObjectClass,
			Page:        defaultPage,
			PageOffset:  defaultPageOffset,
		},
		Show: Show{
			Channels: defaultChannels,
			Scenes:   defaultScenes,
		},
		API: API{
			Bind:        defaultAPIBind,
			AllowOrigin: defaultAllowOrigin,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Surfaces: Surfaces{
			XTouch: XTouch{
				Port:    defaultXTouchPort,
				XFadeMs: defaultSurfaceXFadeMs,
			},
			StreamDeck: StreamDeck{
				Brightness: defaultDeckBrightness,
				XFadeMs:    defaultSurfaceXFadeMs,
			},
		},
	}
}
