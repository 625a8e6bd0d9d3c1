package api

// SceneRequest is the body of POST /api/scene/{id}. A missing XFade means
// an immediate change.
type SceneRequest struct {
	XFade *int `json:"xfade"`
}

type SceneResponse struct {
	OK    bool `json:"ok"`
	Scene int  `json:"scene"`
	XFade int  `json:"xfade"`
}

type FaderRequest struct {
	Value *int `json:"value"`
}

type FaderResponse struct {
	OK    bool `json:"ok"`
	Fader int  `json:"fader"`
	Value int  `json:"value"`
}

// ConfigResponse keeps the key names the web panel already reads.
type ConfigResponse struct {
	IP            string `json:"MA3_IP"`
	Port          int    `json:"MA3_PORT"`
	LocalPort     int    `json:"LOCAL_PORT"`
	Prefix        string `json:"MA3_PREFIX"`
	CurrentValues []int  `json:"currentValues"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
