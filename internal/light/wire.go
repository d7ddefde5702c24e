package light

// statusDocument is the JSON body of /elgato/lights.
type statusDocument struct {
	NumberOfLights int         `json:"numberOfLights"`
	Lights         []wireLight `json:"lights"`
}

type wireLight struct {
	On          int `json:"on"`
	Brightness  int `json:"brightness"`
	Temperature int `json:"temperature"`
}

func (w wireLight) state() State {
	return State{
		On:         w.On != 0,
		Brightness: w.Brightness,
		Mireds:     w.Temperature,
	}
}

func documentFor(s State) statusDocument {
	on := 0
	if s.On {
		on = 1
	}
	return statusDocument{
		NumberOfLights: 1,
		Lights: []wireLight{{
			On:          on,
			Brightness:  s.Brightness,
			Temperature: s.Mireds,
		}},
	}
}
