package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sjzar/advshortcut/internal/errors"
)

// ActionKind is the wire tag of an Action variant.
type ActionKind string

const (
	KindLaunch     ActionKind = "launch"
	KindKill       ActionKind = "kill"
	KindOpenFolder ActionKind = "open_folder"
	KindOpenURL    ActionKind = "open_url"
	KindDelay      ActionKind = "delay"
)

// ActionKinds lists every variant in display order.
var ActionKinds = []ActionKind{KindLaunch, KindKill, KindOpenFolder, KindOpenURL, KindDelay}

// ParseActionKind accepts a wire tag.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(strings.TrimSpace(s))
	for _, known := range ActionKinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.UnsupportedAction(s)
}

// Action is one step of a shortcut. The set of implementations is closed:
// Launch, Kill, OpenFolder, OpenURL and Delay.
type Action interface {
	Kind() ActionKind
	// Validate reports missing required fields.
	Validate() error
	action()
}

// WindowConfig is a partial rectangle; nil fields are left unchanged.
type WindowConfig struct {
	X      *int32 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      *int32 `json:"y,omitempty" yaml:"y,omitempty"`
	Width  *int32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height *int32 `json:"height,omitempty" yaml:"height,omitempty"`
}

// IsEmpty reports whether no field is set.
func (w *WindowConfig) IsEmpty() bool {
	return w == nil || (w.X == nil && w.Y == nil && w.Width == nil && w.Height == nil)
}

type Launch struct {
	Path         string        `json:"path"`
	Args         []string      `json:"args,omitempty"`
	WindowConfig *WindowConfig `json:"windowConfig,omitempty"`
}

type Kill struct {
	ProcessName string `json:"processName"`
}

type OpenFolder struct {
	Path         string        `json:"path"`
	WindowConfig *WindowConfig `json:"windowConfig,omitempty"`
}

type OpenURL struct {
	URL          string        `json:"url"`
	WindowConfig *WindowConfig `json:"windowConfig,omitempty"`
}

type Delay struct {
	Ms uint64 `json:"ms"`
}

func (Launch) Kind() ActionKind     { return KindLaunch }
func (Kill) Kind() ActionKind       { return KindKill }
func (OpenFolder) Kind() ActionKind { return KindOpenFolder }
func (OpenURL) Kind() ActionKind    { return KindOpenURL }
func (Delay) Kind() ActionKind      { return KindDelay }

func (Launch) action()     {}
func (Kill) action()       {}
func (OpenFolder) action() {}
func (OpenURL) action()    {}
func (Delay) action()      {}

func (a Launch) Validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return errors.RequiredParam("launch.path")
	}
	return nil
}

func (a Kill) Validate() error {
	if strings.TrimSpace(a.ProcessName) == "" {
		return errors.RequiredParam("kill.processName")
	}
	return nil
}

func (a OpenFolder) Validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return errors.RequiredParam("open_folder.path")
	}
	return nil
}

func (a OpenURL) Validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return errors.RequiredParam("open_url.url")
	}
	return nil
}

func (Delay) Validate() error { return nil }

// maxDelayMs is the largest wait a time.Duration can hold.
const maxDelayMs = uint64(math.MaxInt64 / int64(time.Millisecond))

// Duration returns the wait, clamped to the longest representable duration.
func (d Delay) Duration() time.Duration {
	if d.Ms > maxDelayMs {
		return time.Duration(maxDelayMs) * time.Millisecond
	}
	return time.Duration(d.Ms) * time.Millisecond
}

// NewAction returns the default value of a new action of the given kind.
func NewAction(kind ActionKind) (Action, error) {
	switch kind {
	case KindLaunch:
		return Launch{}, nil
	case KindKill:
		return Kill{}, nil
	case KindOpenFolder:
		return OpenFolder{}, nil
	case KindOpenURL:
		return OpenURL{}, nil
	case KindDelay:
		return Delay{Ms: 1000}, nil
	default:
		return nil, errors.UnsupportedAction(string(kind))
	}
}

// Describe returns a one-line summary used by list views and logs.
func Describe(a Action) string {
	switch v := a.(type) {
	case Launch:
		if len(v.Args) > 0 {
			return fmt.Sprintf("launch %s %s", v.Path, strings.Join(v.Args, " "))
		}
		return "launch " + v.Path
	case Kill:
		return "kill " + v.ProcessName
	case OpenFolder:
		return "open folder " + v.Path
	case OpenURL:
		return "open url " + v.URL
	case Delay:
		return fmt.Sprintf("wait %dms", v.Ms)
	default:
		return fmt.Sprintf("unknown action %T", a)
	}
}

// WindowConfigOf returns the placement of actions that open a window.
func WindowConfigOf(a Action) *WindowConfig {
	switch v := a.(type) {
	case Launch:
		return v.WindowConfig
	case OpenFolder:
		return v.WindowConfig
	case OpenURL:
		return v.WindowConfig
	case Kill, Delay:
		return nil
	default:
		return nil
	}
}

type actionEnvelope struct {
	Type ActionKind `json:"type"`
}

// EncodeAction renders a as a JSON object tagged with "type".
func EncodeAction(a Action) ([]byte, error) {
	var payload any
	switch v := a.(type) {
	case Launch:
		payload = struct {
			Type ActionKind `json:"type"`
			Launch
		}{KindLaunch, v}
	case Kill:
		payload = struct {
			Type ActionKind `json:"type"`
			Kill
		}{KindKill, v}
	case OpenFolder:
		payload = struct {
			Type ActionKind `json:"type"`
			OpenFolder
		}{KindOpenFolder, v}
	case OpenURL:
		payload = struct {
			Type ActionKind `json:"type"`
			OpenURL
		}{KindOpenURL, v}
	case Delay:
		payload = struct {
			Type ActionKind `json:"type"`
			Delay
		}{KindDelay, v}
	default:
		return nil, errors.UnsupportedAction(fmt.Sprintf("%T", a))
	}
	return json.Marshal(payload)
}

// DecodeAction parses a "type"-tagged JSON object.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.InvalidParam("action", err.Error())
	}

	var (
		a   Action
		err error
	)
	switch env.Type {
	case KindLaunch:
		var v Launch
		err = json.Unmarshal(data, &v)
		a = v
	case KindKill:
		var v Kill
		err = json.Unmarshal(data, &v)
		a = v
	case KindOpenFolder:
		var v OpenFolder
		err = json.Unmarshal(data, &v)
		a = v
	case KindOpenURL:
		var v OpenURL
		err = json.Unmarshal(data, &v)
		a = v
	case KindDelay:
		var v Delay
		err = json.Unmarshal(data, &v)
		a = v
	case "":
		return nil, errors.RequiredParam("action.type")
	default:
		return nil, errors.UnsupportedAction(string(env.Type))
	}
	if err != nil {
		return nil, errors.InvalidParam(string(env.Type), err.Error())
	}
	return a, nil
}

// Actions is an ordered action list with tagged JSON encoding.
type Actions []Action

func (as Actions) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(as))
	for _, a := range as {
		b, err := EncodeAction(a)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return json.Marshal(raw)
}

func (as *Actions) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Actions, 0, len(raw))
	for _, r := range raw {
		a, err := DecodeAction(r)
		if err != nil {
			return err
		}
		out = append(out, a)
	}
	*as = out
	return nil
}

// Clone returns a copy whose slices and window configs are not shared.
func (as Actions) Clone() Actions {
	if as == nil {
		return nil
	}
	out := make(Actions, len(as))
	for i, a := range as {
		out[i] = CloneAction(a)
	}
	return out
}

// CloneAction deep-copies a single action.
func CloneAction(a Action) Action {
	switch v := a.(type) {
	case Launch:
		if v.Args != nil {
			v.Args = append([]string(nil), v.Args...)
		}
		v.WindowConfig = v.WindowConfig.clone()
		return v
	case OpenFolder:
		v.WindowConfig = v.WindowConfig.clone()
		return v
	case OpenURL:
		v.WindowConfig = v.WindowConfig.clone()
		return v
	case Kill, Delay:
		return v
	default:
		return a
	}
}

func (w *WindowConfig) clone() *WindowConfig {
	if w == nil {
		return nil
	}
	c := &WindowConfig{}
	if w.X != nil {
		x := *w.X
		c.X = &x
	}
	if w.Y != nil {
		y := *w.Y
		c.Y = &y
	}
	if w.Width != nil {
		width := *w.Width
		c.Width = &width
	}
	if w.Height != nil {
		height := *w.Height
		c.Height = &height
	}
	return c
}
