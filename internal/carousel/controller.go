// Package carousel drives a full-page slide deck from wheel, keyboard and
// direct navigation input. The controller decides where to scroll; the
// viewport performs the scroll and reports where it came to rest.
package carousel

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrEmptyDeck = errors.New("carousel: deck has no sections")

// Deck is the ordered list of section ids.
type Deck []string

func (d Deck) Len() int { return len(d) }

// Index returns the position of id, or -1.
func (d Deck) Index(id string) int {
	for i, s := range d {
		if s == id {
			return i
		}
	}
	return -1
}

type State int

const (
	Idle State = iota
	Settling
)

func (s State) String() string {
	if s == Settling {
		return "settling"
	}
	return "idle"
}

type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// ParseKey maps DOM key names to keys.
func ParseKey(name string) Key {
	switch name {
	case "ArrowUp", "up", "prev":
		return KeyUp
	case "ArrowDown", "down", "next":
		return KeyDown
	case "ArrowLeft", "left":
		return KeyLeft
	case "ArrowRight", "right":
		return KeyRight
	}
	return KeyNone
}

// Viewport scrolls to a section and later calls OnSettled on the controller.
type Viewport interface {
	ScrollTo(index int)
}

type Config struct {
	ActivationThreshold float64
	StepUnit            float64
	MaxStepsPerGesture  int
	ResetWindow         time.Duration
	Cooldown            time.Duration
}

func DefaultConfig() Config {
	return Config{
		ActivationThreshold: 30,
		StepUnit:            100,
		MaxStepsPerGesture:  3,
		ResetWindow:         300 * time.Millisecond,
		Cooldown:            250 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ActivationThreshold <= 0 {
		c.ActivationThreshold = d.ActivationThreshold
	}
	if c.StepUnit <= 0 {
		c.StepUnit = d.StepUnit
	}
	if c.MaxStepsPerGesture <= 0 {
		c.MaxStepsPerGesture = d.MaxStepsPerGesture
	}
	if c.ResetWindow <= 0 {
		c.ResetWindow = d.ResetWindow
	}
	if c.Cooldown <= 0 {
		c.Cooldown = d.Cooldown
	}
	return c
}

type Controller struct {
	deck Deck
	cfg  Config
	now  func() time.Time

	mu        sync.Mutex
	vp        Viewport
	state     State
	current   int
	acc       float64
	lastWheel time.Time
	issuedAt  time.Time
}

// New returns an idle controller positioned on the first section. Zero
// config fields take their defaults.
func New(deck Deck, cfg Config) (*Controller, error) {
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}
	d := make(Deck, len(deck))
	copy(d, deck)
	return &Controller{deck: d, cfg: cfg.withDefaults(), now: time.Now}, nil
}

// WithClock replaces the time source.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) Deck() Deck { return c.deck }

func (c *Controller) Attach(vp Viewport) {
	c.mu.Lock()
	c.vp = vp
	c.mu.Unlock()
}

// Detach drops the viewport; later input is ignored.
func (c *Controller) Detach() {
	c.mu.Lock()
	c.vp = nil
	c.state = Idle
	c.acc = 0
	c.mu.Unlock()
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire(c.now())
	return c.state
}

func (c *Controller) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(c.deck)-1 {
		return len(c.deck) - 1
	}
	return i
}

// expire ends a settle that outlived the cooldown. Must hold mu.
func (c *Controller) expire(now time.Time) {
	if c.state == Settling && now.Sub(c.issuedAt) >= c.cfg.Cooldown {
		c.state = Idle
	}
}

// issue records a scroll command. Must hold mu; the caller dispatches it
// after unlocking so a viewport may settle synchronously.
func (c *Controller) issue(target int, now time.Time) (Viewport, int, bool) {
	c.state = Settling
	c.issuedAt = now
	return c.vp, target, true
}

func dispatch(vp Viewport, target int, ok bool) bool {
	if ok {
		vp.ScrollTo(target)
	}
	return ok
}

// Wheel feeds one wheel delta (positive scrolls forward) and reports
// whether a scroll command was issued.
func (c *Controller) Wheel(delta float64) bool {
	c.mu.Lock()
	vp, target, ok := c.wheel(delta)
	c.mu.Unlock()
	return dispatch(vp, target, ok)
}

func (c *Controller) wheel(delta float64) (Viewport, int, bool) {
	if c.vp == nil {
		return nil, 0, false
	}
	now := c.now()
	c.expire(now)
	if !c.lastWheel.IsZero() && now.Sub(c.lastWheel) > c.cfg.ResetWindow {
		c.acc = 0
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, 0, false
	}
	c.lastWheel = now
	c.acc += delta

	mag := math.Abs(c.acc)
	if c.state == Settling || mag < c.cfg.ActivationThreshold {
		return nil, 0, false
	}
	steps := int(math.Floor(mag / c.cfg.StepUnit))
	steps = max(1, min(c.cfg.MaxStepsPerGesture, steps))
	dir := 1
	if c.acc < 0 {
		dir = -1
	}
	consumed := math.Min(mag, float64(steps)*c.cfg.StepUnit)
	c.acc -= float64(dir) * consumed

	target := c.clamp(c.current + dir*steps)
	if target == c.current {
		return nil, 0, false
	}
	return c.issue(target, now)
}

// Key moves one section. It is ignored while a scroll is settling.
func (c *Controller) Key(k Key) bool {
	c.mu.Lock()
	vp, target, ok := c.key(k)
	c.mu.Unlock()
	return dispatch(vp, target, ok)
}

func (c *Controller) key(k Key) (Viewport, int, bool) {
	if c.vp == nil {
		return nil, 0, false
	}
	var dir int
	switch k {
	case KeyUp, KeyLeft:
		dir = -1
	case KeyDown, KeyRight:
		dir = 1
	default:
		return nil, 0, false
	}
	now := c.now()
	c.expire(now)
	if c.state == Settling {
		return nil, 0, false
	}
	target := c.clamp(c.current + dir)
	if target == c.current {
		return nil, 0, false
	}
	return c.issue(target, now)
}

// GoTo scrolls to section n, clamped to the deck. It supersedes any
// command in flight and discards accumulated wheel input.
func (c *Controller) GoTo(n int) bool {
	c.mu.Lock()
	var (
		vp     Viewport
		target int
		ok     bool
	)
	if c.vp != nil {
		c.acc = 0
		vp, target, ok = c.issue(c.clamp(n), c.now())
	}
	c.mu.Unlock()
	return dispatch(vp, target, ok)
}

// OnSettled is called by the viewport when scrolling stops, including
// after a swipe or drag the controller did not issue.
func (c *Controller) OnSettled(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.clamp(index)
	c.current = i
	c.state = Idle
}
