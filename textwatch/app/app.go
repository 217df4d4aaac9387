// Package app is the watchface's application context. All state lives on an
// App and is touched only by the goroutine running App.Run; other goroutines
// hand over work with Post.
package app

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/harveysanders/picowatch/textwatch/anim"
	"github.com/harveysanders/picowatch/textwatch/configsync"
	"github.com/harveysanders/picowatch/textwatch/face"
	"github.com/harveysanders/picowatch/textwatch/indicator"
	"github.com/harveysanders/picowatch/textwatch/screen"
	"github.com/harveysanders/picowatch/textwatch/settings"
	"github.com/harveysanders/picowatch/textwatch/words"
	"tinygo.org/x/drivers"
)

const (
	Width  = 144
	Height = 168

	// Two slides per line.
	animationCapacity = 6
	frameInterval     = 33 * time.Millisecond
	eventQueue        = 16
)

// Options configures an App.
type Options struct {
	Display   drivers.Displayer
	Store     settings.Store
	Formatter words.Formatter // nil means words.Turkish
	Battery   indicator.BatteryOptions
	Location  *time.Location // nil means time.Local
	Logger    *slog.Logger
}

// App owns the face, its layers and the persisted settings.
type App struct {
	log      *slog.Logger
	face     *face.Face
	sched    *anim.Scheduler
	screen   *screen.Screen
	battery  *indicator.Battery
	link     *indicator.Link
	inverter *screen.Inverter
	store    settings.Store
	settings settings.Settings
	invert   atomic.Uint32 // mirror of settings.Invert for other goroutines
	loc      *time.Location
	clock    face.Clock
	events   chan Event
	dirty    bool
}

// New builds an App. Nothing is drawn until Start.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	format := opts.Formatter
	if format == nil {
		format = words.Turkish{}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	store := opts.Store
	if store == nil {
		store = &settings.MemStore{}
	}

	a := &App{
		log:      logger,
		sched:    anim.NewScheduler(animationCapacity),
		screen:   screen.New(opts.Display, Width, Height),
		battery:  indicator.NewBattery(opts.Battery),
		link:     indicator.NewLink(Width-12, 4),
		store:    store,
		settings: settings.Default,
		loc:      loc,
		events:   make(chan Event, eventQueue),
	}
	a.face = face.New(format, a.sched, logger)
	a.inverter = screen.NewInverter(a.screen.Bounds())

	a.screen.Add(newLinesLayer(a.face))
	a.screen.Add(a.battery)
	a.screen.Add(a.link)
	return a
}

// Start loads the settings and shows now without animation.
func (a *App) Start(now time.Time) {
	s, err := a.store.Load()
	if err != nil {
		// Defaults stand in; nothing else to do about it.
		a.log.Warn("settings:load", slog.String("err", err.Error()))
	}
	a.settings = s
	a.invert.Store(uint32(s.Invert))
	a.setInvert(s.Inverted())

	a.clock = face.ClockOf(now.In(a.loc))
	a.face.Show(a.clock)
	a.log.Info("face:started",
		slog.Int("hour", a.clock.Hour),
		slog.Int("minute", a.clock.Minute),
		slog.Bool("invert", s.Inverted()),
	)
	a.dirty = true
	a.render()
}

// Post queues ev for the event loop. It blocks while the queue is full.
func (a *App) Post(ev Event) { a.events <- ev }

// ConfigReceived queues a remote configuration update.
func (a *App) ConfigReceived(u configsync.Update) { a.Post(ConfigChanged{Update: u}) }

// LinkChanged queues a companion connection change.
func (a *App) LinkChanged(connected bool) { a.Post(Link{Connected: connected}) }

// PostBattery queues a battery reading.
func (a *App) PostBattery(percent uint8, charging bool) {
	a.Post(BatteryLevel{Percent: percent, Charging: charging})
}

// PostAdjust queues a manual clock adjustment.
func (a *App) PostAdjust(delta int) { a.Post(Adjust{Delta: delta}) }

// Invert returns the stored invert flag. Safe from any goroutine.
func (a *App) Invert() uint8 { return uint8(a.invert.Load()) }

// Clock returns the time on the face.
func (a *App) Clock() face.Clock { return a.clock }

// Face exposes the line controller.
func (a *App) Face() *face.Face { return a.face }

// Screen exposes the layer stack.
func (a *App) Screen() *screen.Screen { return a.screen }

// Animating reports whether any line is sliding.
func (a *App) Animating() bool { return a.sched.Active() > 0 }

// Run processes events and animation frames until stop is closed.
func (a *App) Run(stop <-chan struct{}) {
	var ticker *time.Ticker
	var frames <-chan time.Time
	for {
		if a.Animating() && ticker == nil {
			ticker = time.NewTicker(frameInterval)
			frames = ticker.C
		}
		select {
		case ev := <-a.events:
			a.Handle(ev)
		case now := <-frames:
			a.Frame(now)
		case <-stop:
			if ticker != nil {
				ticker.Stop()
			}
			return
		}
		if !a.Animating() && ticker != nil {
			ticker.Stop()
			ticker = nil
			frames = nil
		}
		a.render()
	}
}

// Handle applies one event.
func (a *App) Handle(ev Event) {
	switch ev := ev.(type) {
	case Tick:
		a.clock = face.ClockOf(ev.Time.In(a.loc))
		a.face.Show(a.clock)
	case Adjust:
		for d := ev.Delta; d > 0; d-- {
			a.clock.Inc()
		}
		for d := ev.Delta; d < 0; d++ {
			a.clock.Dec()
		}
		a.face.Show(a.clock)
	case ConfigChanged:
		a.applyConfig(ev.Update)
	case BatteryLevel:
		if !a.battery.Set(ev.Percent, ev.Charging) {
			return
		}
	case Link:
		if !a.link.Set(ev.Connected) {
			return
		}
		a.log.Info("link:changed", slog.Bool("connected", ev.Connected))
	default:
		a.log.Warn("event:unknown")
		return
	}
	a.dirty = true
}

// Frame advances the slides to now and settles finished lines.
func (a *App) Frame(now time.Time) {
	a.sched.Step(now)
	for {
		select {
		case st := <-a.sched.Stopped():
			a.face.Settle(st.Key)
		default:
			a.dirty = true
			return
		}
	}
}

func (a *App) applyConfig(u configsync.Update) {
	if u.Invert == nil {
		return
	}
	a.settings.Invert = int32(*u.Invert)
	a.invert.Store(uint32(a.settings.Invert))
	a.setInvert(a.settings.Inverted())
	a.log.Info("settings:changed", slog.Bool("invert", a.settings.Inverted()))
	if err := a.store.Save(a.settings); err != nil {
		a.log.Error("settings:save", slog.String("err", err.Error()))
	}
}

// setInvert removes the overlay and puts it back on top when on.
func (a *App) setInvert(on bool) {
	a.screen.Remove(a.inverter)
	if on {
		a.screen.Add(a.inverter)
	}
	a.dirty = true
}

func (a *App) render() {
	if !a.dirty {
		return
	}
	a.dirty = false
	if err := a.screen.Render(); err != nil {
		a.log.Error("screen:render", slog.String("err", err.Error()))
	}
}
