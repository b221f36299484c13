package player

import (
	"fmt"
	"sync"
	"time"
)

const probeTick = 5 * time.Millisecond

// Probe is a wall-clock-driven simulated player. The interactive monitor
// and the scenario runner use it in place of a real embed; faults can be
// scripted per call to exercise failure handling.
type Probe struct {
	mu      sync.Mutex
	cfg     Config
	mountID string

	state State
	base  float64
	since time.Time

	rate     float64
	duration float64
	faults   map[string]error

	ready   bool
	onReady func()
	onState func(State)

	stop chan struct{}
}

// NewProbe creates an unstarted probe. Rate scales media seconds per wall
// second so tests can compress time; duration zero means endless media.
func NewProbe(mountID string, cfg Config, rate, duration float64) *Probe {
	if rate <= 0 {
		rate = 1
	}
	return &Probe{
		cfg:      cfg,
		mountID:  mountID,
		state:    StateUnstarted,
		base:     cfg.Start,
		rate:     rate,
		duration: duration,
		faults:   make(map[string]error),
	}
}

// MountID returns the mount point the probe was instantiated onto.
func (p *Probe) MountID() string {
	return p.mountID
}

// Config returns the instantiation config.
func (p *Probe) Config() Config {
	return p.cfg
}

// State returns the probe's current playback state.
func (p *Probe) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// FailNext makes the named call (mute, play, pause, seek, position)
// return the given error until cleared with a nil err.
func (p *Probe) FailNext(call string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.faults, call)
		return
	}
	p.faults[call] = err
}

// FireReady announces the probe as ready, releasing any subscriber.
func (p *Probe) FireReady() {
	p.mu.Lock()
	p.ready = true
	fn := p.onReady
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (p *Probe) fault(call string) error {
	if err, ok := p.faults[call]; ok {
		return err
	}
	return nil
}

// position is the playhead under lock.
func (p *Probe) position() float64 {
	pos := p.base
	if p.state == StatePlaying {
		pos += time.Since(p.since).Seconds() * p.rate
	}
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}

func (p *Probe) Mute() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault("mute"); err != nil {
		return err
	}
	p.cfg.Muted = true
	return nil
}

func (p *Probe) Play() error {
	p.mu.Lock()
	if err := p.fault("play"); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.state == StatePlaying {
		p.mu.Unlock()
		return nil
	}
	p.base = p.position()
	p.since = time.Now()
	p.state = StatePlaying
	fn := p.onState
	if p.stop == nil && p.duration > 0 {
		p.stop = make(chan struct{})
		go p.watchEnd(p.stop)
	}
	p.mu.Unlock()

	if fn != nil {
		fn(StatePlaying)
	}
	return nil
}

func (p *Probe) Pause() error {
	p.mu.Lock()
	if err := p.fault("pause"); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.state != StatePlaying {
		p.mu.Unlock()
		return nil
	}
	p.base = p.position()
	p.state = StatePaused
	p.stopWatch()
	fn := p.onState
	p.mu.Unlock()

	if fn != nil {
		fn(StatePaused)
	}
	return nil
}

func (p *Probe) Seek(seconds float64, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault("seek"); err != nil {
		return err
	}
	p.base = seconds
	p.since = time.Now()
	return nil
}

func (p *Probe) Position() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fault("position"); err != nil {
		return 0, err
	}
	return p.position(), nil
}

func (p *Probe) OnReady(fn func()) {
	p.mu.Lock()
	ready := p.ready
	if !ready {
		p.onReady = fn
	}
	p.mu.Unlock()

	if ready {
		fn()
	}
}

func (p *Probe) OnStateChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onState = fn
}

func (p *Probe) stopWatch() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// watchEnd notices when the playhead crosses the media duration and
// transitions the probe to ended, like a real embed would.
func (p *Probe) watchEnd(stop chan struct{}) {
	ticker := time.NewTicker(probeTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.state != StatePlaying || p.position() < p.duration {
				p.mu.Unlock()
				continue
			}
			p.base = p.duration
			p.state = StateEnded
			p.stop = nil
			fn := p.onState
			p.mu.Unlock()

			if fn != nil {
				fn(StateEnded)
			}
			return
		}
	}
}

// ProbeFactory instantiates probes and keeps them inspectable.
type ProbeFactory struct {
	// Rate and Duration apply to every created probe.
	Rate     float64
	Duration float64

	// AutoReady fires each probe's ready signal right after creation.
	AutoReady bool

	// FailMounts lists mount points whose instantiation should fail.
	FailMounts map[string]struct{}

	mu      sync.Mutex
	created map[string]*Probe
}

// NewProbeFactory creates a factory with auto-firing readiness.
func NewProbeFactory(rate, duration float64) *ProbeFactory {
	return &ProbeFactory{
		Rate:      rate,
		Duration:  duration,
		AutoReady: true,
		created:   make(map[string]*Probe),
	}
}

// New instantiates a probe onto the mount point.
func (f *ProbeFactory) New(mountID string, cfg Config) (Handle, error) {
	if _, fail := f.FailMounts[mountID]; fail {
		return nil, fmt.Errorf("mount %s rejected", mountID)
	}

	probe := NewProbe(mountID, cfg, f.Rate, f.Duration)
	f.mu.Lock()
	f.created[mountID] = probe
	f.mu.Unlock()

	if f.AutoReady {
		go probe.FireReady()
	}
	return probe, nil
}

// Created returns the probe mounted at the given point, if any.
func (f *ProbeFactory) Created(mountID string) (*Probe, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.created[mountID]
	return p, ok
}
