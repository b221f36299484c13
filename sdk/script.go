package sdk

import (
	"sync"

	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/log"
	"github.com/deferview/deferview/network"
	"github.com/spf13/viper"
)

// Host models the embedding environment's single runtime-ready slot.
// Runtimes of this kind announce themselves through one well-known global
// hook, so anything already parked there must keep working after we attach.
type Host struct {
	mu      sync.Mutex
	present bool
	onReady func()
}

// NewHost creates an empty host environment.
func NewHost() *Host {
	return &Host{}
}

// RuntimePresent reports whether the runtime has announced itself.
func (h *Host) RuntimePresent() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present
}

// SetReadyHook parks a hook in the ready slot, replacing whatever is there.
// This is how pre-existing page code occupies the slot before we arrive.
func (h *Host) SetReadyHook(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReady = fn
}

// chainReadyHook attaches fn behind any hook already in the slot.
func (h *Host) chainReadyHook(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prior := h.onReady
	if prior == nil {
		h.onReady = fn
		return
	}
	h.onReady = func() {
		prior()
		fn()
	}
}

// RuntimeArrived marks the runtime present and fires the ready slot.
func (h *Host) RuntimeArrived() {
	h.mu.Lock()
	h.present = true
	fn := h.onReady
	h.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// ScriptInjector loads the player runtime script into a host environment.
type ScriptInjector struct {
	host *Host
	// fetch is swappable for simulations; defaults to the shared client.
	fetch func(url string) error
}

// NewScriptInjector creates an injector for the given host.
func NewScriptInjector(host *Host) *ScriptInjector {
	return &ScriptInjector{
		host: host,
		fetch: func(url string) error {
			_, err := network.Fetch(url)
			return err
		},
	}
}

// Available reports whether the runtime is already present in the host.
func (s *ScriptInjector) Available() bool {
	return s.host.RuntimePresent()
}

// Inject chains onReady into the host's ready slot and starts fetching the
// runtime script. The fetch runs in the background; a failed fetch means
// the ready slot simply never fires.
func (s *ScriptInjector) Inject(onReady func()) error {
	s.host.chainReadyHook(onReady)

	url := viper.GetString(key.PlayerSdkURL)
	go func() {
		if err := s.fetch(url); err != nil {
			log.Debugf("sdk: runtime script fetch failed: %s", err)
			return
		}
		s.host.RuntimeArrived()
	}()
	return nil
}
