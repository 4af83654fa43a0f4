// Package useragent holds the user agent policy shared by the api client and
// the html fetcher.
package useragent

import (
	"fmt"
	"sync"

	browser "github.com/EDDYCJY/fake-useragent"
	"golang.org/x/net/http/httpguts"
)

// Default is sent when nothing else is configured.
const Default = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Mode int

const (
	// ModeRandomEveryRequest picks a new user agent on every request.
	ModeRandomEveryRequest Mode = iota
	// ModeFixed sends the same user agent on every request.
	ModeFixed
)

func (m Mode) String() string {
	switch m {
	case ModeRandomEveryRequest:
		return "random"
	case ModeFixed:
		return "fixed"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Generator produces a user agent string.
type Generator func() string

// Random returns a random real-world browser user agent.
func Random() string {
	return browser.Random()
}

// Validate reports whether ua can be sent as a header value.
func Validate(ua string) error {
	if !httpguts.ValidHeaderFieldValue(ua) {
		return fmt.Errorf("invalid user agent header value %q", ua)
	}
	return nil
}

// Provider resolves the user agent of each request. It is safe for
// concurrent use, each call to Next sees a consistent mode.
type Provider struct {
	mu       sync.RWMutex
	mode     Mode
	fixed    string
	generate Generator
}

// NewRandom creates a provider in ModeRandomEveryRequest, a nil generator
// defaults to Random.
func NewRandom(generate Generator) *Provider {
	if generate == nil {
		generate = Random
	}
	return &Provider{mode: ModeRandomEveryRequest, generate: generate}
}

// NewFixed creates a provider in ModeFixed. An empty ua is generated on first
// use and kept from then on.
func NewFixed(ua string, generate Generator) (*Provider, error) {
	if ua != "" {
		if err := Validate(ua); err != nil {
			return nil, err
		}
	}
	if generate == nil {
		generate = Random
	}
	return &Provider{mode: ModeFixed, fixed: ua, generate: generate}, nil
}

// Next returns the user agent to send with the next request.
func (p *Provider) Next() string {
	p.mu.RLock()
	mode, fixed := p.mode, p.fixed
	p.mu.RUnlock()

	switch {
	case mode == ModeRandomEveryRequest:
		return p.generate()
	case fixed != "":
		return fixed
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// another caller may have pinned one in the meantime
	if p.mode == ModeFixed && p.fixed == "" {
		p.fixed = p.generate()
	}
	if p.mode == ModeRandomEveryRequest {
		return p.generate()
	}
	return p.fixed
}

// SetUserAgent switches to ModeFixed with the given user agent.
func (p *Provider) SetUserAgent(ua string) error {
	if err := Validate(ua); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeFixed
	p.fixed = ua
	return nil
}

// SetFromRandom pins a freshly generated user agent and returns it.
func (p *Provider) SetFromRandom() string {
	ua := p.generate()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeFixed
	p.fixed = ua
	return ua
}

func (p *Provider) SetRandomMode() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = ModeRandomEveryRequest
	p.fixed = ""
}

// SetFixedMode pins a generated user agent unless the provider is already
// in ModeFixed.
func (p *Provider) SetFixedMode() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeFixed {
		return
	}
	p.mode = ModeFixed
	p.fixed = p.generate()
}

// Current returns the pinned user agent, ok is false in random mode or when
// the fixed user agent has not been generated yet.
func (p *Provider) Current() (ua string, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mode != ModeFixed || p.fixed == "" {
		return "", false
	}
	return p.fixed, true
}

func (p *Provider) Mode() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}
