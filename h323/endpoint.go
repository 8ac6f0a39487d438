// Copyright 2024 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package h323

import (
	"github.com/google/uuid"
	"github.com/livekit/protocol/logger"

	media "github.com/livekit/h323-media-sdk"
	"github.com/livekit/h323-media-sdk/bearer"
)

// EndpointConfig holds the H.323 endpoint options.
type EndpointConfig struct {
	// AudioFormats are audio format selectors in preference order.
	// See BuildAllowList for the syntax.
	AudioFormats     []string `yaml:"audio,omitempty"`
	FastStart        bool     `yaml:"fast_start,omitempty"`
	DisableTunneling bool     `yaml:"disable_tunneling,omitempty"`
	// BearerCapability is the default bearer capability in S:C:R:P form.
	BearerCapability string `yaml:"bearer_capability,omitempty"`
}

type EndpointOption func(e *Endpoint)

// WithRegistry replaces the set of known formats. Defaults to media.RegisteredFormats.
func WithRegistry(formats media.FormatList) EndpointOption {
	return func(e *Endpoint) {
		e.registry = formats
	}
}

func WithMetrics(m *Metrics) EndpointOption {
	return func(e *Endpoint) {
		e.metrics = m
	}
}

// Endpoint keeps the configuration shared by all connections it creates.
// It is read-only after NewEndpoint returns.
type Endpoint struct {
	log      logger.Logger
	conf     EndpointConfig
	registry media.FormatList
	metrics  *Metrics

	formats media.FormatList
	bearer  *bearer.Capability
}

func NewEndpoint(log logger.Logger, conf EndpointConfig, opts ...EndpointOption) *Endpoint {
	if log == nil {
		log = logger.GetLogger()
	}
	e := &Endpoint{
		log:  log,
		conf: conf,
	}
	for _, o := range opts {
		o(e)
	}
	if e.registry == nil {
		e.registry = media.RegisteredFormats()
	}
	e.formats = BuildAllowList(log, conf.AudioFormats, e.registry)
	if conf.BearerCapability != "" {
		bc, err := bearer.Parse(conf.BearerCapability)
		if err != nil {
			log.Warnw("ignoring invalid bearer capability", err, "value", conf.BearerCapability)
			e.metrics.invalidBearer("endpoint")
		} else {
			e.bearer = &bc
		}
	}
	return e
}

// AllowList returns a copy of the endpoint allow list.
func (e *Endpoint) AllowList() media.FormatList {
	return e.formats.Clone()
}

// AudioFormats lists audio formats that can be enabled on this endpoint.
func (e *Endpoint) AudioFormats() media.FormatList {
	return AudioFormats(e.registry)
}

// BearerCapability returns the endpoint default bearer capability, if configured.
func (e *Endpoint) BearerCapability() (bearer.Capability, bool) {
	if e.bearer == nil {
		return bearer.Capability{}, false
	}
	return *e.bearer, true
}

func (e *Endpoint) FastStart() bool {
	return e.conf.FastStart
}

func (e *Endpoint) H245Tunneling() bool {
	return !e.conf.DisableTunneling
}

// ConnectionParams describes a new call leg.
type ConnectionParams struct {
	// ID is the connection token. A random one is generated when empty.
	ID    string
	Stack Stack
	// Options are call specific string options, see OptionDisableT38 and OptionBearerCapability.
	Options StringOptions

	LocalPartyName    string
	RemotePartyNumber string

	// OnFaxSwitched is called in order, from a goroutine owned by the connection,
	// when a media switch completes. It may request another switch.
	OnFaxSwitched func(c *Connection, res SwitchResult)
}

// NewConnection creates a call leg. The connection gets a private copy of the
// endpoint allow list and inherits the endpoint bearer capability.
func (e *Endpoint) NewConnection(call *Call, p ConnectionParams) *Connection {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	c := &Connection{
		log:               e.log.WithValues("connectionID", p.ID, "callID", call.ID()),
		id:                p.ID,
		call:              call,
		stack:             p.Stack,
		metrics:           e.metrics,
		allow:             e.formats.Clone(),
		bearer:            e.bearer,
		opts:              make(StringOptions),
		localPartyName:    p.LocalPartyName,
		remotePartyNumber: p.RemotePartyNumber,
	}
	var onResult func(SwitchResult)
	if p.OnFaxSwitched != nil {
		onResult = func(res SwitchResult) {
			p.OnFaxSwitched(c, res)
		}
	}
	c.fax = newFaxSwitch(c.log, c, p.Stack, e.metrics, onResult)
	call.add(c)
	e.metrics.connectionOpened()
	c.log.Debugw("connection created", "formats", c.allow.Names())
	if len(p.Options) != 0 {
		c.ApplyStringOptions(p.Options)
	}
	return c
}
