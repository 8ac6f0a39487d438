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
	"context"
	"maps"
	"sync"

	"github.com/frostbyte73/core"
	"github.com/livekit/protocol/logger"

	media "github.com/livekit/h323-media-sdk"
	"github.com/livekit/h323-media-sdk/bearer"
)

// Connection is one H.323 call leg. It restricts the formats the stack may
// negotiate to its allow list and drives fax/audio switching.
type Connection struct {
	log     logger.Logger
	id      string
	call    *Call
	stack   Stack
	metrics *Metrics
	fax     *faxSwitch
	closed  core.Fuse

	mu sync.RWMutex
	// allow is replaced, never modified in place, so a snapshot taken under
	// the read lock stays valid after the lock is released.
	allow             media.FormatList
	bearer            *bearer.Capability
	opts              StringOptions
	localPartyName    string
	remotePartyNumber string
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Call() *Call {
	return c.call
}

// AllowList returns a copy of the current connection allow list.
func (c *Connection) AllowList() media.FormatList {
	return c.allowList().Clone()
}

func (c *Connection) allowList() media.FormatList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allow
}

func (c *Connection) disableFormat(f *media.Format) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.allow.Contains(f) {
		return false
	}
	c.allow = c.allow.Remove(f)
	return true
}

// BearerCapability returns the bearer capability used for outgoing messages, if any.
func (c *Connection) BearerCapability() (bearer.Capability, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bearer == nil {
		return bearer.Capability{}, false
	}
	return *c.bearer, true
}

// StringOptions returns a copy of the options applied to the connection.
func (c *Connection) StringOptions() StringOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.opts)
}

// ApplyStringOptions applies call specific options. An invalid bearer
// capability is logged and the previous value is kept.
func (c *Connection) ApplyStringOptions(opts StringOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.opts, opts)

	if c.opts.Has(OptionDisableT38) && c.allow.Contains(media.T38) {
		c.log.Infow("T.38 disabled by string option", "option", OptionDisableT38)
		c.allow = c.allow.Remove(media.T38)
	}

	if val, ok := opts.Get(OptionBearerCapability); ok {
		bc, err := bearer.Parse(val)
		if err != nil {
			c.log.Warnw("ignoring invalid bearer capability", err, "value", val)
			c.metrics.invalidBearer("connection")
			return
		}
		c.log.Debugw("bearer capability set by string option", "bearerCapability", bc.String())
		c.bearer = &bc
	}
}

func (c *Connection) LocalPartyName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.localPartyName
}

func (c *Connection) SetLocalPartyName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localPartyName = name
}

func (c *Connection) RemotePartyNumber() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remotePartyNumber
}

func (c *Connection) SetRemotePartyNumber(num string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remotePartyNumber = num
}

// MediaFormats returns the stack formats that are on the allow list.
func (c *Connection) MediaFormats() media.FormatList {
	return c.filter("all", c.stack.MediaFormats())
}

// LocalMediaFormats returns the locally offered stack formats that are on the allow list.
func (c *Connection) LocalMediaFormats() media.FormatList {
	return c.filter("local", c.stack.LocalMediaFormats())
}

func (c *Connection) filter(set string, formats media.FormatList) media.FormatList {
	out := media.Filter(formats, c.allowList())
	if n := len(formats) - len(out); n > 0 {
		c.metrics.filtered(set, n)
		c.log.Debugw("removed formats not on the allow list", "set", set, "formats", formats.Names(), "kept", out.Names())
	}
	return out
}

// AdjustMediaFormats orders local formats by the allow list preference.
// Remote formats are returned unchanged.
func (c *Connection) AdjustMediaFormats(local bool, formats media.FormatList) media.FormatList {
	if !local {
		return formats
	}
	return media.Reorder(formats, c.allowList())
}

// SwitchFaxStreams asks the stack to switch media to fax or back to audio.
// It returns when the switch was started or rejected. The outcome is reported
// to ConnectionParams.OnFaxSwitched.
func (c *Connection) SwitchFaxStreams(ctx context.Context, enableFax bool) error {
	return c.fax.request(ctx, enableFax)
}

// OnSwitchedFaxStreams is called by the stack when a media switch completes.
func (c *Connection) OnSwitchedFaxStreams(enabledFax bool) {
	c.fax.completed(enabledFax)
}

// FaxState returns the switch state and the last confirmed media mode.
func (c *Connection) FaxState() (SwitchState, Mode) {
	return c.fax.state()
}

// Close releases the connection. In-flight switches are dropped.
func (c *Connection) Close() {
	c.closed.Once(func() {
		c.fax.close()
		c.call.remove(c)
		c.metrics.connectionClosed()
		c.log.Debugw("connection closed")
	})
}
