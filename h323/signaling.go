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
	media "github.com/livekit/h323-media-sdk"
	"github.com/livekit/h323-media-sdk/bearer"
)

// Stack is the signalling stack a connection is attached to.
type Stack interface {
	// MediaFormats returns all formats the stack can use for the connection.
	MediaFormats() media.FormatList
	// LocalMediaFormats returns formats the stack offers to the remote party.
	LocalMediaFormats() media.FormatList
	// SwitchFaxStreams starts switching media streams between audio and fax.
	// It returns false if the switch could not be started. Completion is
	// reported via Connection.OnSwitchedFaxStreams.
	SwitchFaxStreams(enableFax bool) bool
}

// Wildcard remote party number used by routes that do not know the caller.
const anyPartyNumber = "*"

// SetUpConnection is called before an outgoing leg sends Setup. A leg that is
// not the first one in the call presents the first leg's remote number as its
// own identity, so the original caller number passes through.
func (c *Connection) SetUpConnection() {
	first := c.call.Connection(0)
	if first == nil || first == c {
		return
	}
	num := first.RemotePartyNumber()
	if num == "" || num == anyPartyNumber {
		return
	}
	c.SetLocalPartyName(num)
	c.log.Infow("local party name set from the first leg", "name", num)
}

// OnSendSignalSetup adds the bearer capability to an outgoing Setup.
func (c *Connection) OnSendSignalSetup(setup bearer.BearerCapabilitySetter) {
	bc, ok := c.BearerCapability()
	if !ok {
		return
	}
	c.log.Debugw("setting bearer capability", "message", "setup", "bearerCapability", bc.String())
	bc.Apply(setup)
}

// OnAnswerCall adds the bearer capability to Connect and Progress sent for an incoming call.
func (c *Connection) OnAnswerCall(caller string, connect, progress bearer.BearerCapabilitySetter) {
	bc, ok := c.BearerCapability()
	if !ok {
		return
	}
	c.log.Debugw("setting bearer capability", "message", "connect", "caller", caller, "bearerCapability", bc.String())
	if connect != nil {
		bc.Apply(connect)
	}
	if progress != nil {
		bc.Apply(progress)
	}
}
