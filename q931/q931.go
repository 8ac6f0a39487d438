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

// Package q931 holds the subset of Q.931 message handling needed to carry a
// bearer capability in H.225 call signalling.
package q931

import (
	"errors"
	"fmt"
	"slices"

	"github.com/livekit/h323-media-sdk/bearer"
)

const protocolDiscriminator = 0x08

var ErrNoBearerCapability = errors.New("no bearer capability")

type MessageType byte

const (
	MsgAlerting        MessageType = 0x01
	MsgCallProceeding  MessageType = 0x02
	MsgProgress        MessageType = 0x03
	MsgSetup           MessageType = 0x05
	MsgConnect         MessageType = 0x07
	MsgReleaseComplete MessageType = 0x5a
)

func (t MessageType) String() string {
	switch t {
	case MsgAlerting:
		return "Alerting"
	case MsgCallProceeding:
		return "CallProceeding"
	case MsgProgress:
		return "Progress"
	case MsgSetup:
		return "Setup"
	case MsgConnect:
		return "Connect"
	case MsgReleaseComplete:
		return "ReleaseComplete"
	default:
		return fmt.Sprintf("MessageType(0x%02x)", byte(t))
	}
}

type IE byte

const (
	IEBearerCapability  IE = 0x04
	IECause             IE = 0x08
	IEProgressIndicator IE = 0x1e
	IEDisplay           IE = 0x28
	IECallingParty      IE = 0x6c
	IECalledParty       IE = 0x70
	IEUserUser          IE = 0x7e
)

// Transfer capability values from Q.931 table 4-6.
const (
	TransferSpeech              = 0
	TransferUnrestrictedDigital = 8
	TransferRestrictedDigital   = 9
	Transfer3k1Audio            = 16
	Transfer7kAudio             = 17
	TransferVideo               = 24
)

// Message is an outgoing or received Q.931 message.
type Message struct {
	Type            MessageType
	CallRef         uint16
	FromDestination bool

	ies map[IE][]byte
}

var _ bearer.BearerCapabilitySetter = (*Message)(nil)

func NewMessage(typ MessageType, callRef uint16) *Message {
	return &Message{Type: typ, CallRef: callRef}
}

func (m *Message) SetIE(ie IE, data []byte) {
	if m.ies == nil {
		m.ies = make(map[IE][]byte)
	}
	m.ies[ie] = slices.Clone(data)
}

func (m *Message) IE(ie IE) ([]byte, bool) {
	data, ok := m.ies[ie]
	return data, ok
}

func (m *Message) HasIE(ie IE) bool {
	_, ok := m.ies[ie]
	return ok
}

func (m *Message) RemoveIE(ie IE) {
	delete(m.ies, ie)
}

var rateCodes = map[int]byte{
	1:  0x90, // 64 kbit/s
	2:  0x91, // 2x64 kbit/s
	6:  0x93, // 384 kbit/s
	24: 0x95, // 1536 kbit/s
	30: 0x97, // 1920 kbit/s
}

const multirate = 0x18

// SetBearerCapabilities encodes the bearer capability IE. Transfer rate is a multiple of 64 kbit/s.
func (m *Message) SetBearerCapabilities(capability, transferRate, codingStandard, userInfoLayer1 int) {
	data := []byte{0x80 | byte(codingStandard&3)<<5 | byte(capability&31)}
	switch codingStandard {
	case 0:
		// ITU-T coding, always circuit mode
		if code, ok := rateCodes[transferRate]; ok {
			data = append(data, code)
		} else {
			data = append(data, multirate, 0x80|byte(transferRate&0x7f))
		}
		if capability != TransferVideo {
			data = append(data, 0x80|1<<5|byte(userInfoLayer1&31))
		}
	case 1:
		// call independent signalling connection
		data = append(data, 0x80)
	}
	m.SetIE(IEBearerCapability, data)
}

// BearerCapabilities decodes the bearer capability IE.
// Transfer rate and layer 1 protocol are zero when the IE does not carry them.
func (m *Message) BearerCapabilities() (capability, transferRate, codingStandard, userInfoLayer1 int, err error) {
	data, ok := m.IE(IEBearerCapability)
	if !ok || len(data) == 0 {
		return 0, 0, 0, 0, ErrNoBearerCapability
	}
	capability = int(data[0] & 31)
	codingStandard = int(data[0]>>5) & 3
	if codingStandard != 0 || len(data) < 2 {
		return capability, 0, codingStandard, 0, nil
	}
	rest := data[1:]
	if rest[0]&0x7f == multirate {
		if len(rest) < 2 {
			return 0, 0, 0, 0, fmt.Errorf("truncated bearer capability: % x", data)
		}
		transferRate = int(rest[1] & 0x7f)
		rest = rest[2:]
	} else {
		for rate, code := range rateCodes {
			if code == rest[0] {
				transferRate = rate
			}
		}
		rest = rest[1:]
	}
	if len(rest) > 0 && (rest[0]>>5)&3 == 1 {
		userInfoLayer1 = int(rest[0] & 31)
	}
	return capability, transferRate, codingStandard, userInfoLayer1, nil
}

// Marshal renders the message header followed by the information elements in ascending order.
func (m *Message) Marshal() ([]byte, error) {
	ref := m.CallRef & 0x7fff
	if m.FromDestination {
		ref |= 0x8000
	}
	buf := []byte{protocolDiscriminator, 2, byte(ref >> 8), byte(ref), byte(m.Type)}
	keys := make([]IE, 0, len(m.ies))
	for ie := range m.ies {
		keys = append(keys, ie)
	}
	slices.Sort(keys)
	for _, ie := range keys {
		data := m.ies[ie]
		switch {
		case ie == IEUserUser:
			// 16 bit length
			buf = append(buf, byte(ie), byte(len(data)>>8), byte(len(data)))
		case ie&0x80 != 0:
			// single octet IE carries no length or data
			buf = append(buf, byte(ie))
			continue
		default:
			if len(data) > 0xff {
				return nil, fmt.Errorf("information element 0x%02x is too long: %d", byte(ie), len(data))
			}
			buf = append(buf, byte(ie), byte(len(data)))
		}
		buf = append(buf, data...)
	}
	return buf, nil
}
