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

// Package bearer implements the Q.931 bearer capability descriptor used in
// H.225 Setup, Connect and Progress messages.
package bearer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrFieldCount = errors.New("bearer capability must have 4 fields")
	ErrNotNumber  = errors.New("bearer capability field is not a number")
	ErrOutOfRange = errors.New("bearer capability field is out of range")
)

// Field identifies one of the descriptor fields. Values follow the text order S:C:R:P.
type Field int

const (
	CodingStandard Field = iota
	TransferCapability
	TransferRate
	Layer1Protocol

	numFields = 4
)

func (f Field) String() string {
	switch f {
	case CodingStandard:
		return "coding standard"
	case TransferCapability:
		return "transfer capability"
	case TransferRate:
		return "transfer rate"
	case Layer1Protocol:
		return "layer 1 protocol"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

type fieldRange struct {
	min, max int
}

var ranges = [numFields]fieldRange{
	CodingStandard:     {0, 3},
	TransferCapability: {0, 31},
	TransferRate:       {1, 127},
	Layer1Protocol:     {2, 5},
}

// EncodeOrder maps argument positions of BearerCapabilitySetter.SetBearerCapabilities
// to descriptor fields. It differs from the text order.
var EncodeOrder = [numFields]Field{
	TransferCapability,
	TransferRate,
	CodingStandard,
	Layer1Protocol,
}

// BearerCapabilitySetter is implemented by outgoing signalling messages.
// Arguments are passed in EncodeOrder.
type BearerCapabilitySetter interface {
	SetBearerCapabilities(transferCapability, transferRate, codingStandard, layer1Protocol int)
}

// Capability is a validated bearer capability descriptor.
type Capability struct {
	CodingStandard     int
	TransferCapability int
	TransferRate       int
	Layer1Protocol     int
}

// Parse parses and validates an "S:C:R:P" token.
func Parse(s string) (Capability, error) {
	parts := strings.Split(s, ":")
	if len(parts) != numFields {
		return Capability{}, fmt.Errorf("%w: %q", ErrFieldCount, s)
	}
	var vals [numFields]int
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Capability{}, fmt.Errorf("%w: %s %q", ErrOutOfRange, Field(i), p)
			}
			return Capability{}, fmt.Errorf("%w: %s %q", ErrNotNumber, Field(i), p)
		}
		vals[i] = int(v)
	}
	c := fromFields(vals)
	if err := c.Validate(); err != nil {
		return Capability{}, err
	}
	return c, nil
}

func fromFields(v [numFields]int) Capability {
	return Capability{
		CodingStandard:     v[CodingStandard],
		TransferCapability: v[TransferCapability],
		TransferRate:       v[TransferRate],
		Layer1Protocol:     v[Layer1Protocol],
	}
}

// Fields returns descriptor values in text order.
func (c Capability) Fields() [numFields]int {
	var v [numFields]int
	v[CodingStandard] = c.CodingStandard
	v[TransferCapability] = c.TransferCapability
	v[TransferRate] = c.TransferRate
	v[Layer1Protocol] = c.Layer1Protocol
	return v
}

// EncodeArgs returns descriptor values in EncodeOrder.
func (c Capability) EncodeArgs() [numFields]int {
	fields := c.Fields()
	var out [numFields]int
	for i, f := range EncodeOrder {
		out[i] = fields[f]
	}
	return out
}

func (c Capability) Validate() error {
	for i, v := range c.Fields() {
		r := ranges[i]
		if v < r.min || v > r.max {
			return fmt.Errorf("%w: %s %d not in [%d, %d]", ErrOutOfRange, Field(i), v, r.min, r.max)
		}
	}
	return nil
}

func (c Capability) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", c.CodingStandard, c.TransferCapability, c.TransferRate, c.Layer1Protocol)
}

// Apply writes the descriptor into an outgoing message.
func (c Capability) Apply(dst BearerCapabilitySetter) {
	a := c.EncodeArgs()
	dst.SetBearerCapabilities(a[0], a[1], a[2], a[3])
}
