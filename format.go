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

package media

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	ProtocolH323 = "h.323"
	ProtocolSIP  = "sip"
)

type Category int

const (
	CategoryOther Category = iota
	CategoryAudio
	CategoryFax
)

func (c Category) String() string {
	switch c {
	case CategoryAudio:
		return "audio"
	case CategoryFax:
		return "fax"
	default:
		return "other"
	}
}

// Format describes a registered media format. Formats are owned by the registry
// and must not be modified after registration.
type Format struct {
	Name          string
	Category      Category
	Transportable bool
	// Protocols the format can be negotiated over. Empty means any protocol.
	Protocols []string

	// SDP mapping.
	EncodingName string
	ClockRate    int
	PayloadType  byte
	// StaticPayload is set when PayloadType is a static RTP assignment.
	StaticPayload bool
}

func (f *Format) String() string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

// Equal compares formats by name.
func (f *Format) Equal(o *Format) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.Name == o.Name
}

// IsValidForProtocol reports whether the format can be negotiated over the given protocol.
func (f *Format) IsValidForProtocol(proto string) bool {
	if len(f.Protocols) == 0 {
		return true
	}
	return slices.ContainsFunc(f.Protocols, func(p string) bool {
		return strings.EqualFold(p, proto)
	})
}

var (
	registryMu  sync.RWMutex
	registered  []*Format
	byName      = make(map[string]*Format)
	byPayload   [0x80]*Format
	registerFns []func(f *Format)
)

// OnRegister adds a hook that is called for each registered format, including the ones registered earlier.
func OnRegister(fnc func(f *Format)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registerFns = append(registerFns, fnc)
	for _, f := range registered {
		fnc(f)
	}
}

// Register adds a format to the global registry. It panics on duplicate names.
func Register(f *Format) *Format {
	if f.Name == "" {
		panic("format name is required")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	key := strings.ToLower(f.Name)
	if _, ok := byName[key]; ok {
		panic(fmt.Sprintf("format %q is already registered", f.Name))
	}
	byName[key] = f
	registered = append(registered, f)
	if f.StaticPayload && int(f.PayloadType) < len(byPayload) {
		byPayload[f.PayloadType] = f
	}
	for _, fnc := range registerFns {
		fnc(f)
	}
	return f
}

// RegisteredFormats returns all registered formats in registration order.
func RegisteredFormats() FormatList {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Clone(FormatList(registered))
}

// FormatByName looks up a registered format. Names are case-insensitive.
func FormatByName(name string) *Format {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return byName[strings.ToLower(name)]
}

// FormatByPayloadType returns a format with a given static RTP payload type.
func FormatByPayloadType(typ byte) *Format {
	if int(typ) >= len(byPayload) {
		return nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	return byPayload[typ]
}
