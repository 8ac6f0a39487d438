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

import "strings"

const (
	// OptionDisableT38 removes T.38 from the connection allow list when present.
	OptionDisableT38 = "Disable-T38-Mode"
	// OptionBearerCapability overrides the endpoint bearer capability (S:C:R:P).
	OptionBearerCapability = "H323-Bearer-Capability"

	// route options carry this prefix
	routeOptionPrefix = "OPAL-"
)

// StringOptions are call specific options supplied by the call layer.
// Keys are case-insensitive and may carry the "OPAL-" route option prefix.
type StringOptions map[string]string

func stripRoutePrefix(key string) (string, bool) {
	if len(key) > len(routeOptionPrefix) && strings.EqualFold(key[:len(routeOptionPrefix)], routeOptionPrefix) {
		return key[len(routeOptionPrefix):], true
	}
	return key, false
}

// Get returns an option value. A key without the route prefix takes precedence
// over the same key with it.
func (o StringOptions) Get(key string) (string, bool) {
	key, _ = stripRoutePrefix(key)
	var (
		routed string
		found  bool
	)
	for k, v := range o {
		name, prefixed := stripRoutePrefix(k)
		if !strings.EqualFold(name, key) {
			continue
		}
		if !prefixed {
			return v, true
		}
		routed, found = v, true
	}
	return routed, found
}

func (o StringOptions) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}
