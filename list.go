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
	"slices"
	"strings"
)

// FormatList is an ordered list of formats without duplicates.
//
// Methods that change the list always return a new slice and never write to the
// receiver's backing array, so a list can be shared after it was published.
type FormatList []*Format

func (l FormatList) Clone() FormatList {
	if l == nil {
		return nil
	}
	return slices.Clone(l)
}

func (l FormatList) Index(f *Format) int {
	return slices.IndexFunc(l, f.Equal)
}

func (l FormatList) Contains(f *Format) bool {
	return l.Index(f) >= 0
}

// HasCategory reports whether the list has at least one format of a given category.
func (l FormatList) HasCategory(c Category) bool {
	return slices.ContainsFunc(l, func(f *Format) bool {
		return f.Category == c
	})
}

// Append returns a list with formats added to the end. Formats already on the list are skipped.
func (l FormatList) Append(formats ...*Format) FormatList {
	out := make(FormatList, len(l), len(l)+len(formats))
	copy(out, l)
	for _, f := range formats {
		if f != nil && !out.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Remove returns a list without the given format.
func (l FormatList) Remove(f *Format) FormatList {
	out := make(FormatList, 0, len(l))
	for _, g := range l {
		if !g.Equal(f) {
			out = append(out, g)
		}
	}
	return out
}

func (l FormatList) Names() []string {
	names := make([]string, 0, len(l))
	for _, f := range l {
		names = append(names, f.Name)
	}
	return names
}

func (l FormatList) String() string {
	return "[" + strings.Join(l.Names(), ", ") + "]"
}

// Filter keeps candidates that are present on the allow list.
// The result preserves the order of candidates, not the order of the allow list.
func Filter(candidates, allow FormatList) FormatList {
	out := make(FormatList, 0, len(candidates))
	for _, f := range candidates {
		if allow.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Reorder sorts candidates by the position of their names on the allow list.
// Candidates missing from the allow list keep their relative order at the end,
// so callers are expected to Filter first.
func Reorder(candidates, allow FormatList) FormatList {
	out := slices.Clone(candidates)
	rank := func(f *Format) int {
		if i := allow.Index(f); i >= 0 {
			return i
		}
		return len(allow)
	}
	slices.SortStableFunc(out, func(a, b *Format) int {
		return rank(a) - rank(b)
	})
	return out
}

// MatchName checks a format name against a selector. The '*' character matches
// any substring and a leading '!' negates the result. Matching is case-insensitive.
func MatchName(selector, name string) bool {
	if neg, ok := strings.CutPrefix(selector, "!"); ok {
		return !matchWildcard(strings.ToLower(neg), strings.ToLower(name))
	}
	return matchWildcard(strings.ToLower(selector), strings.ToLower(name))
}

func matchWildcard(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(s, first) {
		return false
	}
	s = s[len(first):]
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(s, p)
		if i < 0 {
			return false
		}
		s = s[i+len(p):]
	}
	return strings.HasSuffix(s, last)
}
