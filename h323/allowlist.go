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
	"strings"

	"github.com/livekit/protocol/logger"

	media "github.com/livekit/h323-media-sdk"
)

// DefaultAudioFormats are enabled when no audio selectors are configured.
var DefaultAudioFormats = media.FormatList{media.G711ULaw, media.G711ALaw}

func isAudioFormat(f *media.Format) bool {
	return f.Category == media.CategoryAudio && f.IsValidForProtocol(media.ProtocolH323) && f.Transportable
}

// AudioFormats lists registered formats that can be enabled with an audio selector.
func AudioFormats(registry media.FormatList) media.FormatList {
	var out media.FormatList
	for _, f := range registry {
		if isAudioFormat(f) {
			out = append(out, f)
		}
	}
	return out
}

// BuildAllowList builds the endpoint allow list from audio selectors.
//
// Each selector is either a format name or a wildcard ('*' matches any substring,
// a leading '!' negates the match). Selectors are applied in order and the registry
// is scanned in registration order, so the selector order is the preference order.
// T.38 and RFC 2833 are always appended last.
func BuildAllowList(log logger.Logger, selectors []string, registry media.FormatList) media.FormatList {
	if log == nil {
		log = logger.GetLogger()
	}
	var list media.FormatList
	if len(selectors) == 0 {
		list = DefaultAudioFormats.Clone()
	}
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		matched := 0
		for _, f := range registry {
			if !isAudioFormat(f) || !media.MatchName(sel, f.Name) {
				continue
			}
			matched++
			if !list.Contains(f) {
				list = append(list, f)
			}
		}
		if matched == 0 {
			log.Warnw("audio selector does not match any format", nil, "selector", sel)
		}
	}
	log.Infow("enabled audio formats for H.323 (in preference order)", "formats", list.Names())
	return list.Append(media.T38, media.RFC2833)
}
