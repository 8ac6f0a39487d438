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

var (
	G711ULaw = Register(&Format{
		Name: "G.711-uLaw-64k", Category: CategoryAudio, Transportable: true,
		EncodingName: "PCMU", ClockRate: 8000, PayloadType: 0, StaticPayload: true,
	})
	G711ALaw = Register(&Format{
		Name: "G.711-ALaw-64k", Category: CategoryAudio, Transportable: true,
		EncodingName: "PCMA", ClockRate: 8000, PayloadType: 8, StaticPayload: true,
	})
	GSM0610 = Register(&Format{
		Name: "GSM-06.10", Category: CategoryAudio, Transportable: true,
		EncodingName: "GSM", ClockRate: 8000, PayloadType: 3, StaticPayload: true,
	})
	G7231 = Register(&Format{
		Name: "G.723.1", Category: CategoryAudio, Transportable: true,
		EncodingName: "G723", ClockRate: 8000, PayloadType: 4, StaticPayload: true,
	})
	G722 = Register(&Format{
		Name: "G.722-64k", Category: CategoryAudio, Transportable: true,
		// RFC 3551 keeps the G.722 RTP clock at 8000.
		EncodingName: "G722", ClockRate: 8000, PayloadType: 9, StaticPayload: true,
	})
	G729A = Register(&Format{
		Name: "G.729A-8k", Category: CategoryAudio, Transportable: true,
		EncodingName: "G729", ClockRate: 8000, PayloadType: 18, StaticPayload: true,
	})
	ILBC = Register(&Format{
		Name: "iLBC-13k3", Category: CategoryAudio, Transportable: true,
		EncodingName: "iLBC", ClockRate: 8000, PayloadType: 97,
	})
	Opus = Register(&Format{
		Name: "Opus-48", Category: CategoryAudio, Transportable: true,
		Protocols:    []string{ProtocolSIP},
		EncodingName: "opus", ClockRate: 48000, PayloadType: 111,
	})
	// Linear16 is the raw PCM format used between codecs and is never sent on the wire.
	Linear16 = Register(&Format{
		Name: "Linear-16-Mono-8kHz", Category: CategoryAudio,
		ClockRate: 8000,
	})

	T38 = Register(&Format{
		Name: "T.38", Category: CategoryFax, Transportable: true,
		EncodingName: "t38",
	})

	RFC2833 = Register(&Format{
		Name: "UserInput/RFC2833", Category: CategoryOther, Transportable: true,
		EncodingName: "telephone-event", ClockRate: 8000, PayloadType: 101,
	})
	H264 = Register(&Format{
		Name: "H.264", Category: CategoryOther, Transportable: true,
		EncodingName: "H264", ClockRate: 90000, PayloadType: 96,
	})
)
