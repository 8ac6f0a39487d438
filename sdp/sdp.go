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

// Package sdp renders H.323 format lists as SDP media descriptions and reads
// remote media descriptions back into format lists.
package sdp

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/pion/sdp/v3"

	media "github.com/livekit/h323-media-sdk"
)

var (
	ErrNoCommonMedia = errors.New("no offered media format")
	ErrInvalidMedia  = errors.New("invalid media description")
)

const (
	mediaAudio = "audio"
	mediaImage = "image"

	protoUDPTL = "udptl"
	formatT38  = "t38"

	dtmfEvents = "0-16"
)

// T.38 session parameters sent with the image media line.
var t38Attributes = []sdp.Attribute{
	{Key: "T38FaxVersion", Value: "0"},
	{Key: "T38MaxBitRate", Value: "14400"},
	{Key: "T38FaxRateManagement", Value: "transferredTCF"},
	{Key: "T38FaxMaxBuffer", Value: "2000"},
	{Key: "T38FaxMaxDatagram", Value: "400"},
	{Key: "T38FaxUdpEC", Value: "t38UDPRedundancy"},
}

func rtpmap(f *media.Format) string {
	return fmt.Sprintf("%d %s/%d", f.PayloadType, f.EncodingName, f.ClockRate)
}

func isRTPFormat(f *media.Format) bool {
	switch {
	case !f.Transportable || f.EncodingName == "":
		return false
	case f.Category == media.CategoryAudio:
		return true
	}
	return f.Equal(media.RFC2833)
}

// AudioMedia renders RTP audio formats and telephone events in list order.
// It returns nil when the list carries no RTP audio format.
func AudioMedia(port int, formats media.FormatList) *sdp.MediaDescription {
	if !formats.HasCategory(media.CategoryAudio) {
		return nil
	}
	attrs := make([]sdp.Attribute, 0, len(formats)+3)
	pts := make([]string, 0, len(formats))
	var dtmf *media.Format
	for _, f := range formats {
		if !isRTPFormat(f) {
			continue
		}
		if f.Equal(media.RFC2833) {
			dtmf = f
		}
		pts = append(pts, strconv.Itoa(int(f.PayloadType)))
		attrs = append(attrs, sdp.Attribute{Key: "rtpmap", Value: rtpmap(f)})
	}
	if dtmf != nil {
		attrs = append(attrs, sdp.Attribute{
			Key: "fmtp", Value: fmt.Sprintf("%d %s", dtmf.PayloadType, dtmfEvents),
		})
	}
	attrs = append(attrs, []sdp.Attribute{
		{Key: "ptime", Value: "20"},
		{Key: "sendrecv"},
	}...)
	return &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:   mediaAudio,
			Port:    sdp.RangedPort{Value: port},
			Protos:  []string{"RTP", "AVP"},
			Formats: pts,
		},
		Attributes: attrs,
	}
}

// FaxMedia renders the T.38 image media line.
func FaxMedia(port int) *sdp.MediaDescription {
	attrs := make([]sdp.Attribute, 0, len(t38Attributes))
	attrs = append(attrs, t38Attributes...)
	return &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:   mediaImage,
			Port:    sdp.RangedPort{Value: port},
			Protos:  []string{protoUDPTL},
			Formats: []string{formatT38},
		},
		Attributes: attrs,
	}
}

// MediaDescriptions renders the offered formats. The image line is only
// present when T.38 is on the list.
func MediaDescriptions(formats media.FormatList, audioPort, faxPort int) ([]*sdp.MediaDescription, error) {
	var out []*sdp.MediaDescription
	if m := AudioMedia(audioPort, formats); m != nil {
		out = append(out, m)
	}
	if formats.Contains(media.T38) {
		out = append(out, FaxMedia(faxPort))
	}
	if len(out) == 0 {
		return nil, ErrNoCommonMedia
	}
	return out, nil
}

// NewOffer builds a session description for the offered formats.
func NewOffer(publicIp netip.Addr, formats media.FormatList, audioPort, faxPort int) (*sdp.SessionDescription, error) {
	descs, err := MediaDescriptions(formats, audioPort, faxPort)
	if err != nil {
		return nil, err
	}
	addrType := "IP4"
	if publicIp.Is6() {
		addrType = "IP6"
	}
	sessId := rand.Uint64()
	return &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "-",
			SessionID:      sessId,
			SessionVersion: sessId,
			NetworkType:    "IN",
			AddressType:    addrType,
			UnicastAddress: publicIp.String(),
		},
		SessionName: "LiveKit",
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: addrType,
			Address:     &sdp.Address{Address: publicIp.String()},
		},
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: descs,
	}, nil
}

var (
	encodingMu sync.RWMutex
	byEncoding = make(map[string]*media.Format)
)

func encodingKey(name string, clockRate int) string {
	return strings.ToLower(name) + "/" + strconv.Itoa(clockRate)
}

func init() {
	media.OnRegister(func(f *media.Format) {
		if !f.Transportable || f.EncodingName == "" {
			return
		}
		key := encodingKey(f.EncodingName, f.ClockRate)
		encodingMu.Lock()
		defer encodingMu.Unlock()
		if _, ok := byEncoding[key]; !ok {
			byEncoding[key] = f
		}
	})
}

func formatByEncoding(name string, clockRate int) *media.Format {
	encodingMu.RLock()
	defer encodingMu.RUnlock()
	return byEncoding[encodingKey(name, clockRate)]
}

func rtpmaps(desc *sdp.MediaDescription) map[string]string {
	out := make(map[string]string)
	for _, a := range desc.Attributes {
		if a.Key != "rtpmap" {
			continue
		}
		pt, enc, ok := strings.Cut(a.Value, " ")
		if ok {
			out[pt] = strings.TrimSpace(enc)
		}
	}
	return out
}

func parseEncoding(enc string) (string, int, error) {
	parts := strings.Split(enc, "/")
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("%w: rtpmap %q", ErrInvalidMedia, enc)
	}
	rate, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%w: rtpmap %q: %w", ErrInvalidMedia, enc, err)
	}
	return parts[0], rate, nil
}

// ParseFormats returns the known formats of a remote media description in
// the remote order. Unknown payload types are skipped.
func ParseFormats(desc *sdp.MediaDescription) (media.FormatList, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: no media", ErrInvalidMedia)
	}
	var out media.FormatList
	switch desc.MediaName.Media {
	case mediaImage:
		for _, f := range desc.MediaName.Formats {
			if strings.EqualFold(f, formatT38) {
				out = out.Append(media.T38)
			}
		}
		return out, nil
	case mediaAudio:
	default:
		return nil, nil
	}
	maps := rtpmaps(desc)
	for _, spt := range desc.MediaName.Formats {
		pt, err := strconv.ParseUint(spt, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: payload type %q: %w", ErrInvalidMedia, spt, err)
		}
		var f *media.Format
		if enc, ok := maps[spt]; ok {
			name, rate, err := parseEncoding(enc)
			if err != nil {
				return nil, err
			}
			f = formatByEncoding(name, rate)
		} else {
			f = media.FormatByPayloadType(byte(pt))
		}
		if f != nil {
			out = out.Append(f)
		}
	}
	return out, nil
}

// ParseSessionFormats parses a remote session description and returns the
// known formats of all its media lines.
func ParseSessionFormats(data []byte) (media.FormatList, error) {
	var sd sdp.SessionDescription
	if err := sd.Unmarshal(data); err != nil {
		return nil, err
	}
	var out media.FormatList
	for _, desc := range sd.MediaDescriptions {
		formats, err := ParseFormats(desc)
		if err != nil {
			return nil, err
		}
		out = out.Append(formats...)
	}
	return out, nil
}
