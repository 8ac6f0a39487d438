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

// Command h323-formats prints the H.323 audio formats and the allow list an
// endpoint builds from its configuration.
package main

import (
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/h323-media-sdk/config"
	"github.com/livekit/h323-media-sdk/h323"
	"github.com/livekit/h323-media-sdk/sdp"
)

func main() {
	var (
		confPath = flag.String("config", "", "YAML config file")
		audio    = flag.String("audio", "", "Comma separated audio format selectors, overrides the config")
		list     = flag.Bool("list", false, "List H.323 audio formats and exit")
		offer    = flag.String("sdp", "", "Print an SDP offer for the allow list using this address")
	)
	flag.Parse()

	if err := run(*confPath, *audio, *list, *offer); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(confPath, audio string, list bool, offer string) error {
	conf := &config.Config{}
	if confPath != "" {
		var err error
		conf, err = config.Load(confPath)
		if err != nil {
			return err
		}
	}
	logger.InitFromConfig(&conf.Logging, "h323-formats")
	if err := conf.Validate(); err != nil {
		return err
	}

	ep := conf.Endpoint()
	if audio != "" {
		ep.AudioFormats = strings.Split(audio, ",")
	}
	e := h323.NewEndpoint(logger.GetLogger(), ep)

	if list {
		for _, f := range e.AudioFormats() {
			fmt.Println(f.Name)
		}
		return nil
	}

	fmt.Println("allow list:")
	for i, f := range e.AllowList() {
		fmt.Printf("  %2d. %s (%s)\n", i+1, f.Name, f.Category)
	}
	if bc, ok := e.BearerCapability(); ok {
		fmt.Println("bearer capability:", bc.String())
	}

	if offer != "" {
		ip, err := netip.ParseAddr(offer)
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
		desc, err := sdp.NewOffer(ip, e.AllowList(), 5004, 5006)
		if err != nil {
			return err
		}
		data, err := desc.Marshal()
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(string(data))
	}
	return nil
}
