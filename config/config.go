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

package config

import (
	"fmt"
	"os"

	"github.com/livekit/protocol/logger"
	"gopkg.in/yaml.v3"

	"github.com/livekit/h323-media-sdk/bearer"
	"github.com/livekit/h323-media-sdk/h323"
)

type Config struct {
	Logging logger.Config       `yaml:"logging,omitempty"`
	H323    h323.EndpointConfig `yaml:"h323,omitempty"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conf, nil
}

func Parse(data []byte) (*Config, error) {
	conf := &Config{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return conf, nil
}

// Validate reports settings the endpoint would otherwise ignore with a warning.
func (c *Config) Validate() error {
	if s := c.H323.BearerCapability; s != "" {
		if _, err := bearer.Parse(s); err != nil {
			return fmt.Errorf("h323.bearer_capability: %w", err)
		}
	}
	return nil
}

func (c *Config) Endpoint() h323.EndpointConfig {
	conf := c.H323
	conf.AudioFormats = append([]string(nil), c.H323.AudioFormats...)
	return conf
}
