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
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Call groups the connections (legs) of one call. The first added connection is leg 0.
type Call struct {
	id string

	mu    sync.RWMutex
	conns []*Connection
}

func NewCall(id string) *Call {
	if id == "" {
		id = uuid.NewString()
	}
	return &Call{id: id}
}

func (c *Call) ID() string {
	return c.id
}

// Connection returns the leg with a given index, or nil.
func (c *Call) Connection(i int) *Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.conns) {
		return nil
	}
	return c.conns[i]
}

func (c *Call) Connections() []*Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.conns)
}

func (c *Call) add(conn *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns = append(c.conns, conn)
}

func (c *Call) remove(conn *Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns = slices.DeleteFunc(c.conns, func(o *Connection) bool {
		return o == conn
	})
}
