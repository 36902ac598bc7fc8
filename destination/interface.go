/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"context"

	"github.com/datazip-inc/greenhouse-tap/types"
)

type Config interface {
	Validate() error
}

type Writer interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// Check verifies the destination is reachable; doesn't load streams
	Check(ctx context.Context) error
	// Setup dedicates the writer to one stream
	Setup(ctx context.Context, stream types.StreamInterface, opts *Options) error
	// Write is called with at most one batch of records
	Write(ctx context.Context, records []types.RawRecord) error
	Close(ctx context.Context) error
}

// StateWriter is implemented by writers that publish state next to records
type StateWriter interface {
	WriteState(ctx context.Context, state *types.State) error
}
