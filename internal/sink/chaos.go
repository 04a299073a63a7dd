// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"context"
	"math/rand"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/pkg/errors"
)

// ErrChaos is the error that will be injected by the WithChaos wrapper in
// this package.
var ErrChaos = errors.New("chaos")

// WithChaos returns a wrapper around a Sinker that will inject errors at
// each call with probability prob, used to exercise how errors from a
// flaky destination propagate through a parallelizer. delegate is
// returned unwrapped if prob is less than or equal to zero.
func WithChaos(delegate Sinker, prob float32) Sinker {
	if prob <= 0 {
		return delegate
	}
	if prob > 1 {
		prob = 1
	}
	return &chaosSinker{delegate: delegate, prob: prob}
}

// This could include a *rand.Rand, but as soon as we start calling
// methods from multiple goroutines, there's no hope of repeatable
// behavior.
type chaosSinker struct {
	delegate Sinker
	prob     float32
}

var _ Sinker = (*chaosSinker)(nil)

func (s *chaosSinker) SinkDML(ctx context.Context, items []cdctype.DtItem) error {
	if rand.Float32() < s.prob {
		return doChaos("SinkDML")
	}
	return s.delegate.SinkDML(ctx, items)
}

func (s *chaosSinker) SinkRaw(ctx context.Context, items []cdctype.DtItem, serial bool) error {
	if rand.Float32() < s.prob {
		return doChaos("SinkRaw")
	}
	return s.delegate.SinkRaw(ctx, items, serial)
}

func (s *chaosSinker) Close() error {
	if rand.Float32() < s.prob {
		return doChaos("Close")
	}
	return s.delegate.Close()
}

func (s *chaosSinker) ID() string {
	return s.delegate.ID()
}

// doChaos is a convenient place to set a breakpoint.
func doChaos(msg string) error {
	return errors.WithMessage(ErrChaos, msg)
}
