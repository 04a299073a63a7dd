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

// Package kafka delivers row and DDL events to a message bus, encoding
// each event with one of internal/encode's format implementations and
// routing it to a topic through a Router.
package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/cockroachdb/dtcore/internal/cdctype"
	"github.com/cockroachdb/dtcore/internal/encode"
	"github.com/cockroachdb/dtcore/internal/latency"
	"github.com/cockroachdb/dtcore/internal/metrics"
)

// Sinker publishes DtItems to Kafka-compatible topics. One Sinker owns
// one sarama.AsyncProducer; format reconfiguration is not supported past
// construction, matching the uniform-sink contract's "reconfiguration
// happens per-sink at construction" rule.
type Sinker struct {
	id       string
	producer sarama.AsyncProducer
	router   Router
	encoder  encode.Encoder
	latency  latency.Tracker
}

// New builds a Kafka-backed Sinker from an already-configured
// sarama.AsyncProducer (callers own broker address/ack/compression
// settings through sarama.Config, kept out of this package so test code
// can substitute a mocks.AsyncProducer).
func New(id string, producer sarama.AsyncProducer, router Router, enc encode.Encoder) *Sinker {
	return &Sinker{id: id, producer: producer, router: router, encoder: enc}
}

// ID returns the sinker's identity.
func (s *Sinker) ID() string { return s.id }

// Close releases the underlying producer.
func (s *Sinker) Close() error {
	return errors.WithStack(s.producer.Close())
}

// SinkDML publishes each item's encoded key/value to the topic its
// (schema, table) resolves to, firing every send without waiting, then
// collecting one result per message in the order the producer reports
// them; any reported error fails the whole batch.
func (s *Sinker) SinkDML(ctx context.Context, items []cdctype.DtItem) error {
	return s.sink(ctx, items)
}

// SinkRaw is identical to SinkDML for this sinker: a Kafka topic has no
// notion of "raw" versus row-shaped payloads once encoded.
func (s *Sinker) SinkRaw(ctx context.Context, items []cdctype.DtItem, _ bool) error {
	return s.sink(ctx, items)
}

func (s *Sinker) sink(ctx context.Context, items []cdctype.DtItem) error {
	if len(items) == 0 {
		return nil
	}
	start := time.Now()

	schema, table := labelsFor(items)
	successes := make(chan *sarama.ProducerMessage, len(items))
	failures := make(chan *sarama.ProducerError, len(items))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < len(items); i++ {
			select {
			case msg := <-s.producer.Successes():
				successes <- msg
			case err := <-s.producer.Errors():
				failures <- err
			}
		}
	}()

	var dataSize int
	for i := range items {
		msg, err := s.buildMessage(ctx, items[i], i)
		if err != nil {
			metrics.FlushErrors.WithLabelValues("kafka", schema, table).Inc()
			return err
		}
		dataSize += len(msg.Key.(sarama.ByteEncoder)) + len(msg.Value.(sarama.ByteEncoder))
		select {
		case s.producer.Input() <- msg:
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	close(failures)
	if perr, ok := <-failures; ok {
		metrics.FlushErrors.WithLabelValues("kafka", schema, table).Inc()
		return errors.Wrapf(perr.Err, "failed in kafka producer for topic %s", perr.Msg.Topic)
	}

	s.latency.Observe(time.Since(start))
	metrics.FlushDurations.WithLabelValues("kafka", schema, table).Observe(time.Since(start).Seconds())
	metrics.FlushRecords.WithLabelValues("kafka", schema, table).Add(float64(len(items)))
	metrics.FlushBytes.WithLabelValues("kafka", schema, table).Add(float64(dataSize))
	return nil
}

func (s *Sinker) buildMessage(ctx context.Context, item cdctype.DtItem, idx int) (*sarama.ProducerMessage, error) {
	var schema, table string
	var key, value []byte
	var err error

	switch item.Data.Kind {
	case cdctype.KindDdl:
		schema, table = item.Data.Ddl.DefaultSchema, ""
		value, err = s.encoder.DDLValue(ctx, item.Data.Ddl)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		key = []byte(schema)
	case cdctype.KindDml:
		schema, table = item.Data.Row.Schema, item.Data.Row.Table
		key, err = s.encoder.RowKey(ctx, item.Data.Row)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		value, err = s.encoder.RowValue(ctx, item.Data.Row)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("kafka sinker: unsupported item kind %d", item.Data.Kind)
	}

	return &sarama.ProducerMessage{
		Topic:     s.router.GetTopic(schema, table),
		Key:       sarama.ByteEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: time.Now(),
		Metadata:  idx,
	}, nil
}

func labelsFor(items []cdctype.DtItem) (schema, table string) {
	for _, it := range items {
		if it.Data.Kind == cdctype.KindDml {
			return it.Data.Row.Schema, it.Data.Row.Table
		}
	}
	if len(items) > 0 && items[0].Data.Kind == cdctype.KindDdl {
		return items[0].Data.Ddl.DefaultSchema, ""
	}
	return "", ""
}
