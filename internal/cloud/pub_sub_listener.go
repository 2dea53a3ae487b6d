// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-video-manual/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener runs a command for every message on a subscription. The
// message body becomes the command's CtxIn value. Messages are acked only
// when the command finishes without errors, so failures are redelivered.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

func NewPubSubListener(pubsubClient *pubsub.Client, subscriptionID string, command cor.Command) *PubSubListener {
	return &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}
}

// SetCommand sets the command once; later calls are ignored.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving in a goroutine until ctx is cancelled.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.InfoContext(ctx, "listening", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			defer span.End()
			span.SetAttributes(attribute.String("message.id", msg.ID))

			chainCtx := cor.NewBaseContext()
			defer chainCtx.Close()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if err := chainCtx.Err(); err != nil {
				span.SetStatus(codes.Error, "failed")
				slog.ErrorContext(spanCtx, "error executing chain", "message_id", msg.ID, "error", err)
				msg.Nack()
				return
			}
			span.SetStatus(codes.Ok, "success")
			msg.Ack()
		})
		if err != nil {
			slog.ErrorContext(ctx, "error receiving messages", "subscription", m.subscription.String(), "error", err)
		}
	}()
}
