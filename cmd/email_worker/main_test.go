package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/pkg/mailer"
)

type ackResult struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackResult) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackResult) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackResult) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type stubSender struct {
	err  error
	sent int
}

func (s *stubSender) Send(context.Context, string, string, string, string, string) error {
	s.sent++
	return s.err
}

func delivery(t *testing.T, job mailer.EmailJob, redelivered bool) (amqp.Delivery, *ackResult) {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	ack := &ackResult{}
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}, ack
}

func TestHandle_SendsAndAcks(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &stubSender{}
	msg, ack := delivery(t, mailer.EmailJob{To: "a@x.com", Subject: "s", Text: "t"}, false)

	handle(context.Background(), logger, mg, msg)
	assert.Equal(t, 1, mg.sent)
	assert.True(t, ack.acked)
}

func TestHandle_SendFailureRequeuesOnce(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &stubSender{err: errors.New("mailgun: 400 bad domain")}

	first, ack := delivery(t, mailer.EmailJob{To: "a@x.com", Subject: "s"}, false)
	handle(context.Background(), logger, mg, first)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)

	again, ack := delivery(t, mailer.EmailJob{To: "a@x.com", Subject: "s"}, true)
	handle(context.Background(), logger, mg, again)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue, "a redelivered job is dropped")
}

func TestHandle_DropsMalformedJobs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	mg := &stubSender{}

	noRecipient, ack := delivery(t, mailer.EmailJob{Subject: "s"}, false)
	handle(context.Background(), logger, mg, noRecipient)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)

	unknown, ack := delivery(t, mailer.EmailJob{To: "a@x.com", Template: "nope"}, false)
	handle(context.Background(), logger, mg, unknown)
	assert.False(t, ack.requeue)
	assert.Zero(t, mg.sent)
}
