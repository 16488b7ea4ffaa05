package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPipeline struct {
	messages []SctpMessage
	events   []any
	active   int
	inactive int
}

func (p *recordingPipeline) MessageReceived(msg SctpMessage) { p.messages = append(p.messages, msg) }
func (p *recordingPipeline) UserEventTriggered(event any)    { p.events = append(p.events, event) }
func (p *recordingPipeline) ChannelActive()                  { p.active++ }
func (p *recordingPipeline) ChannelInactive()                { p.inactive++ }

func TestNotificationHandler_SendFailedPublishesAndContinues(t *testing.T) {
	pipeline := &recordingPipeline{}
	h := newNotificationHandler(pipeline, nil)

	n := Notification{Kind: NotificationSendFailed, SendFailed: &SendFailedEvent{}}
	verdict := h.handle(n)

	assert.Equal(t, verdictContinue, verdict)
	require.Len(t, pipeline.events, 1)
	assert.Equal(t, n, pipeline.events[0])
}

func TestNotificationHandler_ShutdownClosesAndStops(t *testing.T) {
	pipeline := &recordingPipeline{}
	closed := false
	h := newNotificationHandler(pipeline, func() { closed = true })

	n := Notification{Kind: NotificationShutdown, Shutdown: &ShutdownEvent{}}
	verdict := h.handle(n)

	assert.Equal(t, verdictReturn, verdict)
	assert.True(t, closed)
	require.Len(t, pipeline.events, 1)
}

func TestNotificationHandler_NilOnCloseIsSafe(t *testing.T) {
	pipeline := &recordingPipeline{}
	h := newNotificationHandler(pipeline, nil)
	n := Notification{Kind: NotificationShutdown, Shutdown: &ShutdownEvent{}}
	assert.NotPanics(t, func() {
		verdict := h.handle(n)
		assert.Equal(t, verdictReturn, verdict)
	})
}
