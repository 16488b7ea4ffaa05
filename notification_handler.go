package sctp

// Pipeline is the inbound sink this module feeds: the generic
// pipeline/handler framework (out of scope, spec.md §1) is consumed only
// through this interface.
type Pipeline interface {
	MessageReceived(msg SctpMessage)
	UserEventTriggered(event any)
	ChannelActive()
	ChannelInactive()
}

// notificationHandler receives out-of-band SCTP notifications during
// doReadMessages, publishes each as a pipeline user event, and tells the
// read loop whether to keep receiving.
type notificationHandler struct {
	pipeline Pipeline
	onClose  func()
}

func newNotificationHandler(pipeline Pipeline, onClose func()) *notificationHandler {
	return &notificationHandler{pipeline: pipeline, onClose: onClose}
}

// handle dispatches one kernel notification. Per spec.md §4.B: every
// variant publishes a user event carrying the notification plus its
// attachment, then returns Continue, except Shutdown, which additionally
// closes the channel and returns Return so the caller stops receiving
// mid-batch — a dead association has nothing further worth reading.
func (h *notificationHandler) handle(n Notification) notifyVerdict {
	h.pipeline.UserEventTriggered(n)
	if n.Kind == NotificationShutdown {
		if h.onClose != nil {
			h.onClose()
		}
		return verdictReturn
	}
	return verdictContinue
}
