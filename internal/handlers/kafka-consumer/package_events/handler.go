package package_events

import (
	"github.com/IBM/sarama"
	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

type Handler struct {
	sink Sink
	log  handlerLogger
}

func New(log handlerLogger, sink Sink) *Handler {
	handlerLog := log.With(logger.NewField("consumer", "package.events"))

	return &Handler{
		sink: sink,
		log:  handlerLog,
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *Handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				h.log.Info("package.events: claim.Messages() closed, exiting ConsumeClaim")
				return nil
			}

			h.messageProcessing(sess, message)

		case <-sess.Context().Done():
			h.log.Info("package.events: session context done, exiting ConsumeClaim")
			return nil
		}
	}
}

// messageProcessing разбирает одно сообщение и передает его получателю.
// Битые сообщения логируются и коммитятся, чтобы не блокировать партицию.
func (h *Handler) messageProcessing(sess sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	event, err := entities.DecodePushEvent(message.Value)
	if err != nil {
		h.log.With(
			logger.NewField("error", err),
			logger.NewField("offset", message.Offset),
		).Error("package.events handler received bad message")
		sess.MarkMessage(message, "")
		return
	}

	h.log.With(
		logger.NewField("package_id", event.PackageID()),
		logger.NewField("event", entities.EventName(event.Event())),
		logger.NewField("offset", message.Offset),
	).Info("package.events: processed")

	h.sink(event)
	sess.MarkMessage(message, "")
}
