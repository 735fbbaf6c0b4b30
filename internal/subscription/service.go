package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sms-relay/internal/model"
	"sms-relay/internal/sender"
	"sms-relay/internal/store"
	"sms-relay/pkg/tracing"
)

// StopKeyword is the opt-out command, matched case-insensitively after
// trimming surrounding whitespace.
const StopKeyword = "STOP"

const (
	welcomeMessage = "Thank you for subscribing to the Hershey Ward alerts! Reply STOP to unsubscribe."
	goodbyeMessage = "You have been unsubscribed from Hershey Ward alerts."
)

var ErrMissingFrom = errors.New("inbound event has no sender number")

// Outcome is the transition taken for one inbound event.
type Outcome string

const (
	OutcomeSubscribed   Outcome = "subscribed"
	OutcomeUnsubscribed Outcome = "unsubscribed"
	OutcomeNoop         Outcome = "noop"
)

// Service is the per-number subscription state machine. A number is
// subscribed exactly when its record exists in the store; the only
// transitions are create (any non-STOP body from an unknown number) and
// delete (STOP from a known number). Each transition sends one confirmation,
// and the store mutation always happens before the confirmation send.
type Service struct {
	store  store.Store
	sender sender.Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewService(st store.Store, snd sender.Sender, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		sender: snd,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) HandleInbound(ctx context.Context, evt model.InboundEvent) (Outcome, error) {
	if evt.From == "" {
		return OutcomeNoop, ErrMissingFrom
	}

	command := strings.ToUpper(strings.TrimSpace(evt.Body))

	ctx, span := tracing.Start(ctx, "subscription.inbound",
		tracing.Attr("from", evt.From),
	)
	defer span.End()

	if command == StopKeyword {
		return s.unsubscribe(ctx, evt.From)
	}
	return s.subscribe(ctx, evt.From)
}

func (s *Service) subscribe(ctx context.Context, from string) (Outcome, error) {
	sub := model.Subscriber{
		PhoneNumber:  from,
		SubscribedAt: s.now().UTC().Format(time.RFC3339),
	}

	created, err := s.store.Create(ctx, sub)
	if err != nil {
		return OutcomeNoop, fmt.Errorf("create subscriber: %w", err)
	}
	if !created {
		// Already subscribed; repeat messages are a no-op and get no reply.
		return OutcomeNoop, nil
	}

	if err := s.sender.Send(ctx, from, welcomeMessage); err != nil {
		// The record is already in place; the caller decides how to report
		// the failed confirmation.
		return OutcomeSubscribed, fmt.Errorf("send welcome: %w", err)
	}

	s.logger.Info("subscriber added", "from", from)
	return OutcomeSubscribed, nil
}

func (s *Service) unsubscribe(ctx context.Context, from string) (Outcome, error) {
	existed, err := s.store.Delete(ctx, from)
	if err != nil {
		return OutcomeNoop, fmt.Errorf("delete subscriber: %w", err)
	}
	if !existed {
		// STOP from an unknown number is a no-op and gets no reply.
		return OutcomeNoop, nil
	}

	if err := s.sender.Send(ctx, from, goodbyeMessage); err != nil {
		return OutcomeUnsubscribed, fmt.Errorf("send goodbye: %w", err)
	}

	s.logger.Info("subscriber removed", "from", from)
	return OutcomeUnsubscribed, nil
}
