package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mwarzecha/authgate/internal/domain"
	pkgkafka "github.com/mwarzecha/authgate/pkg/kafka"
)

// Kafka topic constants for auth domain events.
const (
	TopicUserRegistered = "authgate.user.registered"
	TopicUserSignedIn   = "authgate.user.signed_in"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceAuthgate = "authgate"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserSignedInData is the payload for a user.signed_in event.
type UserSignedInData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Producer publishes auth domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceAuthgate, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.InfoContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)
	return nil
}

// PublishUserSignedIn publishes a user.signed_in event.
func (p *Producer) PublishUserSignedIn(ctx context.Context, user *domain.User) error {
	data := UserSignedInData{
		ID:    user.ID,
		Email: user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserSignedIn, user.ID, AggregateTypeUser, SourceAuthgate, data)
	if err != nil {
		return fmt.Errorf("create user.signed_in event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserSignedIn, event); err != nil {
		return fmt.Errorf("publish user.signed_in event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.signed_in event",
		slog.String("user_id", user.ID),
	)
	return nil
}
