// Package events publishes domain events to the message bus: an in-process
// channel bus by default, Kafka when brokers are configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/ElStudioBarberia/course-service/internal/models"
	"github.com/ElStudioBarberia/course-service/internal/utils"
)

const (
	TopicUserRegistered    = "user.registered"
	TopicHabilitadoChanged = "user.habilitado_changed"
	TopicRoleChanged       = "user.role_changed"
	TopicCoursePublished   = "course.published"
)

type UserEvent struct {
	ProfileID  string    `json:"profile_id"`
	Email      string    `json:"email"`
	Rol        string    `json:"rol"`
	Habilitado bool      `json:"habilitado"`
	OccurredAt time.Time `json:"occurred_at"`
}

type CourseEvent struct {
	CursoID      string    `json:"curso_id"`
	Titulo       string    `json:"titulo"`
	InstructorID string    `json:"instructor_id"`
	Publicado    bool      `json:"publicado"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher wraps the underlying bus. A nil Publisher is valid and drops
// everything, so callers never need to guard event emission.
type Publisher struct {
	pub    message.Publisher
	logger utils.Logger
}

// NewGoChannel creates an in-process publisher (development and tests).
func NewGoChannel(logger utils.Logger) (*Publisher, *gochannel.GoChannel) {
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return &Publisher{pub: bus, logger: logger}, bus
}

// NewKafka creates a Kafka-backed publisher.
func NewKafka(brokers []string, logger utils.Logger) (*Publisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NopLogger{})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &Publisher{pub: pub, logger: logger}, nil
}

// NewKafkaSubscriber creates the consumer side of the Kafka bus for
// in-process listeners such as the session refresher.
func NewKafkaSubscriber(brokers []string, consumerGroup string) (message.Subscriber, error) {
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: consumerGroup,
	}, watermill.NopLogger{})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}
	return sub, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.pub == nil {
		return nil
	}
	return p.pub.Close()
}

func (p *Publisher) UserRegistered(ctx context.Context, profile *models.Profile) {
	p.emit(TopicUserRegistered, UserEvent{
		ProfileID:  profile.ID,
		Email:      profile.Email,
		Rol:        profile.Rol,
		Habilitado: profile.Habilitado,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) HabilitadoChanged(ctx context.Context, profileID string, habilitado bool) {
	p.emit(TopicHabilitadoChanged, UserEvent{
		ProfileID:  profileID,
		Habilitado: habilitado,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) RoleChanged(ctx context.Context, profileID, rol string) {
	p.emit(TopicRoleChanged, UserEvent{
		ProfileID:  profileID,
		Rol:        rol,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) CoursePublished(ctx context.Context, curso *models.Curso) {
	p.emit(TopicCoursePublished, CourseEvent{
		CursoID:      curso.ID,
		Titulo:       curso.Titulo,
		InstructorID: curso.InstructorID,
		Publicado:    curso.Publicado,
		OccurredAt:   time.Now().UTC(),
	})
}

// emit publishes best-effort: event delivery failures are logged, never
// surfaced to the triggering request.
func (p *Publisher) emit(topic string, payload any) {
	if p == nil || p.pub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("events: marshal payload", "topic", topic, "error", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.pub.Publish(topic, msg); err != nil {
		p.logger.Error("events: publish", "topic", topic, "error", err)
	}
}
