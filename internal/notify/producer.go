package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-tombola/internal/models"
	"ms-tombola/internal/recap"
)

// Topics carried by the tombola event stream.
const (
	TopicSaleLogged   = "tombola.sale.logged"
	TopicDailyRecap   = "tombola.recap.daily"
	TopicSeasonClosed = "tombola.season.closed"
	TopicAuthCode     = "tombola.auth.code"
)

// AllTopics lists every topic the service writes to, for bootstrap.
func AllTopics() []string {
	return []string{TopicSaleLogged, TopicDailyRecap, TopicSeasonClosed, TopicAuthCode}
}

// Producer streams ledger events to Kafka, one writer per topic.
type Producer struct {
	writers map[string]*kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writers := make(map[string]*kafka.Writer, len(AllTopics()))
	for _, topic := range AllTopics() {
		writers[topic] = kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{writers: writers}
}

func (p *Producer) publish(topic, key string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", topic, string(msgBytes))

	return p.writers[topic].WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishSaleLogged streams a freshly registered sale.
func (p *Producer) PublishSaleLogged(sale models.Sale) error {
	return p.publish(TopicSaleLogged, sale.ID, sale)
}

// PublishDailyRecap streams the end-of-day summary.
func (p *Producer) PublishDailyRecap(r recap.Recap) error {
	return p.publish(TopicDailyRecap, r.From.Format("2006-01-02"), r)
}

// PublishSeasonClosed streams a season archival event.
func (p *Producer) PublishSeasonClosed(season models.Season) error {
	return p.publish(TopicSeasonClosed, season.ID, season)
}

// PublishLoginCode streams an issued panel login code so the delivery
// bot can relay it to the operator.
func (p *Producer) PublishLoginCode(userID, code string) error {
	payload := map[string]string{"user_id": userID, "code": code}
	return p.publish(TopicAuthCode, userID, payload)
}

// Close shuts down every topic writer.
func (p *Producer) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
