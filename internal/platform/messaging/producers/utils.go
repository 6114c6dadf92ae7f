package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	topicProbeAttempts = 5
	topicProbeDelay    = 2 * time.Second
)

// topicAdmin is the subset of *kafka.Conn used for topic provisioning
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// createKafkaTopicIfNotExists probes the topic a few times before creating it
func createKafkaTopicIfNotExists(conn topicAdmin, topicName string, numPartitions int, replicationFactor int, log *slog.Logger) error {
	return ensureTopic(conn, topicName, numPartitions, replicationFactor, topicProbeAttempts, topicProbeDelay, log)
}

func ensureTopic(conn topicAdmin, topicName string, numPartitions, replicationFactor, attempts int, delay time.Duration, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)
	for i := 0; i < attempts; i++ {
		partitions, err = conn.ReadPartitions(topicName)
		if err == nil && len(partitions) > 0 {
			log.Debug("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read topic partitions", "topic", topicName, "attempt", i+1, "error", err)
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}
	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	log.Info("Created Kafka topic",
		"topic", topicName,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor)
	return nil
}
