package config

import "os"

// QueueConfig controls publishing of ledger events to RabbitMQ and the
// optional in-process consumer that writes them to an audit log file.
// Publishing is enabled only when a broker URL is configured.
type QueueConfig struct {
	Enabled         bool
	URL             string
	Queue           string
	ConsumerEnabled bool
	LedgerLogPath   string
}

// LoadQueueConfig reads RABBITMQ_URL (or AMQP_URL) and the QUEUE_* variables.
func LoadQueueConfig() QueueConfig {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return QueueConfig{
		Enabled:         url != "" && envBool("QUEUE_ENABLED", true),
		URL:             url,
		Queue:           envStr("QUEUE_LEDGER_NAME", "ledger.events"),
		ConsumerEnabled: url != "" && envBool("QUEUE_CONSUMER_ENABLED", false),
		LedgerLogPath:   envStr("QUEUE_LEDGER_LOG", "logs/ledger.log"),
	}
}
