package messaging

import (
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange     = "reservation.events"
	DefaultCommandQueue = "reservation.commands"
)

type Configuration struct {
	Url          string `json:"url,omitempty"`
	Host         string `json:"host,omitempty"`
	Port         int    `json:"port,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	VirtualHost  string `json:"virtualHost,omitempty"`
	Exchange     string `json:"exchange,omitempty"`
	CommandQueue string `json:"commandQueue,omitempty"`
}

// ConnectionUrl prefers an explicit url and otherwise builds one from the
// broker settings, defaulting to a local guest connection.
func (c Configuration) ConnectionUrl() string {
	if c.Url != "" {
		return c.Url
	}
	if c.Username == "" {
		c.Username = "guest"
	}
	if c.Password == "" {
		c.Password = "guest"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5672
	}
	return "amqp://" + c.Username + ":" + c.Password + "@" + c.Host + ":" +
		strconv.Itoa(c.Port) + "/" + c.VirtualHost
}

func (c Configuration) ExchangeName() string {
	if c.Exchange == "" {
		return DefaultExchange
	}
	return c.Exchange
}

func (c Configuration) CommandQueueName() string {
	if c.CommandQueue == "" {
		return DefaultCommandQueue
	}
	return c.CommandQueue
}

func declareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
}
