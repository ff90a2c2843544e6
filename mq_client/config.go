package mq_client

import (
	"os"

	"github.com/streadway/amqp"
	"gopkg.in/yaml.v2"
)

var AMQPCfg *MQClientConfig

func CreateAMQP() (*amqp.Connection, error) {
	if err := LoadConfig(); err != nil {
		return nil, err
	}

	rabbitmq_username := os.Getenv("RABBITMQ_USERNAME")
	rabbitmq_password := os.Getenv("RABBITMQ_PASSWORD")
	rabbitmq_host := os.Getenv("RABBITMQ_HOST")
	rabbitmq_port := os.Getenv("RABBITMQ_PORT")

	connection, err := amqp.Dial("amqp://" + rabbitmq_username + ":" + rabbitmq_password + "@" + rabbitmq_host + ":" + rabbitmq_port)
	if err != nil {
		return nil, err
	}

	return connection, nil
}

func LoadConfig() error {
	buf, err := os.ReadFile("config/amqp.yml")

	if err != nil {
		return err
	}

	c := &MQClientConfig{}

	if err := yaml.Unmarshal(buf, c); err != nil {
		return err
	}

	AMQPCfg = c

	return nil
}

func EventsExchange() (string, string) {
	return AMQPCfg.Exchange.Events.Name, AMQPCfg.Exchange.Events.Type
}

func GetExchange(id string) (string, string) {
	switch id {
	case "events":
		return AMQPCfg.Exchange.Events.Name, AMQPCfg.Exchange.Events.Type
	case "matching":
		return AMQPCfg.Exchange.Matching.Name, AMQPCfg.Exchange.Matching.Type
	default:
		return "", ""
	}
}

func GetBindingQueue(id string) Queue {
	switch id {
	case "matching":
		return AMQPCfg.Queue.Matching
	default:
		return Queue{}
	}
}

func GetBindingExchangeId(id string) string {
	switch id {
	case "matching":
		return AMQPCfg.Binding.Matching.Exchange
	default:
		return ""
	}
}

func GetRoutingKey(id string) string {
	switch id {
	case "matching":
		return AMQPCfg.Binding.Matching.RoutingKey
	default:
		return ""
	}
}

func GetPrefetchCount(id string) int {
	switch id {
	case "matching":
		return AMQPCfg.Channel.Matching.Prefetch
	default:
		return 0
	}
}
