package main

import (
	"fmt"
	"os"
	"time"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
	"github.com/perpex/perpex/models"
	"github.com/perpex/perpex/mq_client"
	"github.com/perpex/perpex/orchestrator"
	"github.com/perpex/perpex/workers/engines"
)

func CreateWorker(id string, engine *matching.Engine, orch *orchestrator.OrderFlowOrchestrator) engines.Worker {
	switch id {
	case "matching":
		return engines.NewMatchingWorker(engine, orch)
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	if err := mq_client.Connect(); err != nil {
		fmt.Println(err.Error())
		return
	}

	markets := models.EnabledMarkets()
	if len(markets) == 0 {
		config.Logger.Error("No enabled markets, nothing to match")
		return
	}

	fees := make(map[string]matching.FeeConfig, len(markets))
	for _, market := range markets {
		fees[market.Symbol] = market.FeeConfig()
	}

	engine := matching.NewEngine(fees)

	orch := orchestrator.NewOrderFlowOrchestrator(engine, config.DataBase, orchestrator.NatsPositionUpdater{})
	orch.Start()

	Channel := mq_client.GetChannel()

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start perpex-engine: " + id)
		worker := CreateWorker(id, engine, orch)
		if worker == nil {
			config.Logger.Errorf("Unknown worker: %s", id)
			return
		}

		if matching_worker, ok := worker.(*engines.MatchingWorker); ok {
			if err := matching_worker.LoadOrders(); err != nil {
				config.Logger.Errorf("Failed to reload resting orders: %v", err)
				return
			}
		}

		prefetch := mq_client.GetPrefetchCount(id)

		if prefetch > 0 {
			Channel.Qos(prefetch, 0, false)
		}

		binding_queue := mq_client.GetBindingQueue(id)
		binding_exchange_id := mq_client.GetBindingExchangeId(id)
		exchange_name, exchange_kind := mq_client.GetExchange(binding_exchange_id)
		routing_key := mq_client.GetRoutingKey(id)

		if err := Channel.ExchangeDeclare(exchange_name, exchange_kind, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Exchange Declare: %v", err)
			return
		}
		if _, err := Channel.QueueDeclare(binding_queue.Name, binding_queue.Durable, false, false, false, nil); err != nil {
			config.Logger.Errorf("Queue Declare: %v", err)
			return
		}
		Channel.QueueBind(binding_queue.Name, routing_key, exchange_name, false, nil)

		sub, err := config.Nats.QueueSubscribeSync(id, binding_queue.Name)
		if err != nil {
			config.Logger.Errorf("Failed to subscribe %s: %v", id, err)
			return
		}

		for {
			m, err := sub.NextMsg(1 * time.Second)

			if err != nil {
				continue
			}

			if err := worker.Process(m.Data); err == nil {
				m.Ack()
			} else {
				config.Logger.Errorf("Worker error: %v", err.Error())
			}
		}
	}
}
