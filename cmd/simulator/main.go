package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/storewatch/store-uptime-monitor/internal/config"
)

type statusMsg struct {
	StoreID   string `json:"store_id"`
	Timestamp string `json:"timestamp_utc"`
	Status    string `json:"status"`
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	stores := make([]string, 5)
	for i := range stores {
		stores[i] = fmt.Sprintf("store-%03d", i+1)
	}

	for i := 0; i < 100; i++ {
		status := "active"
		if rand.Float64() < 0.2 {
			status = "inactive"
		}
		m := statusMsg{
			StoreID:   stores[rand.Intn(len(stores))],
			Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05.999999") + " UTC",
			Status:    status,
		}
		payload, _ := json.Marshal(m)
		token := client.Publish("stores/status", 0, false, payload)
		token.Wait()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
