// Package mqtt provides the MQTT client homecontrol core uses as its event bus.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained online/offline status and a Last Will on homecontrol/system/status
//   - Publishing Hue resource state on homecontrol/state/hue/{bridge}/{rtype}/{id}
//   - Subscriptions that survive reconnects
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllStates(), 1,
//	    func(topic string, payload []byte) error {
//	        st, ok := mqtt.ParseStateTopic(topic)
//	        ...
//	    })
//
//	client.PublishHueState("upstairs", "light", id, mapping.Encode(obj))
//
// Tests that need a broker are behind the integration build tag:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...
package mqtt
