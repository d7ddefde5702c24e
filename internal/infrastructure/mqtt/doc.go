// Package mqtt publishes light state to an MQTT broker.
//
// When enabled, every successful light operation is mirrored to a retained
// state topic so home-automation setups can follow changes made from the
// command line:
//
//	<prefix>/light/<light-slug>/state   retained, JSON light state
//	<prefix>/invocation                 not retained, JSON invocation summary
//
// The client is short-lived: one connection per CLI invocation, bounded
// connect and publish timeouts, no reconnection loop.
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.NewTopics(cfg.MQTT.TopicPrefix).LightState("Key Light Left")
//	err = client.PublishRetained(topic, payload)
//
// TLS is used when cfg.Broker.TLS is set. Credentials are never logged.
package mqtt
