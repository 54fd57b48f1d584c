package mqtt

import (
	"encoding/json"
	"fmt"
)

// maxPayloadSize matches common broker limits.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic.
//
// Retained messages are kept by the broker and delivered to new subscribers;
// use them for state topics, never for events.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishJSON marshals v and publishes it with the configured QoS.
func (c *Client) PublishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", ErrPublishFailed, err)
	}
	return c.Publish(topic, payload, byte(c.cfg.QoS), retained)
}

// PublishHueState publishes the retained state of one Hue resource on
// Topics.HueState. state is typically the encoded write payload.
func (c *Client) PublishHueState(bridge, rtype, id string, state any) error {
	for _, seg := range [][2]string{{"bridge", bridge}, {"rtype", rtype}, {"id", id}} {
		if err := validateSegment(seg[0], seg[1]); err != nil {
			return err
		}
	}
	return c.PublishJSON(Topics{}.HueState(bridge, rtype, id), state, true)
}
