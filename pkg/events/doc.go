// Package events publishes game events from the device to a message bus
// (MQTT or NATS) so monitors can follow a game without touching the
// serial link.
package events

// Events are encoded as protobuf GameEvent messages and published on
//
//	MQTT: <topic-prefix><device-id>/events
//	NATS: <subject-prefix>.<device-id>.events
//
// Publishing is fire-and-forget: the device never waits for the broker.
