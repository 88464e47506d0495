// Package pubsub implements the channel registry behind PUBLISH and SUBSCRIBE.
//
// Channel names live in their own namespace, independent of store keys. A
// channel exists only while it has subscribers: it is created by the first
// Subscribe and removed when the last subscription leaves. Publishing to a
// channel without subscribers discards the message.
//
// Every subscription owns a bounded backlog. Publish never waits for a
// consumer. When a subscriber's backlog is full the broker drops that
// subscriber (its Messages channel is closed and Err returns ErrLagged) and
// keeps serving everybody else.
//
// Subscriptions reference the broker only through an unsubscribe closure, so
// a consumer can hold one without keeping any registry state alive.
package pubsub
