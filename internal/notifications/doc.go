// Package notifications delivers sync health alerts via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled.
// Monitor watches refresh outcomes and publishes only on transitions: the
// first failure after a healthy sync and the first success after a failure.
//
// Extend this package if you need alternative transports; callers depend only
// on the Service interface.
package notifications
