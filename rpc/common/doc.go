// Package common provides the configuration structures and the logging setup
// shared by the rKV server, client, and command line tools.
//
// Key Components:
//
//   - ServerConfig: settings of a single node (listen endpoint, idle timeout,
//     append-only log, subscriber backlog, metrics endpoint, socket options).
//
//   - ClientConfig: settings used when dialing nodes (endpoints, timeouts,
//     retry behavior, socket options).
//
//   - SentinelConfig: settings of the failover monitor (primary, replicas,
//     check interval, probe timeout).
//
//   - Logger: custom logging implementation plugged into Dragonboat's logger
//     package. Every rKV package obtains its logger with logger.GetLogger(name)
//     and InitLoggers sets the level of all of them at once.
package common
