/*
Package session implements session management and persistence orchestration.

A Manager serializes access to a session's stored FilledData across goroutines
(per-session reference-counted locks) and, when given a ports.DistributedLocker,
across replicas. AutoSave keeps the store in step with a running engine.
*/
package session
