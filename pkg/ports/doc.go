/*
Package ports defines the driven ports (interfaces) for the Stepwise engine.

These interfaces decouple the flow engine from external implementations,
allowing it to work with various login backends and storage media.

# Key Interfaces

  - Authenticator: The remote login call, treated as a black-box async operation.
  - StateStore: Responsible for persisting and loading a session's FilledData.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
