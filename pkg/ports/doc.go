/*
Package ports defines the driven ports (interfaces) for the voyage engine.

These interfaces decouple the pipeline from external implementations, allowing
the engine to work with different collaborators and storage backends.

# Key Interfaces

  - Extractor, Discoverer, LogisticsSource, Composer: the external collaborators
    reached from the pipeline stages.
  - SessionStore: persists and loads SessionState.
  - DistributedLocker: coordinates concurrent session access across replicas.
  - StatelessEngine: the (state, input) -> state core consumed by the HTTP and MCP adapters.
*/
package ports
