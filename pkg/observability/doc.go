/*
Package observability turns engine lifecycle hooks into logs and Prometheus metrics.

Hook sets are plain domain.LifecycleHooks values, so they can be merged with Combine
and handed to the engine through a single option.
*/
package observability
