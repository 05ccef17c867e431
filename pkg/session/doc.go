/*
Package session implements session management and persistence orchestration.

The Manager serializes writers per session ID with a ref-counted local mutex and,
when configured, a distributed lock. Every read-modify-write of a planning session
(runner, HTTP, MCP) goes through Manager.Apply.
*/
package session
