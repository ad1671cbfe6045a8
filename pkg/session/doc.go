// Package session binds one form instance together: the field registry, the
// step controller, the latest aggregate snapshot, and the submit coordinator.
// A Session serialises every operation with a mutex; a Store keeps sessions
// in memory and drops them after an idle timeout. Nothing is persisted.
package session
