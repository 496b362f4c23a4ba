// Package registry tracks spawned child processes for the supervisor.
//
// Two registries are provided:
//
//   - AnonymousSet: an append-only list of handles for fire-and-forget
//     background launches. It only supports Add and KillAll.
//   - NamedTable: at most one handle per role name for singleton services.
//     IsRunning reconciles against the OS and removes entries whose process
//     has exited, so the table never reports a dead process as present.
//
// Both registries are in-memory only and hold their lock for the map or slice
// mutation and the non-blocking probe. They never spawn or wait on a process
// while locked.
package registry
