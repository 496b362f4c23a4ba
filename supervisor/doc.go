// Package supervisor implements the commands a host application calls to run
// interpreter processes, and the hook it calls on exit.
//
// A Supervisor owns two registries:
//
//   - an anonymous set of background processes, killed only on shutdown
//   - a named table of singleton roles (server, executor), started
//     idempotently and queried for status
//
// Every operation is safe for concurrent use. Starting the same role from
// two goroutines launches at most one process.
//
// # Example Usage
//
//	sup, err := supervisor.New(config.Default())
//	if err != nil {
//	    return err
//	}
//	defer sup.Shutdown()
//
//	pid, err := sup.StartServer(ctx, "python", projectDir)
//	status := sup.ServerStatus() // {"is_running": true, "pid": "4242"}
package supervisor
