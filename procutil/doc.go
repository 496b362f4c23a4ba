// Package procutil provides the OS process primitives used by the supervisor.
//
// It offers a Handle abstraction over a spawned child process with three
// operations: reading the OS process identifier, a non-blocking status probe,
// and an unconditional terminate. Liveness is answered with
// github.com/shirou/gopsutil so the same checks work on Windows, macOS,
// Linux and the BSDs without the stale-PID problems of os.FindProcess +
// Signal(0) on Windows.
//
// # Probe outcomes
//
// A probe yields one of three states:
//
//   - StateRunning: the child has not exited
//   - StateExited: the child has exited (exit code recorded when known)
//   - StateUnknown: the OS query itself failed
//
// Callers decide how to treat StateUnknown. The registry treats it as
// running so that a role whose true state cannot be determined is never
// launched twice.
//
// # Example Usage
//
//	cmd := exec.Command("python", "-m", "server")
//	procutil.ConfigureSysProcAttr(cmd)
//	p, err := procutil.Start(cmd)
//	if err != nil {
//	    return err
//	}
//	if p.Probe().State == procutil.StateRunning {
//	    _ = p.Terminate()
//	}
//
// # Platform behaviour
//
// On Unix the child is placed in its own process group and Terminate sends
// SIGKILL to the whole group. On Windows the child is created without a
// console window and Terminate kills the direct child only.
package procutil
