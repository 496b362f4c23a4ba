// Package cliout formats command output for the pyhost CLI.
//
// Output goes to os.Stdout unless redirected with SetOutput. Colors are used
// only when the writer is a terminal (detected with golang.org/x/term) and
// NO_COLOR is unset; ForceColor and NoColor override the detection.
//
//	cliout.Success("server started (pid %s)", pid)
//	cliout.Label("Log", path)
//
// With SetFormat("json"), Print marshals its data argument instead of
// calling the text formatter:
//
//	_ = cliout.Print(status, func() {
//	    cliout.Label("Running", cliout.Status("running"))
//	})
package cliout
