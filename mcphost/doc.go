// Package mcphost exposes the supervisor commands as Model Context Protocol
// tools served over stdio.
//
// A host application (an editor, a desktop shell or an agent) connects to
// the pyhost process on stdin/stdout and invokes tools such as
// run_python_background or start_server. When the host closes the stream
// Serve returns and the caller runs the supervisor's shutdown hook.
package mcphost
