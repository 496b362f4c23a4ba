// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package pathutil resolves the filesystem locations the supervisor needs:
// the application root directory and the interpreter executable.
//
// # Application root
//
// The desktop shell runs with its working directory two levels below the
// application root, so DevRoot walks up twice from the current directory:
//
//	root, err := pathutil.DevRoot()
//	if errors.Is(err, pathutil.ErrNoParent) {
//	    // working directory is too close to the filesystem root
//	}
//
// # Interpreter lookup
//
// ResolveInterpreter prefers a virtual environment or an embedded runtime
// inside the working directory over whatever is first in PATH:
//
//   - <dir>/.venv/bin/python (Scripts\python.exe on Windows)
//   - <dir>/venv/bin/python
//   - <dir>/python/python and <dir>/python/bin/python
//   - PATH lookup
//
// On Windows the .exe extension is appended automatically.
package pathutil
