// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scene

import (
	"errors"
	"fmt"

	log "github.com/golang/glog"
)

// Per spec.md §7, the parser surfaces two error kinds to callers: I/O
// failures and unknown-branch-key references from a clone directive.
// Besides these, internalError (below) reports stack-machine invariant
// breaches. Decode and Truncation failures are recovered internally and
// never reach the caller.

// ErrIO is wrapped by errors returned when the scene or a gizmo file cannot
// be opened or read.
var ErrIO = errors.New("scene: i/o error")

// ErrUnknownBranch is wrapped by errors returned when a "clone $KEY {"
// directive names a branch key that was never saved with "set KEY [stack
// N]".
var ErrUnknownBranch = errors.New("scene: unknown branch key")

func ioError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %s", ErrIO, path, cause)
}

func referenceError(key string) error {
	return fmt.Errorf("%w: clone referenced undefined branch %q", ErrUnknownBranch, key)
}

// internalError reports a stack-machine invariant breach that should be
// impossible by construction (spec.md §4.6) -- e.g. end_group with no open
// scope, or a node closing with no enclosing scope. It is logged and
// returned as a plain error rather than aborting the process, since this is
// a library, not one of the teacher's batch command-line tools.
func internalError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	log.Errorf("scene: internal error: %s", msg)
	return fmt.Errorf("scene: internal error: %s", msg)
}
