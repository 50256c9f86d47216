package rundb

import "errors"

// ErrNotFound means the targeted run or score row does not exist.
var ErrNotFound = errors.New("run not found")
