// Copyright 2016 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package weave

import (
	"syscall"
)

const (
	// Errors corresponding to kernel error numbers. These are the errors
	// the fabric itself reports, except that MethodPort.Call returns the
	// context's error when its context is done first; method handlers may
	// return anything, and their errors are propagated verbatim.
	EINVAL    = syscall.EINVAL
	EEXIST    = syscall.EEXIST
	EALREADY  = syscall.EALREADY
	EBUSY     = syscall.EBUSY
	ENOMEM    = syscall.ENOMEM
	ENOSPC    = syscall.ENOSPC
	ENOENT    = syscall.ENOENT
	ETIMEDOUT = syscall.ETIMEDOUT
	EAGAIN    = syscall.EAGAIN
)
