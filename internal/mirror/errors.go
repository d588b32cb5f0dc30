// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Synchronization errors

package mirror

import "fmt"

// Op names the synchronization step that failed
type Op string

const (
	OpClone  Op = "clone"
	OpOpen   Op = "open"
	OpRemote Op = "remote"
	OpList   Op = "list"
	OpFetch  Op = "fetch"
	OpReset  Op = "reset"
	OpPrune  Op = "prune"
	OpPush   Op = "push"
)

// SyncError reports which step of which job failed
type SyncError struct {
	Job string
	Op  Op
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %s: %v", e.Job, e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
