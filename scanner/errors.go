package scanner

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoFetcher = errors.New("scan accounts fetcher is required")

// BranchFetchError is a fetcher failure on one branch.
type BranchFetchError struct {
	Branch Branch
	Err    error
}

func (e *BranchFetchError) Error() string {
	return fmt.Sprintf("branch %s: %s", e.Branch, e.Err)
}

func (e *BranchFetchError) Unwrap() error { return e.Err }

// ScanFailedError is returned only when every branch failed.
type ScanFailedError struct {
	Failures []*BranchFetchError
}

func (e *ScanFailedError) Error() string {
	causes := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		causes = append(causes, f.Error())
	}
	return fmt.Sprintf("scan failed on all %d branches: %s", len(e.Failures), strings.Join(causes, "; "))
}

func (e *ScanFailedError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f)
	}
	return out
}
