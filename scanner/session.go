package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	Idle State = iota
	Fetching
	Accumulating
	BranchFailed
	Completed
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Accumulating:
		return "accumulating"
	case BranchFailed:
		return "branch failed"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Transition is reported to the session observer. Branch is nil for the
// terminal states.
type Transition struct {
	Session uuid.UUID
	State   State
	Branch  *Branch
	Err     error
}

type Option func(*Session)

// WithConcurrency bounds how many branches are fetched at once. Values below
// one mean one.
func WithConcurrency(n int) Option {
	return func(s *Session) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithObserver receives every state transition. Calls are serialized and
// made without the session lock held, so the observer may call State and
// Failures.
func WithObserver(fn func(Transition)) Option {
	return func(s *Session) { s.observer = fn }
}

// Session is one scan over the branches of a SelectAccountOptions. A session
// runs once.
type Session struct {
	ID uuid.UUID

	opts        SelectAccountOptions
	branches    []Branch
	concurrency int
	observer    func(Transition)

	// observerMu orders state changes with observer calls; mu guards the
	// fields below it.
	observerMu sync.Mutex

	mu       sync.Mutex
	state    State
	ran      bool
	failures []*BranchFetchError
}

func NewSession(opts SelectAccountOptions, options ...Option) (*Session, error) {
	if opts.ScanAccounts == nil {
		return nil, ErrNoFetcher
	}
	s := &Session{
		ID:          uuid.New(),
		opts:        opts,
		branches:    Branches(opts),
		concurrency: 1,
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

func (s *Session) Branches() []Branch {
	return append([]Branch(nil), s.branches...)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failures lists the branches that failed, in iteration order.
func (s *Session) Failures() []*BranchFetchError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*BranchFetchError(nil), s.failures...)
}

func (s *Session) transition(state State, b *Branch, err error) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	if s.observer != nil {
		s.observer(Transition{Session: s.ID, State: state, Branch: b, Err: err})
	}
}

type outcome struct {
	done     bool
	accounts []Account
	err      error
}

// Run fetches every branch and aggregates the results in iteration order,
// whatever order fetches complete in. A failing branch is recorded and
// skipped; only when every branch fails does Run return a *ScanFailedError.
//
// Cancelling ctx stops new fetches from starting. Fetches already running
// are awaited and their results dropped. Run then returns what completed
// before the cancellation together with an error wrapping ctx.Err(). That
// partial list is only available here; Scan passes it on but SelectAccounts
// does not offer it to the chooser.
func (s *Session) Run(ctx context.Context) (AccountsList, error) {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return AccountsList{}, fmt.Errorf("scan session %s already ran", s.ID)
	}
	s.ran = true
	s.mu.Unlock()

	logger := log.New("session", s.ID)
	outcomes := make([]outcome, len(s.branches))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range s.branches {
		if ctx.Err() != nil {
			break
		}
		b := s.branches[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s.transition(Fetching, &b, nil)
			accounts, err := s.opts.ScanAccounts(ctx, b.options())
			if ctx.Err() != nil {
				logger.Debug("Dropped in-flight branch", "branch", b)
				return nil
			}
			if err != nil {
				logger.Warn("Branch fetch failed", "branch", b, "err", err)
				outcomes[b.Index] = outcome{done: true, err: err}
				s.transition(BranchFailed, &b, err)
				return nil
			}
			outcomes[b.Index] = outcome{done: true, accounts: accounts}
			s.transition(Accumulating, &b, nil)
			return nil
		})
	}
	// branch errors are recorded in outcomes, never returned to the group
	_ = g.Wait()

	var (
		list     AccountsList
		failures []*BranchFetchError
	)
	for i, o := range outcomes {
		switch {
		case !o.done:
		case o.err != nil:
			failures = append(failures, &BranchFetchError{Branch: s.branches[i], Err: o.err})
		default:
			list.add(o.accounts...)
		}
	}
	s.mu.Lock()
	s.failures = failures
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.transition(Cancelled, nil, err)
		return list, fmt.Errorf("scan session %s cancelled: %w", s.ID, err)
	}
	if len(s.branches) > 0 && len(failures) == len(s.branches) {
		err := &ScanFailedError{Failures: failures}
		s.transition(Failed, nil, err)
		return AccountsList{}, err
	}
	logger.Debug("Scan completed", "branches", len(s.branches), "failed", len(failures), "accounts", len(list.All))
	s.transition(Completed, nil, nil)
	return list, nil
}

// Scan runs a fresh session over opts.
func Scan(ctx context.Context, opts SelectAccountOptions, options ...Option) (AccountsList, error) {
	s, err := NewSession(opts, options...)
	if err != nil {
		return AccountsList{}, err
	}
	return s.Run(ctx)
}
