package scanner

import (
	"context"
	"errors"
	"fmt"
)

var ErrNothingSelected = errors.New("no account selected")

// Chooser picks accounts out of a scan result, typically by asking the user.
type Chooser interface {
	Choose(ctx context.Context, list AccountsList, icon string) ([]Account, error)
}

type ChooserFunc func(ctx context.Context, list AccountsList, icon string) ([]Account, error)

func (f ChooserFunc) Choose(ctx context.Context, list AccountsList, icon string) ([]Account, error) {
	return f(ctx, list, icon)
}

// SelectAccounts scans and hands the result to c. A partially failed scan is
// still offered; a failed or cancelled scan stops here and returns no
// accounts, even when some branches completed before the cancellation. Use
// Session.Run to keep that partial list.
func SelectAccounts(ctx context.Context, opts SelectAccountOptions, c Chooser, options ...Option) ([]Account, error) {
	list, err := Scan(ctx, opts, options...)
	if err != nil {
		return nil, err
	}
	selected, err := c.Choose(ctx, list, opts.WalletIcon)
	if err != nil {
		return nil, fmt.Errorf("choose account: %w", err)
	}
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	return selected, nil
}

// FirstFunded chooses the first funded account, or the first account when
// none is funded.
var FirstFunded = ChooserFunc(func(_ context.Context, list AccountsList, _ string) ([]Account, error) {
	if len(list.Filtered) > 0 {
		return list.Filtered[:1], nil
	}
	if len(list.All) > 0 {
		return list.All[:1], nil
	}
	return nil, nil
})
