package rpcprovider

import (
	"context"
	"slices"
	"time"

	"github.com/tranvictor/walletkit/eip1193"
)

const DefaultPollInterval = 4 * time.Second

type watchState struct {
	connected bool
	chainID   eip1193.ChainID
	accounts  eip1193.ProviderAccounts
	polled    bool
}

// Watch polls the node for its chain id and accounts until ctx is done or
// the provider disconnects. The first successful poll emits connect; later
// changes emit chainChanged and accountsChanged; a poll failure after being
// connected emits disconnect. Watch only runs once per provider.
func (p *Provider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p.mu.Lock()
	if p.closed || p.stop != nil {
		p.mu.Unlock()
		return
	}
	ctx, stop := context.WithCancel(ctx)
	p.stop = stop
	p.watched = make(chan struct{})
	watched := p.watched
	p.mu.Unlock()

	go func() {
		defer close(watched)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var st watchState
		p.poll(ctx, &st)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx, &st)
			}
		}
	}()
}

func (p *Provider) poll(ctx context.Context, st *watchState) {
	id, err := eip1193.ChainIDOf(ctx, p)
	if err == nil {
		id, err = eip1193.NormalizeChainID(id)
	}
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Debug("Chain id poll failed", "err", err)
		if st.connected {
			st.connected = false
			p.emit(eip1193.EventDisconnect, eip1193.NewDisconnectedError(err.Error()))
		}
		return
	}
	if !st.connected {
		st.connected = true
		p.emit(eip1193.EventConnect, eip1193.ProviderInfo{ChainID: id})
	} else if id != st.chainID {
		p.emit(eip1193.EventChainChanged, id)
	}
	st.chainID = id

	// nodes without accounts answer eth_accounts with an error or an empty
	// list; either way there is nothing to report
	accounts, err := eip1193.Accounts(ctx, p)
	if err != nil || ctx.Err() != nil {
		return
	}
	if st.polled && !slices.Equal(accounts, st.accounts) {
		p.emit(eip1193.EventAccountsChanged, accounts)
	}
	st.accounts = accounts
	st.polled = true
}
