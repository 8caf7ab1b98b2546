package rpcprovider

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/walletkit/eip1193"
)

type rejectedError struct{}

func (rejectedError) Error() string  { return "user said no" }
func (rejectedError) ErrorCode() int { return eip1193.CodeRejectedRequest }
func (rejectedError) ErrorData() any { return map[string]any{"reason": "test"} }

type ethService struct {
	mu       sync.Mutex
	chainID  uint64
	accounts []string
}

func (s *ethService) ChainId() hexutil.Uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hexutil.Uint64(s.chainID)
}

func (s *ethService) Accounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.accounts...)
}

func (s *ethService) GetBalance(addr string, block string) string {
	return addr + "@" + block
}

func (s *ethService) Sign(string, string) (string, error) {
	return "", rejectedError{}
}

func (s *ethService) set(chainID uint64, accounts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chainID = chainID
	s.accounts = accounts
}

func newTestProvider(t *testing.T, svc *ethService) *Provider {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	p := New(rpc.DialInProc(server))
	t.Cleanup(func() {
		p.Disconnect()
		server.Stop()
	})
	return p
}

func TestRequestForwardsPositionalParams(t *testing.T) {
	p := newTestProvider(t, &ethService{chainID: 1})

	res, err := p.Request(context.Background(), eip1193.RequestArguments{
		Method: eip1193.MethodGetBalance,
		Params: eip1193.BalanceParams("0xabc", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"0xabc@latest"`), res)

	res, err = p.Request(context.Background(), eip1193.RequestArguments{
		Method: eip1193.MethodGetBalance,
		Params: []string{"0xdef", "pending"},
	})
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"0xdef@pending"`), res)

	id, err := eip1193.ChainIDOf(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "0x1", id)
}

func TestNodeErrorsKeepTheirCode(t *testing.T) {
	p := newTestProvider(t, &ethService{})

	_, err := p.Request(context.Background(), eip1193.RequestArguments{
		Method: eip1193.MethodSign,
		Params: eip1193.SignMessageParams("0xabc", "0x00"),
	})
	require.Error(t, err)
	perr, ok := eip1193.AsRpcError(err)
	require.True(t, ok)
	assert.Equal(t, eip1193.CodeRejectedRequest, perr.Code)
	assert.Equal(t, "user said no", perr.Message)
	assert.ErrorIs(t, err, eip1193.ErrRejectedRequest)
}

func TestWatchEmitsConnectAndChanges(t *testing.T) {
	svc := &ethService{chainID: 1, accounts: []string{"0xa"}}
	p := newTestProvider(t, svc)

	events := make(chan any, 8)
	for _, e := range []eip1193.Event{eip1193.EventConnect, eip1193.EventChainChanged, eip1193.EventAccountsChanged} {
		p.Subscribe(string(e), func(payload any) { events <- payload })
	}

	p.Watch(context.Background(), 10*time.Millisecond)
	assert.Equal(t, eip1193.ProviderInfo{ChainID: "0x1"}, next(t, events))

	// a poll may straddle the change, so the two events can come in
	// either order
	svc.set(56, "0xa", "0xb")
	got := []any{next(t, events), next(t, events)}
	assert.ElementsMatch(t, []any{"0x38", eip1193.ProviderAccounts{"0xa", "0xb"}}, got)
}

func TestDisconnect(t *testing.T) {
	p := newTestProvider(t, &ethService{chainID: 1})

	got := make(chan any, 1)
	p.Subscribe(string(eip1193.EventDisconnect), func(payload any) { got <- payload })

	require.NoError(t, p.Disconnect())
	perr, ok := next(t, got).(*eip1193.ProviderRpcError)
	require.True(t, ok)
	assert.Equal(t, eip1193.CodeDisconnected, perr.Code)

	_, err := p.Request(context.Background(), eip1193.RequestArguments{Method: eip1193.MethodChainID})
	assert.ErrorIs(t, err, eip1193.ErrDisconnected)
	assert.NoError(t, p.Disconnect())
}

func next(t *testing.T, ch <-chan any) any {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSubscribeAfterStopIsInert(t *testing.T) {
	e := NewEmitter()
	e.Stop()

	fired := make(chan any, 1)
	unsubscribe := e.Subscribe(string(eip1193.EventConnect), func(payload any) { fired <- payload })
	require.NotNil(t, unsubscribe)
	e.Emit(eip1193.EventConnect, eip1193.ProviderInfo{ChainID: "0x1"})
	unsubscribe()

	select {
	case v := <-fired:
		t.Fatalf("stopped emitter delivered %v", v)
	case <-time.After(20 * time.Millisecond):
	}
}
