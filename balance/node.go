// Package balance reads native and ERC-20 balances from a set of nodes,
// taking the first node that answers.
package balance

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const TIMEOUT time.Duration = 4 * time.Second

const erc20ABIJSON = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"}
]`

var erc20ABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic(err)
	}
	return a
}()

// node dials lazily on first use.
type node struct {
	name string
	url  string

	mu        sync.Mutex
	client    *rpc.Client
	ethClient *ethclient.Client
}

func newNode(name, url string) *node {
	return &node{name: name, url: url}
}

func newNodeFromClient(name string, client *rpc.Client) *node {
	return &node{name: name, client: client, ethClient: ethclient.NewClient(client)}
}

func (n *node) eth(ctx context.Context) (*ethclient.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ethClient != nil {
		return n.ethClient, nil
	}
	client, err := rpc.DialContext(ctx, n.url)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", n.name, err)
	}
	n.client = client
	n.ethClient = ethclient.NewClient(client)
	return n.ethClient, nil
}

func (n *node) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		n.client.Close()
	}
	n.client = nil
	n.ethClient = nil
}

func (n *node) nativeBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	ethcli, err := n.eth(ctx)
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	return ethcli.BalanceAt(timeout, address, nil)
}

func (n *node) call(ctx context.Context, token common.Address, method string, args ...any) ([]any, error) {
	ethcli, err := n.eth(ctx)
	if err != nil {
		return nil, err
	}
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	out, err := ethcli.CallContract(timeout, ethereum.CallMsg{
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, err
	}
	return erc20ABI.Unpack(method, out)
}

func (n *node) tokenBalance(ctx context.Context, token, address common.Address) (*big.Int, error) {
	res, err := n.call(ctx, token, "balanceOf", address)
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("balanceOf returned %d values", len(res))
	}
	v, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", res[0])
	}
	return v, nil
}
