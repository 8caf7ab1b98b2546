package eip1193

import (
	"context"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// The helpers below are the typed face of the request union: each one builds
// the arguments for its method and decodes the result into the method's
// result type.

func Accounts(ctx context.Context, r Requester) (ProviderAccounts, error) {
	res, err := r.Request(ctx, RequestArguments{Method: MethodAccounts})
	if err != nil {
		return nil, err
	}
	return Decode[ProviderAccounts](res)
}

func RequestAccounts(ctx context.Context, r Requester) (ProviderAccounts, error) {
	res, err := r.Request(ctx, RequestArguments{Method: MethodRequestAccounts})
	if err != nil {
		return nil, err
	}
	return Decode[ProviderAccounts](res)
}

func ChainIDOf(ctx context.Context, r Requester) (ChainID, error) {
	res, err := r.Request(ctx, RequestArguments{Method: MethodChainID})
	if err != nil {
		return "", err
	}
	return Decode[ChainID](res)
}

func GetBalance(ctx context.Context, r Requester, address, block string) (Balance, error) {
	res, err := r.Request(ctx, RequestArguments{
		Method: MethodGetBalance,
		Params: BalanceParams(address, block),
	})
	if err != nil {
		return "", err
	}
	return Decode[Balance](res)
}

func SignTransaction(ctx context.Context, r Requester, tx TransactionObject) (string, error) {
	res, err := r.Request(ctx, RequestArguments{
		Method: MethodSignTransaction,
		Params: SignTransactionParams(tx),
	})
	if err != nil {
		return "", err
	}
	return Decode[string](res)
}

func Sign(ctx context.Context, r Requester, address, message string) (string, error) {
	res, err := r.Request(ctx, RequestArguments{
		Method: MethodSign,
		Params: SignMessageParams(address, message),
	})
	if err != nil {
		return "", err
	}
	return Decode[string](res)
}

func SignTypedData(ctx context.Context, r Requester, address string, data apitypes.TypedData) (string, error) {
	res, err := r.Request(ctx, RequestArguments{
		Method: MethodSignTypedData,
		Params: SignTypedDataParams(address, data),
	})
	if err != nil {
		return "", err
	}
	return Decode[string](res)
}

func SwitchChain(ctx context.Context, r Requester, chainID ChainID) error {
	_, err := r.Request(ctx, RequestArguments{
		Method: MethodSwitchChain,
		Params: SwitchChainParamsList(chainID),
	})
	return err
}

func AddChain(ctx context.Context, r Requester, params AddChainParams) error {
	_, err := r.Request(ctx, RequestArguments{
		Method: MethodAddChain,
		Params: AddChainParamsList(params),
	})
	return err
}
