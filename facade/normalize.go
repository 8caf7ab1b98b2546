package facade

import (
	"encoding/json"
	"fmt"

	"github.com/tranvictor/walletkit/eip1193"
)

// Normalize adapts a native event payload to the canonical shape of event:
// ProviderInfo, *ProviderRpcError, ProviderMessage, ChainID or
// ProviderAccounts.
func Normalize(event eip1193.Event, payload any) (any, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", event, err)
		}
		payload = v
	}
	switch event {
	case eip1193.EventConnect:
		return connectInfo(payload)
	case eip1193.EventDisconnect:
		return disconnectError(payload), nil
	case eip1193.EventMessage:
		return message(payload)
	case eip1193.EventChainChanged:
		return eip1193.NormalizeChainID(payload)
	case eip1193.EventAccountsChanged:
		return accounts(payload)
	}
	return nil, fmt.Errorf("unknown event %q", event)
}

func connectInfo(payload any) (eip1193.ProviderInfo, error) {
	switch p := payload.(type) {
	case eip1193.ProviderInfo:
		id, err := eip1193.NormalizeChainID(p.ChainID)
		return eip1193.ProviderInfo{ChainID: id}, err
	case *eip1193.ProviderInfo:
		if p == nil {
			return eip1193.ProviderInfo{}, fmt.Errorf("nil connect info")
		}
		return connectInfo(*p)
	case map[string]any:
		id, err := eip1193.NormalizeChainID(p["chainId"])
		return eip1193.ProviderInfo{ChainID: id}, err
	}
	// some wallets emit the bare chain id
	id, err := eip1193.NormalizeChainID(payload)
	if err != nil {
		return eip1193.ProviderInfo{}, fmt.Errorf("connect payload: %w", err)
	}
	return eip1193.ProviderInfo{ChainID: id}, nil
}

// disconnectError never fails: anything unrecognised becomes a plain 4900.
func disconnectError(payload any) *eip1193.ProviderRpcError {
	switch p := payload.(type) {
	case nil:
		return eip1193.NewDisconnectedError("")
	case eip1193.ProviderRpcError:
		return &p
	case error:
		if perr, ok := eip1193.AsRpcError(p); ok {
			return perr
		}
		return eip1193.NewDisconnectedError(p.Error())
	case map[string]any:
		out := eip1193.NewDisconnectedError("")
		if code, ok := p["code"].(float64); ok {
			out.Code = int(code)
		}
		if code, ok := p["code"].(int); ok {
			out.Code = code
		}
		if msg, ok := p["message"].(string); ok && msg != "" {
			out.Message = msg
		}
		out.Data = p["data"]
		return out
	case string:
		return eip1193.NewDisconnectedError(p)
	}
	return eip1193.NewDisconnectedError(fmt.Sprint(payload))
}

func message(payload any) (eip1193.ProviderMessage, error) {
	switch p := payload.(type) {
	case eip1193.ProviderMessage:
		return p, nil
	case *eip1193.ProviderMessage:
		if p == nil {
			return eip1193.ProviderMessage{}, fmt.Errorf("nil message")
		}
		return *p, nil
	case map[string]any:
		typ, _ := p["type"].(string)
		if typ == "" {
			return eip1193.ProviderMessage{}, fmt.Errorf("message without type")
		}
		return eip1193.ProviderMessage{Type: typ, Data: p["data"]}, nil
	}
	return eip1193.ProviderMessage{}, fmt.Errorf("unsupported message payload %T", payload)
}

func accounts(payload any) (eip1193.ProviderAccounts, error) {
	switch p := payload.(type) {
	case nil:
		return eip1193.ProviderAccounts{}, nil
	case []string:
		return append(eip1193.ProviderAccounts{}, p...), nil
	case string:
		// single address wallets
		return eip1193.ProviderAccounts{p}, nil
	case []any:
		out := make(eip1193.ProviderAccounts, 0, len(p))
		for i, a := range p {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("account %d is %T, not a string", i, a)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported accounts payload %T", payload)
}
