package eip1193

type Event string

const (
	EventConnect         Event = "connect"
	EventDisconnect      Event = "disconnect"
	EventMessage         Event = "message"
	EventChainChanged    Event = "chainChanged"
	EventAccountsChanged Event = "accountsChanged"
)

var Events = []Event{
	EventConnect,
	EventDisconnect,
	EventMessage,
	EventChainChanged,
	EventAccountsChanged,
}

func (e Event) Valid() bool {
	for _, known := range Events {
		if e == known {
			return true
		}
	}
	return false
}

type ProviderInfo struct {
	ChainID ChainID `json:"chainId"`
}

type ProviderMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Listener is one of the five typed listener funcs below.
type Listener interface {
	event() Event
}

type ConnectListener func(info ProviderInfo)
type DisconnectListener func(err *ProviderRpcError)
type MessageListener func(msg ProviderMessage)
type ChainListener func(chainID ChainID)
type AccountsListener func(accounts ProviderAccounts)

func (ConnectListener) event() Event    { return EventConnect }
func (DisconnectListener) event() Event { return EventDisconnect }
func (MessageListener) event() Event    { return EventMessage }
func (ChainListener) event() Event      { return EventChainChanged }
func (AccountsListener) event() Event   { return EventAccountsChanged }

// ListenerEvent reports the event kind a listener is typed for.
func ListenerEvent(l Listener) Event {
	return l.event()
}

// Emitter is the native event surface of a raw provider. Payloads are
// whatever the provider emits; the facade normalizes them.
type Emitter interface {
	Subscribe(event string, handler func(payload any)) (unsubscribe func())
}

// Disconnecter is implemented by raw providers that can drop their
// connection.
type Disconnecter interface {
	Disconnect() error
}
