package hardware

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/usbwallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

var ErrNoDevice = errors.New("no hardware wallet found")

// Deriver derives an address at a BIP-32 path.
type Deriver interface {
	Derive(path accounts.DerivationPath) (common.Address, error)
}

// Prompter asks the user for a secret, eg a Trezor PIN.
type Prompter func(prompt string) (string, error)

// Device is an opened hardware wallet.
type Device struct {
	Kind   Kind
	wallet accounts.Wallet
}

func (d *Device) Derive(path accounts.DerivationPath) (common.Address, error) {
	acc, err := d.wallet.Derive(path, false)
	if err != nil {
		return common.Address{}, err
	}
	return acc.Address, nil
}

func (d *Device) URL() string {
	return d.wallet.URL().String()
}

func (d *Device) Close() error {
	return d.wallet.Close()
}

// Open finds the first device of kind and unlocks it. prompt is only used
// by Trezor for its PIN and passphrase.
func Open(kind Kind, prompt Prompter) (*Device, error) {
	switch kind {
	case Ledger:
		hub, err := usbwallet.NewLedgerHub()
		if err != nil {
			return nil, fmt.Errorf("can't establish communication channel to your ledger: %w", err)
		}
		w, err := first(hub)
		if err != nil {
			return nil, err
		}
		if err := w.Open(""); err != nil {
			return nil, fmt.Errorf("can't unlock your ledger: %w", err)
		}
		return &Device{Kind: Ledger, wallet: w}, nil
	case Trezor:
		return openTrezor(prompt)
	}
	return nil, fmt.Errorf("unsupported hardware wallet kind %q", kind)
}

func openTrezor(prompt Prompter) (*Device, error) {
	var w accounts.Wallet
	for _, newHub := range []func() (*usbwallet.Hub, error){
		usbwallet.NewTrezorHubWithWebUSB,
		usbwallet.NewTrezorHubWithHID,
	} {
		hub, err := newHub()
		if err != nil {
			log.Debug("Trezor hub unavailable", "err", err)
			continue
		}
		if w, err = first(hub); err == nil {
			break
		}
	}
	if w == nil {
		return nil, fmt.Errorf("trezor: %w", ErrNoDevice)
	}

	err := w.Open("")
	if errors.Is(err, usbwallet.ErrTrezorPINNeeded) {
		if prompt == nil {
			return nil, err
		}
		pin, perr := prompt("Enter the PIN shown on your trezor")
		if perr != nil {
			return nil, perr
		}
		err = w.Open(pin)
	}
	if errors.Is(err, usbwallet.ErrTrezorPassphraseNeeded) {
		if prompt == nil {
			return nil, err
		}
		pass, perr := prompt("Enter your trezor passphrase")
		if perr != nil {
			return nil, perr
		}
		err = w.Open(pass)
	}
	if err != nil {
		return nil, fmt.Errorf("can't unlock your trezor: %w", err)
	}
	return &Device{Kind: Trezor, wallet: w}, nil
}

func first(hub *usbwallet.Hub) (accounts.Wallet, error) {
	wallets := hub.Wallets()
	if len(wallets) == 0 {
		return nil, ErrNoDevice
	}
	return wallets[0], nil
}
