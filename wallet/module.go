// Package wallet defines the contract between wallet modules and the
// discovery and facade layers.
package wallet

import (
	"context"

	"github.com/tranvictor/walletkit/chains"
	"github.com/tranvictor/walletkit/device"
	"github.com/tranvictor/walletkit/eip1193"
	"github.com/tranvictor/walletkit/host"
	"github.com/tranvictor/walletkit/identity"
	"github.com/tranvictor/walletkit/patch"
)

// Interface is what a module hands back: the raw provider plus the patch
// that makes it conform.
type Interface struct {
	Provider eip1193.Requester
	// Emitter is optional; when nil the provider itself is checked for
	// an emitter.
	Emitter eip1193.Emitter
	Patch   patch.Patch
}

type RecommendedWallet struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type AppMetadata struct {
	Name                       string              `yaml:"name" json:"name"`
	Icon                       string              `yaml:"icon" json:"icon"`
	Description                string              `yaml:"description" json:"description,omitempty"`
	GettingStartedGuide        string              `yaml:"gettingStartedGuide" json:"gettingStartedGuide,omitempty"`
	Explore                    string              `yaml:"explore" json:"explore,omitempty"`
	RecommendedInjectedWallets []RecommendedWallet `yaml:"recommendedInjectedWallets" json:"recommendedInjectedWallets,omitempty"`
}

// GetInterfaceHelpers is passed to Module.Interface.
type GetInterfaceHelpers struct {
	Chains      []chains.Chain
	AppMetadata *AppMetadata
	Device      device.Device
	// Object is the injected object the module was matched against; nil for
	// modules that are not injected.
	Object *host.Object
}

type Module interface {
	Label() string
	Icon(ctx context.Context) (string, error)
	Interface(ctx context.Context, helpers GetInterfaceHelpers) (*Interface, error)
}

// InjectedModule is a module that lives in a host global slot.
type InjectedModule interface {
	Module
	Namespace() string
	Platforms() []device.Platform
	CheckIdentity(s identity.Snapshot, d device.Device) bool
}
