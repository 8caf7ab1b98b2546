// Package hardware talks to Ledger and Trezor devices: detection, address
// derivation and the account fetcher the scanner drives.
package hardware

import (
	"fmt"

	"github.com/karalabe/usb"
)

type Kind string

const (
	Ledger Kind = "ledger"
	Trezor Kind = "trezor"
)

type usbID struct {
	kind       Kind
	vendor     uint16
	products   []uint16
	usageID    uint16
	endpointID int
}

var knownDevices = []usbID{
	{
		kind:   Ledger,
		vendor: 0x2c97,
		products: []uint16{
			0x0000, 0x0001, 0x0004, 0x0005, 0x0006,
			0x0015, 0x1015, 0x4015, 0x5015, 0x6015,
			0x0011, 0x1011, 0x4011, 0x5011, 0x6011,
		},
		usageID: 0xffa0,
	},
	{kind: Trezor, vendor: 0x534c, products: []uint16{0x0001}, usageID: 0xff00},
	// no usage id on webusb
	{kind: Trezor, vendor: 0x1209, products: []uint16{0x53c1}, usageID: 0xffff},
}

// DeviceInfo is a wallet device seen on the bus.
type DeviceInfo struct {
	Kind         Kind
	Product      string
	Manufacturer string
	VendorID     uint16
	ProductID    uint16
	Path         string
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (%04x:%04x)", d.Kind, d.Product, d.VendorID, d.ProductID)
}

// Detect enumerates the USB bus for known wallet devices.
func Detect() ([]DeviceInfo, error) {
	if !usb.Supported() {
		return nil, fmt.Errorf("usb is not supported on this platform")
	}
	devices := []DeviceInfo{}
	for _, known := range knownDevices {
		infos, err := usb.Enumerate(known.vendor, 0)
		if err != nil {
			return devices, fmt.Errorf("enumerate %s devices: %w", known.kind, err)
		}
		for _, info := range infos {
			if !known.matches(info) {
				continue
			}
			devices = append(devices, DeviceInfo{
				Kind:         known.kind,
				Product:      info.Product,
				Manufacturer: info.Manufacturer,
				VendorID:     info.VendorID,
				ProductID:    info.ProductID,
				Path:         info.Path,
			})
		}
	}
	return devices, nil
}

// matches mirrors how the OS exposes the device: Windows and macOS match
// the usage page, Linux the interface.
func (k usbID) matches(info usb.DeviceInfo) bool {
	for _, id := range k.products {
		if info.ProductID == id && (info.UsagePage == k.usageID || info.Interface == k.endpointID) {
			return true
		}
	}
	return false
}
