package config

// Values bound to command line flags.
var (
	Verbosity  int
	ConfigFile string
	Network    string
	HostFile   string

	DeviceOS      string
	DeviceBrowser string
	DeviceType    string

	Wallet string

	HardwareKind string
	BasePath     string
	Assets       []string
	ScanChains   []string
	Concurrency  int
	GapLimit     int
	PageSize     int
	MaxAccounts  int
	FirstFunded  bool

	JSONOutput bool
)
