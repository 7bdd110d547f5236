package state

// ModemConfig selects a predefined bandwidth/coding-rate/spreading
// factor profile for the radio.
type ModemConfig uint8

const (
	// ModemBw125Cr45Sf128 is medium range and fast.
	ModemBw125Cr45Sf128 ModemConfig = 0

	// ModemBw500Cr45Sf128 is short range and fast, but wide
	// bandwidth so incompatible radios can hear each other.
	ModemBw500Cr45Sf128 ModemConfig = 1

	// ModemBw31_25Cr48Sf512 is long range, alternate profile.
	ModemBw31_25Cr48Sf512 ModemConfig = 2

	// ModemBw125Cr48Sf4096 is slow and long range. The default.
	ModemBw125Cr48Sf4096 ModemConfig = 3
)

// String returns the profile name.
func (m ModemConfig) String() string {
	switch m {
	case ModemBw125Cr45Sf128:
		return "Bw125Cr45Sf128"
	case ModemBw500Cr45Sf128:
		return "Bw500Cr45Sf128"
	case ModemBw31_25Cr48Sf512:
		return "Bw31_25Cr48Sf512"
	case ModemBw125Cr48Sf4096:
		return "Bw125Cr48Sf4096"
	default:
		return "UNKNOWN"
	}
}

// RegionCode is the regulatory region the radio operates in.
type RegionCode uint8

const (
	// RegionUnset means no region has been chosen yet.
	RegionUnset RegionCode = 0
	// RegionUS is the United States.
	RegionUS RegionCode = 1
	// RegionEU433 is Europe, 433 MHz band.
	RegionEU433 RegionCode = 2
	// RegionEU865 is Europe, 865 MHz band.
	RegionEU865 RegionCode = 3
	// RegionCN is China.
	RegionCN RegionCode = 4
	// RegionJP is Japan.
	RegionJP RegionCode = 5
	// RegionANZ is Australia / New Zealand.
	RegionANZ RegionCode = 6
	// RegionKR is Korea.
	RegionKR RegionCode = 7
	// RegionTW is Taiwan.
	RegionTW RegionCode = 8
)

// String returns the region name.
func (r RegionCode) String() string {
	switch r {
	case RegionUnset:
		return "Unset"
	case RegionUS:
		return "US"
	case RegionEU433:
		return "EU433"
	case RegionEU865:
		return "EU865"
	case RegionCN:
		return "CN"
	case RegionJP:
		return "JP"
	case RegionANZ:
		return "ANZ"
	case RegionKR:
		return "KR"
	case RegionTW:
		return "TW"
	default:
		return "UNKNOWN"
	}
}

// RegionFromName returns the region code matching a legacy region
// name string ("EU433" etc), or RegionUnset if none matches. Old
// hardware strings looked like "1.0-EU433"; callers strip the prefix.
func RegionFromName(name string) RegionCode {
	for r := RegionUS; r <= RegionTW; r++ {
		if r.String() == name {
			return r
		}
	}
	return RegionUnset
}

// CriticalErrorCode classifies faults that should be reported to a
// companion application for analytics.
type CriticalErrorCode uint8

const (
	// ErrNone means no critical error has occurred this session.
	ErrNone CriticalErrorCode = 0
	// ErrTxWatchdog means the transmit watchdog fired.
	ErrTxWatchdog CriticalErrorCode = 1
	// ErrSleepEnterWait means entering sleep timed out.
	ErrSleepEnterWait CriticalErrorCode = 2
	// ErrNoRadio means the radio chip was not found.
	ErrNoRadio CriticalErrorCode = 3
	// ErrUnspecified is a catch-all fault.
	ErrUnspecified CriticalErrorCode = 4
	// ErrInvalidRadioSetting means persisted radio settings were
	// rejected by the hardware.
	ErrInvalidRadioSetting CriticalErrorCode = 5
	// ErrTransmitFailed means a transmit attempt failed outright.
	ErrTransmitFailed CriticalErrorCode = 6
	// ErrNodeTableFull means the node registry capacity invariant
	// was violated.
	ErrNodeTableFull CriticalErrorCode = 7
)

// String returns the error code name.
func (c CriticalErrorCode) String() string {
	switch c {
	case ErrNone:
		return "NONE"
	case ErrTxWatchdog:
		return "TX_WATCHDOG"
	case ErrSleepEnterWait:
		return "SLEEP_ENTER_WAIT"
	case ErrNoRadio:
		return "NO_RADIO"
	case ErrUnspecified:
		return "UNSPECIFIED"
	case ErrInvalidRadioSetting:
		return "INVALID_RADIO_SETTING"
	case ErrTransmitFailed:
		return "TRANSMIT_FAILED"
	case ErrNodeTableFull:
		return "NODE_TABLE_FULL"
	default:
		return "UNKNOWN"
	}
}
