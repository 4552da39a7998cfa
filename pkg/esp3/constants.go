package esp3

// Serial protocol framing (EnOceanSerialProtocol3.pdf)
const (
	SyncByte = 0x55

	// Header layout after the sync byte: data length (2 bytes, big-endian),
	// optional length (1 byte), packet type (1 byte), CRC8 over those four.
	HeaderSize = 4

	MaxDataLength     = 0xFFFF
	MaxOptionalLength = 0xFF
)

// PacketType identifies an ESP3 packet class
type PacketType byte

const (
	PacketTypeReserved        PacketType = 0x00
	PacketTypeRadioERP1       PacketType = 0x01
	PacketTypeResponse        PacketType = 0x02
	PacketTypeRadioSubTel     PacketType = 0x03
	PacketTypeEvent           PacketType = 0x04
	PacketTypeCommonCommand   PacketType = 0x05
	PacketTypeSmartAckCommand PacketType = 0x06
	PacketTypeRemoteManCmd    PacketType = 0x07
	PacketTypeRadioMessage    PacketType = 0x09
	PacketTypeRadioERP2       PacketType = 0x0A
)

// String returns the packet type name
func (pt PacketType) String() string {
	switch pt {
	case PacketTypeRadioERP1:
		return "RADIO_ERP1"
	case PacketTypeResponse:
		return "RESPONSE"
	case PacketTypeRadioSubTel:
		return "RADIO_SUB_TEL"
	case PacketTypeEvent:
		return "EVENT"
	case PacketTypeCommonCommand:
		return "COMMON_COMMAND"
	case PacketTypeSmartAckCommand:
		return "SMART_ACK_COMMAND"
	case PacketTypeRemoteManCmd:
		return "REMOTE_MAN_COMMAND"
	case PacketTypeRadioMessage:
		return "RADIO_MESSAGE"
	case PacketTypeRadioERP2:
		return "RADIO_ERP2"
	default:
		return "UNKNOWN"
	}
}

// RORG is the radio telegram organization byte, the first byte of ERP1 data
type RORG byte

const (
	RORGRPS    RORG = 0xF6 // Repeated switch (rocker)
	RORGBS1    RORG = 0xD5 // 1-byte sensor
	RORGBS4    RORG = 0xA5 // 4-byte sensor
	RORGVLD    RORG = 0xD2 // Variable length data
	RORGMSC    RORG = 0xD1 // Manufacturer specific
	RORGSignal RORG = 0xD0 // Device health/status messages
	RORGUTE    RORG = 0xD4 // Universal teach-in
	RORGADT    RORG = 0xA6 // Addressed telegram
	RORGSec    RORG = 0x30
)

// String returns the RORG short name
func (r RORG) String() string {
	switch r {
	case RORGRPS:
		return "RPS"
	case RORGBS1:
		return "1BS"
	case RORGBS4:
		return "4BS"
	case RORGVLD:
		return "VLD"
	case RORGMSC:
		return "MSC"
	case RORGSignal:
		return "SIGNAL"
	case RORGUTE:
		return "UTE"
	case RORGADT:
		return "ADT"
	default:
		return "UNKNOWN"
	}
}

// ReturnCode is the first byte of a RESPONSE packet
type ReturnCode byte

const (
	ReturnCodeOK             ReturnCode = 0x00
	ReturnCodeError          ReturnCode = 0x01
	ReturnCodeNotSupported   ReturnCode = 0x02
	ReturnCodeWrongParam     ReturnCode = 0x03
	ReturnCodeDenied         ReturnCode = 0x04
	ReturnCodeLockSet        ReturnCode = 0x05
	ReturnCodeBufferTooSmall ReturnCode = 0x06
	ReturnCodeNoFreeBuffer   ReturnCode = 0x07
)

// String returns the return code name
func (rc ReturnCode) String() string {
	switch rc {
	case ReturnCodeOK:
		return "OK"
	case ReturnCodeError:
		return "ERROR"
	case ReturnCodeNotSupported:
		return "NOT_SUPPORTED"
	case ReturnCodeWrongParam:
		return "WRONG_PARAM"
	case ReturnCodeDenied:
		return "OPERATION_DENIED"
	case ReturnCodeLockSet:
		return "LOCK_SET"
	case ReturnCodeBufferTooSmall:
		return "BUFFER_TOO_SMALL"
	case ReturnCodeNoFreeBuffer:
		return "NO_FREE_BUFFER"
	default:
		return "UNKNOWN"
	}
}

// EventCode is the first byte of an EVENT packet
type EventCode byte

const (
	EventSAReclaimNotSuccessful EventCode = 0x01
	EventSAConfirmLearn         EventCode = 0x02
	EventSALearnAck             EventCode = 0x03
	EventCOReady                EventCode = 0x04
	EventCOSecureDevices        EventCode = 0x05
	EventCODutyCycleLimit       EventCode = 0x06
	EventCOTransmitFailed       EventCode = 0x07
	EventCOTxDone               EventCode = 0x08
	EventCOLearnModeDisabled    EventCode = 0x09
)

// String returns the event code name
func (ec EventCode) String() string {
	switch ec {
	case EventSAReclaimNotSuccessful:
		return "SA_RECLAIM_NOT_SUCCESSFUL"
	case EventSAConfirmLearn:
		return "SA_CONFIRM_LEARN"
	case EventSALearnAck:
		return "SA_LEARN_ACK"
	case EventCOReady:
		return "CO_READY"
	case EventCOSecureDevices:
		return "CO_EVENT_SECUREDEVICES"
	case EventCODutyCycleLimit:
		return "CO_DUTYCYCLE_LIMIT"
	case EventCOTransmitFailed:
		return "CO_TRANSMIT_FAILED"
	case EventCOTxDone:
		return "CO_TX_DONE"
	case EventCOLearnModeDisabled:
		return "CO_LRN_MODE_DISABLED"
	default:
		return "UNKNOWN"
	}
}

// ERP1 optional data layout: subTelNum(1), address(4), dBm(1), security(1)
const (
	erp1OptionalSize  = 7
	erp1OptAddrOffset = 1
	erp1OptDBmOffset  = 5

	// Defaults used when building outbound ERP1 telegrams
	defaultSubTelNum = 3
	defaultRSSI      = 0xFF
	defaultSecurity  = 0
)

// RepeaterLevelLabel describes the repeater counter of an ERP1 status byte
func RepeaterLevelLabel(level int) string {
	switch level {
	case 0:
		return "original"
	case 1:
		return "repeated once"
	case 2:
		return "repeated twice"
	case 15:
		return "do not repeat"
	default:
		return "repeated"
	}
}
