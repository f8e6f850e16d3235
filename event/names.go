package event

import "github.com/eventsocket/esl/strutil"

// Type identifies the kind of an event. The ordinals are part of the wire
// contract: the Event-Name header text is derived from them, so the table
// below is append-only and Clone must keep ordinal 1.
type Type int

const (
	Custom Type = iota
	Clone
	ChannelCreate
	ChannelDestroy
	ChannelState
	ChannelCallState
	ChannelAnswer
	ChannelHangup
	ChannelHangupComplete
	ChannelExecute
	ChannelExecuteComplete
	ChannelHold
	ChannelUnhold
	ChannelBridge
	ChannelUnbridge
	ChannelProgress
	ChannelProgressMedia
	ChannelOutgoing
	ChannelPark
	ChannelUnpark
	ChannelApplication
	ChannelOriginate
	ChannelUUID
	API
	Log
	InboundChan
	OutboundChan
	Startup
	Shutdown
	Publish
	Unpublish
	Talk
	NoTalk
	SessionCrash
	ModuleLoad
	ModuleUnload
	DTMF
	Message
	PresenceIn
	NotifyIn
	PresenceOut
	PresenceProbe
	MessageWaiting
	MessageQuery
	Roster
	Codec
	BackgroundJob
	DetectedSpeech
	DetectedTone
	PrivateCommand
	Heartbeat
	Trap
	AddSchedule
	DelSchedule
	ExeSchedule
	ReSchedule
	ReloadXML
	Notify
	PhoneFeature
	PhoneFeatureSubscribe
	SendMessage
	RecvMessage
	RequestParams
	ChannelData
	General
	Command
	SessionHeartbeat
	ClientDisconnected
	ServerDisconnected
	SendInfo
	RecvInfo
	RecvRTCPMessage
	SendRTCPMessage
	CallSecure
	NAT
	RecordStart
	RecordStop
	PlaybackStart
	PlaybackStop
	CallUpdate
	Failure
	SocketData
	MediaBugStart
	MediaBugStop
	ConferenceDataQuery
	ConferenceData
	CallSetupReq
	CallSetupResult
	CallDetail
	DeviceState
	Text
	ShutdownRequested
	All
)

// typeNames is indexed by Type ordinal. Append only; never reorder.
var typeNames = [...]string{
	"CUSTOM",
	"CLONE",
	"CHANNEL_CREATE",
	"CHANNEL_DESTROY",
	"CHANNEL_STATE",
	"CHANNEL_CALLSTATE",
	"CHANNEL_ANSWER",
	"CHANNEL_HANGUP",
	"CHANNEL_HANGUP_COMPLETE",
	"CHANNEL_EXECUTE",
	"CHANNEL_EXECUTE_COMPLETE",
	"CHANNEL_HOLD",
	"CHANNEL_UNHOLD",
	"CHANNEL_BRIDGE",
	"CHANNEL_UNBRIDGE",
	"CHANNEL_PROGRESS",
	"CHANNEL_PROGRESS_MEDIA",
	"CHANNEL_OUTGOING",
	"CHANNEL_PARK",
	"CHANNEL_UNPARK",
	"CHANNEL_APPLICATION",
	"CHANNEL_ORIGINATE",
	"CHANNEL_UUID",
	"API",
	"LOG",
	"INBOUND_CHAN",
	"OUTBOUND_CHAN",
	"STARTUP",
	"SHUTDOWN",
	"PUBLISH",
	"UNPUBLISH",
	"TALK",
	"NOTALK",
	"SESSION_CRASH",
	"MODULE_LOAD",
	"MODULE_UNLOAD",
	"DTMF",
	"MESSAGE",
	"PRESENCE_IN",
	"NOTIFY_IN",
	"PRESENCE_OUT",
	"PRESENCE_PROBE",
	"MESSAGE_WAITING",
	"MESSAGE_QUERY",
	"ROSTER",
	"CODEC",
	"BACKGROUND_JOB",
	"DETECTED_SPEECH",
	"DETECTED_TONE",
	"PRIVATE_COMMAND",
	"HEARTBEAT",
	"TRAP",
	"ADD_SCHEDULE",
	"DEL_SCHEDULE",
	"EXE_SCHEDULE",
	"RE_SCHEDULE",
	"RELOADXML",
	"NOTIFY",
	"PHONE_FEATURE",
	"PHONE_FEATURE_SUBSCRIBE",
	"SEND_MESSAGE",
	"RECV_MESSAGE",
	"REQUEST_PARAMS",
	"CHANNEL_DATA",
	"GENERAL",
	"COMMAND",
	"SESSION_HEARTBEAT",
	"CLIENT_DISCONNECTED",
	"SERVER_DISCONNECTED",
	"SEND_INFO",
	"RECV_INFO",
	"RECV_RTCP_MESSAGE",
	"SEND_RTCP_MESSAGE",
	"CALL_SECURE",
	"NAT",
	"RECORD_START",
	"RECORD_STOP",
	"PLAYBACK_START",
	"PLAYBACK_STOP",
	"CALL_UPDATE",
	"FAILURE",
	"SOCKET_DATA",
	"MEDIA_BUG_START",
	"MEDIA_BUG_STOP",
	"CONFERENCE_DATA_QUERY",
	"CONFERENCE_DATA",
	"CALL_SETUP_REQ",
	"CALL_SETUP_RESULT",
	"CALL_DETAIL",
	"DEVICE_STATE",
	"TEXT",
	"SHUTDOWN_REQUESTED",
	"ALL",
}

// String returns the wire name of the type, or "INVALID" when t is out of
// range.
func (t Type) String() string {
	if t < Custom || t > All {
		return "INVALID"
	}
	return typeNames[t]
}

// NameToType resolves an event name back to its Type. The comparison is
// case-insensitive and tolerates a fixed 13-character prefix ahead of the
// bare name, so "SWITCH_EVENT_HEARTBEAT" style spellings resolve too.
func NameToType(name string) (Type, bool) {
	for t := Custom; t <= All; t++ {
		if strutil.EqualFold(name, typeNames[t]) ||
			(len(name) > 13 && strutil.EqualFold(name[13:], typeNames[t])) {
			return t, true
		}
	}
	return Clone, false
}
