package transfer

import (
	"fmt"

	"rtcfix/link"
)

type State int

const (
	StateInit State = iota
	StateAwaitingAck
	StateConnecting
	StateInitHandshake
	StateHandshaking
	StateTransmitting
	StateComplete
	StateFailed
)

var stateNames = [...]string{
	StateInit:          "Init",
	StateAwaitingAck:   "AwaitingAck",
	StateConnecting:    "Connecting",
	StateInitHandshake: "InitHandshake",
	StateHandshaking:   "Handshaking",
	StateTransmitting:  "Transmitting",
	StateComplete:      "Complete",
	StateFailed:        "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

type Event int

const (
	EventNone Event = iota
	EventSetupDone
	EventConfirm
	EventArmed
	EventStable
	EventTransmitComplete
	EventPeerLost
)

var eventNames = [...]string{
	EventNone:             "None",
	EventSetupDone:        "SetupDone",
	EventConfirm:          "Confirm",
	EventArmed:            "Armed",
	EventStable:           "Stable",
	EventTransmitComplete: "TransmitComplete",
	EventPeerLost:         "PeerLost",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Transition is the whole state table. Events that mean nothing in a state leave it unchanged.
// Complete stays Complete on confirm; leaving it is a device restart, not a state.
func Transition(s State, e Event) State {
	switch s {
	case StateInit:
		if e == EventSetupDone {
			return StateAwaitingAck
		}
	case StateAwaitingAck:
		if e == EventConfirm {
			return StateConnecting
		}
	case StateConnecting:
		if e == EventConfirm {
			return StateInitHandshake
		}
	case StateInitHandshake:
		if e == EventArmed {
			return StateHandshaking
		}
	case StateHandshaking:
		switch e {
		case EventStable:
			return StateTransmitting
		case EventPeerLost:
			return StateFailed
		}
	case StateTransmitting:
		switch e {
		case EventTransmitComplete:
			return StateComplete
		case EventPeerLost:
			return StateFailed
		}
	case StateFailed:
		if e == EventConfirm {
			return StateAwaitingAck
		}
	}
	return s
}

// Scene names what the presentation collaborator should be showing.
type Scene int

const (
	SceneNone Scene = iota
	SceneBeginPrompt
	SceneConnectPrompt
	SceneConnectConfirm
	ScenePowerOffOrConnectLogo
	SceneTransmitting
	SceneFollowInstructions
	SceneTransmissionFailed
)

var sceneNames = [...]string{
	SceneNone:                  "None",
	SceneBeginPrompt:           "BeginPrompt",
	SceneConnectPrompt:         "ConnectPrompt",
	SceneConnectConfirm:        "ConnectConfirm",
	ScenePowerOffOrConnectLogo: "PowerOffOrConnectLogo",
	SceneTransmitting:          "Transmitting",
	SceneFollowInstructions:    "FollowInstructions",
	SceneTransmissionFailed:    "TransmissionFailed",
}

func (s Scene) String() string {
	if s < 0 || int(s) >= len(sceneNames) {
		return fmt.Sprintf("Scene(%d)", int(s))
	}
	return sceneNames[s]
}

// SceneFor picks the scene for a state. While handshaking the logo stays up until the peer
// first reports ready, then the confirmation scene shows the settle window.
func SceneFor(s State, session *link.Session) Scene {
	switch s {
	case StateAwaitingAck:
		return SceneBeginPrompt
	case StateConnecting:
		return SceneConnectPrompt
	case StateInitHandshake:
		return ScenePowerOffOrConnectLogo
	case StateHandshaking:
		if session != nil && session.Timer > 0 {
			return SceneConnectConfirm
		}
		return ScenePowerOffOrConnectLogo
	case StateTransmitting:
		return SceneTransmitting
	case StateComplete:
		return SceneFollowInstructions
	case StateFailed:
		return SceneTransmissionFailed
	}
	return SceneNone
}
