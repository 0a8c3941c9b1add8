package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is a decoded inline-button payload. Callback data is parsed into one
// of ProfileAction, SettingsAction or TrainingAction at the update boundary;
// handlers only ever switch on the concrete type and its Op.
type Action interface {
	Encode() string
	action()
}

var errUnknownAction = errors.New("unknown action")

const (
	kindProfile  = "p"
	kindSettings = "s"
	kindTraining = "t"
)

type ProfileOp string

const (
	ProfileShow         ProfileOp = "show"
	ProfileEdit         ProfileOp = "edit"
	ProfileChooseTopic  ProfileOp = "topics"
	ProfileChooseLevel  ProfileOp = "levels"
	ProfileChooseDir    ProfileOp = "dirs"
	ProfileSetTopic     ProfileOp = "topic"
	ProfileSetLevel     ProfileOp = "level"
	ProfileSetDirection ProfileOp = "dir"
	ProfileRestartTopic ProfileOp = "restart"
)

type ProfileAction struct {
	Op    ProfileOp
	ID    int64  // ProfileSetTopic, ProfileSetLevel
	Value string // ProfileSetDirection
}

type SettingsOp string

const (
	SettingsShow             SettingsOp = "show"
	SettingsNotificationsOn  SettingsOp = "notify_on"
	SettingsNotificationsOff SettingsOp = "notify_off"
	SettingsChooseTime       SettingsOp = "times"
	SettingsSetTime          SettingsOp = "time"
	SettingsRepeatOn         SettingsOp = "repeat_on"
	SettingsRepeatOff        SettingsOp = "repeat_off"
	SettingsChooseLanguage   SettingsOp = "langs"
	SettingsSetLanguage      SettingsOp = "lang"
)

type SettingsAction struct {
	Op    SettingsOp
	Value string // SettingsSetTime ("HH:MM"), SettingsSetLanguage
}

type TrainingOp string

const (
	TrainingNext        TrainingOp = "next"
	TrainingChangeTopic TrainingOp = "change_topic"
)

type TrainingAction struct {
	Op TrainingOp
}

func (ProfileAction) action()  {}
func (SettingsAction) action() {}
func (TrainingAction) action() {}

func (a ProfileAction) Encode() string {
	switch a.Op {
	case ProfileSetTopic, ProfileSetLevel:
		return encode(kindProfile, string(a.Op), strconv.FormatInt(a.ID, 10))
	case ProfileSetDirection:
		return encode(kindProfile, string(a.Op), a.Value)
	}
	return encode(kindProfile, string(a.Op), "")
}

func (a SettingsAction) Encode() string {
	switch a.Op {
	case SettingsSetTime, SettingsSetLanguage:
		return encode(kindSettings, string(a.Op), a.Value)
	}
	return encode(kindSettings, string(a.Op), "")
}

func (a TrainingAction) Encode() string {
	return encode(kindTraining, string(a.Op), "")
}

func encode(kind, op, arg string) string {
	if arg == "" {
		return kind + ":" + op
	}
	return kind + ":" + op + ":" + arg
}

// DecodeAction parses callback data produced by Action.Encode
func DecodeAction(data string) (Action, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", errUnknownAction, data)
	}
	kind, op := parts[0], parts[1]
	var arg string
	if len(parts) == 3 {
		arg = parts[2]
	}

	switch kind {
	case kindProfile:
		return decodeProfile(ProfileOp(op), arg, data)
	case kindSettings:
		return decodeSettings(SettingsOp(op), arg, data)
	case kindTraining:
		switch TrainingOp(op) {
		case TrainingNext, TrainingChangeTopic:
			if arg == "" {
				return TrainingAction{Op: TrainingOp(op)}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownAction, data)
}

func decodeProfile(op ProfileOp, arg, data string) (Action, error) {
	switch op {
	case ProfileShow, ProfileEdit, ProfileChooseTopic, ProfileChooseLevel, ProfileChooseDir, ProfileRestartTopic:
		if arg == "" {
			return ProfileAction{Op: op}, nil
		}
	case ProfileSetTopic, ProfileSetLevel:
		id, err := strconv.ParseInt(arg, 10, 64)
		if err == nil && id > 0 {
			return ProfileAction{Op: op, ID: id}, nil
		}
	case ProfileSetDirection:
		if arg != "" {
			return ProfileAction{Op: op, Value: arg}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownAction, data)
}

func decodeSettings(op SettingsOp, arg, data string) (Action, error) {
	switch op {
	case SettingsShow, SettingsNotificationsOn, SettingsNotificationsOff, SettingsChooseTime,
		SettingsRepeatOn, SettingsRepeatOff, SettingsChooseLanguage:
		if arg == "" {
			return SettingsAction{Op: op}, nil
		}
	case SettingsSetTime, SettingsSetLanguage:
		if arg != "" {
			return SettingsAction{Op: op, Value: arg}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownAction, data)
}
