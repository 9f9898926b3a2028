package attributes

import (
	"bytes"
	"fmt"

	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// Platform платформа игрока
type Platform uint8

const (
	PlatformSplitscreen Platform = 0
	PlatformSteam       Platform = 1
	PlatformPlayStation Platform = 2
	PlatformXbox        Platform = 4
	PlatformQQ          Platform = 5
	PlatformSwitch      Platform = 6
	PlatformPsyNet      Platform = 7
	PlatformEpic        Platform = 11
)

var platformNames = map[Platform]string{
	PlatformSplitscreen: "Splitscreen",
	PlatformSteam:       "Steam",
	PlatformPlayStation: "PlayStation",
	PlatformXbox:        "Xbox",
	PlatformQQ:          "QQ",
	PlatformSwitch:      "Switch",
	PlatformPsyNet:      "PsyNet",
	PlatformEpic:        "Epic",
}

// String возвращает название платформы
func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Platform(%d)", uint8(p))
}

const (
	psNameBytes     = 16
	switchExtraSize = 24
	psyNetExtraSize = 24
)

// RemoteID платформенная часть идентификатора игрока
type RemoteID interface {
	Platform() Platform
}

// SplitscreenID игрок на разделённом экране
type SplitscreenID struct {
	Value uint32
}

// SteamID идентификатор Steam
type SteamID struct {
	OnlineID uint64
}

// PlayStationID идентификатор PSN с отображаемым именем
type PlayStationID struct {
	Name     string
	Extra    []byte
	OnlineID uint64
}

// XboxID идентификатор Xbox Live
type XboxID struct {
	OnlineID uint64
}

// QQID идентификатор QQ
type QQID struct {
	OnlineID uint64
}

// SwitchID идентификатор Nintendo Switch
type SwitchID struct {
	OnlineID uint64
	Extra    []byte
}

// PsyNetID идентификатор PsyNet; в старых версиях за ним следуют 24 байта
type PsyNetID struct {
	OnlineID uint64
	Extra    []byte
}

// EpicID идентификатор аккаунта Epic
type EpicID struct {
	AccountID string
}

func (SplitscreenID) Platform() Platform { return PlatformSplitscreen }
func (SteamID) Platform() Platform { return PlatformSteam }
func (PlayStationID) Platform() Platform { return PlatformPlayStation }
func (XboxID) Platform() Platform { return PlatformXbox }
func (QQID) Platform() Platform { return PlatformQQ }
func (SwitchID) Platform() Platform { return PlatformSwitch }
func (PsyNetID) Platform() Platform { return PlatformPsyNet }
func (EpicID) Platform() Platform { return PlatformEpic }

// psExtraSize длина неразобранного блока PSN
func (f *fields) psExtraSize() int {
	if f.v.NetAtLeast(1) {
		return 16
	}
	return 8
}

func (o *out) psExtraSize() int {
	if o.v.NetAtLeast(1) {
		return 16
	}
	return 8
}

// remoteID читает платформенную часть идентификатора
func (f *fields) remoteID(system Platform) RemoteID {
	if f.err != nil {
		return nil
	}
	start := f.r.Position()
	switch system {
	case PlatformSplitscreen:
		return SplitscreenID{Value: uint32(f.bits(24))}
	case PlatformSteam:
		return SteamID{OnlineID: f.u64()}
	case PlatformPlayStation:
		name := bytes.TrimRight(f.bytes(psNameBytes), "\x00")
		extra := f.bytes(f.psExtraSize())
		return PlayStationID{Name: string(name), Extra: extra, OnlineID: f.u64()}
	case PlatformXbox:
		return XboxID{OnlineID: f.u64()}
	case PlatformQQ:
		return QQID{OnlineID: f.u64()}
	case PlatformSwitch:
		id := f.u64()
		return SwitchID{OnlineID: id, Extra: f.bytes(switchExtraSize)}
	case PlatformPsyNet:
		id := f.u64()
		if f.v.NetAtLeast(10) {
			return PsyNetID{OnlineID: id}
		}
		return PsyNetID{OnlineID: id, Extra: f.bytes(psyNetExtraSize)}
	case PlatformEpic:
		return EpicID{AccountID: f.str()}
	default:
		f.err = decodeerr.At(decodeerr.Unsupported, start, "unique id platform %d", system)
		return nil
	}
}

func (o *out) remoteID(system Platform, id RemoteID) {
	if id == nil || id.Platform() != system {
		o.fail("remote id does not match platform %d", system)
		return
	}
	switch r := id.(type) {
	case SplitscreenID:
		o.bits(uint64(r.Value), 24)
	case SteamID:
		o.u64(r.OnlineID)
	case PlayStationID:
		if len(r.Name) > psNameBytes {
			o.fail("playstation name %q longer than %d bytes", r.Name, psNameBytes)
			return
		}
		name := make([]byte, psNameBytes)
		copy(name, r.Name)
		o.bytes(name)
		o.fixedBytes(r.Extra, o.psExtraSize())
		o.u64(r.OnlineID)
	case XboxID:
		o.u64(r.OnlineID)
	case QQID:
		o.u64(r.OnlineID)
	case SwitchID:
		o.u64(r.OnlineID)
		o.fixedBytes(r.Extra, switchExtraSize)
	case PsyNetID:
		o.u64(r.OnlineID)
		if !o.v.NetAtLeast(10) {
			o.fixedBytes(r.Extra, psyNetExtraSize)
		}
	case EpicID:
		o.str(r.AccountID)
	}
}

// fixedBytes пишет ровно n байт; недостающие дополняются нулями
func (o *out) fixedBytes(p []byte, n int) {
	if len(p) > n {
		o.fail("expected at most %d bytes, got %d", n, len(p))
		return
	}
	buf := make([]byte, n)
	copy(buf, p)
	o.bytes(buf)
}

func (f *fields) uniqueID() UniqueID {
	system := Platform(f.u8())
	remote := f.remoteID(system)
	return UniqueID{System: system, Remote: remote, LocalID: f.u8()}
}

func (o *out) uniqueID(id UniqueID) {
	o.u8(uint8(id.System))
	o.remoteID(id.System, id.Remote)
	o.u8(id.LocalID)
}
