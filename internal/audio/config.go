// Package audio implements the audio source: configuration parsing
// for the "<rate>:<channel-map>" grammar, and the waker-pipe handoff from
// the real-time capture thread to the main loop's buffer queue drain.
package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zsiec/deskstream/internal/streamerr"
)

// Position is one of the 35 recognized channel-map positions.
type Position string

// Recognized channel positions.
const (
	FL   Position = "FL"
	FR   Position = "FR"
	FC   Position = "FC"
	LFE  Position = "LFE"
	SL   Position = "SL"
	SR   Position = "SR"
	FLC  Position = "FLC"
	FRC  Position = "FRC"
	RC   Position = "RC"
	RL   Position = "RL"
	RR   Position = "RR"
	TC   Position = "TC"
	TFL  Position = "TFL"
	TFC  Position = "TFC"
	TFR  Position = "TFR"
	TRL  Position = "TRL"
	TRC  Position = "TRC"
	TRR  Position = "TRR"
	RLC  Position = "RLC"
	RRC  Position = "RRC"
	FLW  Position = "FLW"
	FRW  Position = "FRW"
	LFE2 Position = "LFE2"
	FLH  Position = "FLH"
	FCH  Position = "FCH"
	FRH  Position = "FRH"
	TFLC Position = "TFLC"
	TFRC Position = "TFRC"
	TSL  Position = "TSL"
	TSR  Position = "TSR"
	LLFE Position = "LLFE"
	RLFE Position = "RLFE"
	BC   Position = "BC"
	BLC  Position = "BLC"
	BRC  Position = "BRC"
)

var validPositions = map[Position]bool{
	FL: true, FR: true, FC: true, LFE: true, SL: true, SR: true, FLC: true,
	FRC: true, RC: true, RL: true, RR: true, TC: true, TFL: true, TFC: true,
	TFR: true, TRL: true, TRC: true, TRR: true, RLC: true, RRC: true,
	FLW: true, FRW: true, LFE2: true, FLH: true, FCH: true, FRH: true,
	TFLC: true, TFRC: true, TSL: true, TSR: true, LLFE: true, RLFE: true,
	BC: true, BLC: true, BRC: true,
}

// Config is a parsed audio-config string.
type Config struct {
	Rate     int
	Channels []Position
}

// ParseConfig parses "<rate>:<pos>(,<pos>)*". rate must be 44100 or 48000;
// unknown positions fail. Both failures are ConfigError, fatal at startup.
func ParseConfig(s string) (Config, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Config{}, streamerr.Newf(streamerr.Config, "audio", "malformed audio config %q", s)
	}
	rate, err := strconv.Atoi(parts[0])
	if err != nil || (rate != 44100 && rate != 48000) {
		return Config{}, streamerr.Newf(streamerr.Config, "audio", "unsupported sample rate in %q", s)
	}

	names := strings.Split(parts[1], ",")
	channels := make([]Position, 0, len(names))
	for _, n := range names {
		pos := Position(n)
		if !validPositions[pos] {
			return Config{}, streamerr.Newf(streamerr.Config, "audio", "unknown channel position %q", n)
		}
		channels = append(channels, pos)
	}
	if len(channels) == 0 {
		return Config{}, streamerr.Newf(streamerr.Config, "audio", "empty channel map in %q", s)
	}

	return Config{Rate: rate, Channels: channels}, nil
}

// String reproduces the original "<rate>:<pos>,..." form, used to build
// the hello MISC frame payload.
func (c Config) String() string {
	names := make([]string, len(c.Channels))
	for i, p := range c.Channels {
		names[i] = string(p)
	}
	return fmt.Sprintf("%d:%s", c.Rate, strings.Join(names, ","))
}

// OneSecondSize is channels * rate * 2 bytes (S16LE), used to convert a
// captured block's byte size into a latency estimate.
func (c Config) OneSecondSize() uint32 {
	return uint32(len(c.Channels)) * uint32(c.Rate) * 2
}
