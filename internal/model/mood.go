package model

import "fmt"

type Mood int

const (
	MoodFlat Mood = iota
	MoodGain
	MoodLoss
)

func (m Mood) String() string {
	switch m {
	case MoodGain:
		return "gain"
	case MoodLoss:
		return "loss"
	case MoodFlat:
		return "flat"
	default:
		return fmt.Sprintf("mood(%d)", int(m))
	}
}

func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mood) UnmarshalText(text []byte) error {
	switch string(text) {
	case "gain":
		*m = MoodGain
	case "loss":
		*m = MoodLoss
	case "flat":
		*m = MoodFlat
	default:
		return fmt.Errorf("unknown mood %q", text)
	}
	return nil
}

type RGB struct {
	R, G, B uint8
}

// Color is the light colour for the mood. White reports ok=false: the light switches to white mode instead.
func (m Mood) Color() (rgb RGB, colour bool) {
	switch m {
	case MoodGain:
		return RGB{G: 255}, true
	case MoodLoss:
		return RGB{R: 255}, true
	default:
		return RGB{R: 255, G: 255, B: 255}, false
	}
}

type MoodSignal string

const (
	SignalDayChange   MoodSignal = "day_change"
	SignalTotalReturn MoodSignal = "total_return"
)

type MissingQuotePolicy string

const (
	// PolicyCountInvested keeps the invested capital of unpriced holdings, which biases P/L negative during outages.
	PolicyCountInvested MissingQuotePolicy = "count_invested"
	PolicyExclude       MissingQuotePolicy = "exclude"
)
