package calendar

import (
	"encoding/json"
	"time"
)

type configWire struct {
	WorkingDays []string `json:"working_days"`
	Holidays    []string `json:"holidays"`
}

// MarshalJSON renders the config as {"working_days": ["Mon",...], "holidays": ["YYYY-MM-DD",...]}.
func (c Config) MarshalJSON() ([]byte, error) {
	wire := configWire{
		WorkingDays: make([]string, len(c.WorkingDays)),
		Holidays:    make([]string, len(c.Holidays)),
	}
	for i, w := range c.WorkingDays {
		wire.WorkingDays[i] = weekdayAbbrev(w)
	}
	for i, d := range c.Holidays {
		wire.Holidays[i] = d.String()
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses the wire form produced by MarshalJSON.
func (c *Config) UnmarshalJSON(data []byte) error {
	var wire configWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	working := make([]time.Weekday, 0, len(wire.WorkingDays))
	for _, s := range wire.WorkingDays {
		w, err := parseWeekdayAbbrev(s)
		if err != nil {
			return err
		}
		working = append(working, w)
	}
	holidays := make([]Date, 0, len(wire.Holidays))
	for _, s := range wire.Holidays {
		d, err := ParseDate(s)
		if err != nil {
			return err
		}
		holidays = append(holidays, d)
	}
	c.WorkingDays = working
	c.Holidays = holidays
	return nil
}
