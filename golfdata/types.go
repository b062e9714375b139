package golfdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Провайдер отдаёт документы в формате MongoDB-экспорта: числа и даты могут
// приходить как {"$numberInt": "..."} / {"$date": {"$numberLong": "..."}},
// как строки или как обычные JSON-числа. Типы ниже принимают все варианты.

// FlexInt декодирует целое из числа, строки или {"$numberInt"/"$numberLong"}.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		f.Valid = false
		return nil
	}

	if data[0] == '{' {
		var wrapper map[string]string
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("flex int: unexpected object: %w", err)
		}
		for _, key := range []string{"$numberInt", "$numberLong"} {
			if raw, ok := wrapper[key]; ok {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("flex int: invalid %s value %q: %w", key, raw, err)
				}
				f.Value = n
				f.Valid = true
				return nil
			}
		}
		f.Valid = false
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		f.Valid = false
		return nil
	}
	f.Value = n
	f.Valid = true
	return nil
}

// FlexString декодирует строку из строки или числа (playerId приходит обоими
// способами в зависимости от эндпоинта).
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string { return string(f) }

// MongoDate декодирует {"$date": {"$numberLong": "<ms>"}} либо голый
// millisecond timestamp (число или строка).
type MongoDate struct {
	Time  time.Time
	Valid bool
}

func (d *MongoDate) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		d.Valid = false
		return nil
	}

	if data[0] == '{' {
		var wrapper struct {
			Date FlexInt `json:"$date"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("mongo date: unexpected object: %w", err)
		}
		if !wrapper.Date.Valid {
			d.Valid = false
			return nil
		}
		d.Time = time.UnixMilli(int64(wrapper.Date.Value)).UTC()
		d.Valid = true
		return nil
	}

	var ms FlexInt
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	if !ms.Valid {
		d.Valid = false
		return nil
	}
	d.Time = time.UnixMilli(int64(ms.Value)).UTC()
	d.Valid = true
	return nil
}

// DateRange представляет пару дат турнира в расписании и в деталях турнира.
type DateRange struct {
	Start MongoDate `json:"start"`
	End   MongoDate `json:"end"`
}

// ScheduleEntry представляет турнир в годовом расписании тура.
type ScheduleEntry struct {
	TournID string    `json:"tournId"`
	Name    string    `json:"name"`
	Date    DateRange `json:"date"`
}

// Schedule представляет ответ /schedule.
type Schedule struct {
	Year     FlexInt         `json:"year"`
	Schedule []ScheduleEntry `json:"schedule"`
}

// FieldPlayer представляет игрока в поле турнира (ответ /tournament).
type FieldPlayer struct {
	PlayerID  FlexString `json:"playerId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Status    string     `json:"status"`
}

// Tournament представляет ответ /tournament: сведения о турнире и его поле.
type Tournament struct {
	TournID string        `json:"tournId"`
	Name    string        `json:"name"`
	OrgID   FlexInt       `json:"orgId"`
	Year    FlexInt       `json:"year"`
	Status  string        `json:"status"`
	Date    DateRange     `json:"date"`
	Players []FieldPlayer `json:"players"`
}

// RoundScore представляет результат одного раунда в строке лидерборда.
// ScoreToPar использует ту же кодировку, что и общий тотал: "E", "+3", "-12",
// либо нечисловой маркер ("WD", "CUT", ...).
type RoundScore struct {
	RoundID    FlexInt `json:"roundId"`
	ScoreToPar string  `json:"scoreToPar"`
}

// LeaderboardRow представляет одну строку лидерборда (одного игрока).
type LeaderboardRow struct {
	PlayerID  FlexString   `json:"playerId"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Position  string       `json:"position"`
	Total     string       `json:"total"`
	Status    string       `json:"status"`
	Rounds    []RoundScore `json:"rounds"`
}

// Leaderboard представляет ответ /leaderboard.
type Leaderboard struct {
	OrgID   FlexInt          `json:"orgId"`
	TournID string           `json:"tournId"`
	Year    FlexInt          `json:"year"`
	Status  string           `json:"status"`
	Rows    []LeaderboardRow `json:"leaderboardRows"`
}
