package app

import (
	"sort"

	"github.com/levelonedev/boxcars/internal/container"
	"github.com/levelonedev/boxcars/internal/decodeerr"
)

// Summary краткий итог разбора реплея.
// Сериализуется в JSON для кеша, архива и событий.
type Summary struct {
	File       string `json:"file"`
	ContentCRC uint32 `json:"content_crc"`
	Mode       string `json:"mode"`
	Compressed bool   `json:"compressed,omitempty"`

	Version  string   `json:"version"`
	GameType string   `json:"game_type"`
	Map      string   `json:"map,omitempty"`
	Name     string   `json:"name,omitempty"`
	TeamSize int32    `json:"team_size,omitempty"`
	Score    [2]int32 `json:"score"`

	Frames      int            `json:"frames"`
	Actors      int            `json:"actors"`
	Spawns      int            `json:"spawns"`
	Updates     int            `json:"updates"`
	Deletes     int            `json:"deletes"`
	Live        int            `json:"live"`
	Diagnostics int            `json:"diagnostics"`
	Classes     map[string]int `json:"classes,omitempty"`
	TickMarks   int            `json:"tick_marks"`
	KeyFrames   int            `json:"key_frames"`

	NetworkError  string `json:"network_error,omitempty"`
	ErrorCategory string `json:"error_category,omitempty"`

	ArchiveID string `json:"archive_id,omitempty"`
	FromCache bool   `json:"-"`
}

// ClassCount число появлений класса в сетевом потоке
type ClassCount struct {
	Class string
	Count int
}

// TopClasses возвращает n самых частых классов по убыванию
func (s *Summary) TopClasses(n int) []ClassCount {
	out := make([]ClassCount, 0, len(s.Classes))
	for c, k := range s.Classes {
		out = append(out, ClassCount{Class: c, Count: k})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Class < out[j].Class
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// summarize собирает сводку из разобранного реплея
func summarize(s *Summary, rp *container.Replay) {
	h := rp.Header
	s.Version = h.Version().String()
	s.GameType = h.GameType
	s.Map, _ = h.Props.String("MapName")
	s.Name, _ = h.Props.String("ReplayName")
	s.TeamSize, _ = h.Props.Int("TeamSize")
	s.Score[0], _ = h.Props.Int("Team0Score")
	s.Score[1], _ = h.Props.Int("Team1Score")
	s.TickMarks = len(rp.Body.TickMarks)
	s.KeyFrames = len(rp.Body.KeyFrames)

	if rp.NetworkErr != nil {
		s.NetworkError = rp.NetworkErr.Error()
		s.ErrorCategory = decodeerr.CategoryOf(rp.NetworkErr).String()
	}
	if rp.Network == nil {
		return
	}

	res := rp.Network
	actors := make(map[int32]struct{})
	s.Classes = make(map[string]int)
	for _, f := range res.Frames {
		for _, sp := range f.Spawns {
			s.Spawns++
			actors[sp.ActorID] = struct{}{}
			if sp.New {
				s.Classes[sp.ClassName]++
			}
		}
		for _, u := range f.Updates {
			s.Updates += len(u.Attributes)
		}
		s.Deletes += len(f.Deletes)
	}
	s.Frames = len(res.Frames)
	s.Actors = len(actors)
	s.Live = len(res.Live)
	s.Diagnostics = len(res.Diagnostics)
}
