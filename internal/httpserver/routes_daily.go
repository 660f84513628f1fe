// internal/httpserver/routes_daily.go
//
// "Daily" games: every player on the same UTC date gets the same scrambles,
// and the same draws for the same sequence of moves. The randomness comes
// from daily.Source(date, DAILY_SALT); each daily game owns its catalog.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/robalobadob/scramble/internal/daily"
	"github.com/robalobadob/scramble/internal/game"
	"github.com/robalobadob/scramble/internal/words"
)

// newDailyEngine builds an engine over a catalog seeded for now's date.
func (s *Server) newDailyEngine(now time.Time) (*game.Engine, error) {
	cat, err := words.NewCatalog(s.catalog.Answers(), daily.Source(now, s.cfg.DailySalt))
	if err != nil {
		return nil, err
	}
	return game.New(cat)
}

// dailyInfoRes is the payload for GET /daily.
type dailyInfoRes struct {
	Date       string `json:"date"`
	Words      int    `json:"words"`
	RoundLimit int    `json:"roundLimit"`
}

// handleDailyInfo reports today's daily key.
func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(dailyInfoRes{
		Date:       daily.DateKey(time.Now()),
		Words:      s.catalog.Len(),
		RoundLimit: game.RoundLimit,
	})
}
