package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/immutable-ratings/goratings/internal/protocol"
)

func (s *Server) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS rating_events (
  id         TEXT PRIMARY KEY,
  type       TEXT NOT NULL,
  rater      TEXT,
  market     TEXT,
  url        TEXT,
  amount     TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rating_events_created_at ON rating_events(created_at);
CREATE INDEX IF NOT EXISTS idx_rating_events_market ON rating_events(market);
`)
	if err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}
	return nil
}

type journalRow struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Rater     string `json:"rater,omitempty"`
	Market    string `json:"market,omitempty"`
	URL       string `json:"url,omitempty"`
	Amount    string `json:"amount,omitempty"`
	CreatedAt string `json:"created_at"`
}

// journalEvent 把协议事件写入流水表
func (s *Server) journalEvent(ev protocol.Event) error {
	row := journalRow{
		ID:        uuid.NewString(),
		Type:      ev.Name(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	switch e := ev.(type) {
	case protocol.RatingUpCreated:
		row.Rater = e.Rater.Hex()
		row.Market = e.Market.Hex()
		row.Amount = e.Amount.String()
	case protocol.RatingDownCreated:
		row.Rater = e.Rater.Hex()
		row.Market = e.Market.Hex()
		row.Amount = e.Amount.String()
	case protocol.MarketCreated:
		row.Market = e.Market.Hex()
		row.URL = e.URL
	case protocol.ReceiverUpdated:
		row.Market = e.Receiver.Hex()
	case protocol.PausedSet:
		row.Amount = strconv.FormatBool(e.Paused)
	}
	_, err := s.db.Exec(`
INSERT INTO rating_events (id,type,rater,market,url,amount,created_at)
VALUES (?,?,?,?,?,?,?)
`, row.ID, row.Type, row.Rater, row.Market, row.URL, row.Amount, row.CreatedAt)
	return err
}

func (s *Server) handleJournalList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, 400, "invalid limit")
			return
		}
		limit = n
	}

	q := `SELECT id,type,rater,market,url,amount,created_at FROM rating_events`
	args := []interface{}{}
	if market := r.URL.Query().Get("market"); market != "" {
		q += ` WHERE market=?`
		args = append(args, market)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("db list events: %v", err))
		return
	}
	defer rows.Close()

	out := []journalRow{}
	for rows.Next() {
		var row journalRow
		if err := rows.Scan(&row.ID, &row.Type, &row.Rater, &row.Market, &row.URL, &row.Amount, &row.CreatedAt); err != nil {
			writeError(w, 500, fmt.Sprintf("db scan: %v", err))
			return
		}
		out = append(out, row)
	}
	writeJSON(w, 200, out)
}
