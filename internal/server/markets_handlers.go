package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type createMarketRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleMarketCreate(w http.ResponseWriter, r *http.Request) {
	var req createMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	addr, err := s.proto.Engine.CreateMarket(strings.TrimSpace(req.URL))
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 201, map[string]string{
		"url":    req.URL,
		"market": addr.Hex(),
	})
}

func (s *Server) handleMarketAddress(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, 400, "url is required")
		return
	}
	// 纯读：市场尚未创建也可查询
	writeJSON(w, 200, map[string]interface{}{
		"url":    url,
		"market": s.proto.Engine.GetMarketAddress(url).Hex(),
		"exists": s.proto.Engine.MarketExists(url),
	})
}

type marketSummary struct {
	URL         string `json:"url"`
	Market      string `json:"market"`
	Exists      bool   `json:"exists"`
	UpBalance   string `json:"upBalance"`
	DownBalance string `json:"downBalance"`
}

func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, 400, "url is required")
		return
	}
	if cached, ok := s.summaries.Get(url); ok {
		writeJSON(w, 200, cached)
		return
	}
	e := s.proto.Engine
	addr := e.GetMarketAddress(url)
	sum := marketSummary{
		URL:         url,
		Market:      addr.Hex(),
		Exists:      e.MarketExists(url),
		UpBalance:   e.Up().BalanceOf(addr).String(),
		DownBalance: e.Down().BalanceOf(addr).String(),
	}
	s.summaries.Set(url, sum, 0)
	writeJSON(w, 200, sum)
}
