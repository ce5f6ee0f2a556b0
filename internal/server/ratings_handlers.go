package server

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/immutable-ratings/goratings/internal/pricing"
	"github.com/immutable-ratings/goratings/internal/protocol"
)

type ratingRequest struct {
	Rater   string `json:"rater"`
	URL     string `json:"url"`
	Amount  string `json:"amount"`  // 代币最小单位，十进制字符串
	Payment string `json:"payment"` // wei，十进制字符串
}

type batchItem struct {
	URL    string `json:"url"`
	Amount string `json:"amount"`
}

type batchRequest struct {
	Rater   string      `json:"rater"`
	Up      []batchItem `json:"up"`
	Down    []batchItem `json:"down"`
	Payment string      `json:"payment"`
}

func (s *Server) handleRatingUp(w http.ResponseWriter, r *http.Request) {
	s.handleRating(w, r, protocol.SideUp)
}

func (s *Server) handleRatingDown(w http.ResponseWriter, r *http.Request) {
	s.handleRating(w, r, protocol.SideDown)
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request, side protocol.Side) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	rater, err := parseAddress(req.Rater)
	if err != nil {
		writeError(w, 400, "invalid rater address")
		return
	}
	amount, err := parseBig(req.Amount)
	if err != nil {
		writeError(w, 400, "invalid amount")
		return
	}
	payment, err := parseBig(req.Payment)
	if err != nil {
		writeError(w, 400, "invalid payment")
		return
	}

	rreq := protocol.RatingRequest{URL: req.URL, Amount: amount}
	if side == protocol.SideUp {
		err = s.proto.Engine.CreateUpRating(rater, rreq, payment)
	} else {
		err = s.proto.Engine.CreateDownRating(rater, rreq, payment)
	}
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]interface{}{
		"market": s.proto.Engine.GetMarketAddress(req.URL).Hex(),
		"side":   side.String(),
		"amount": amount.String(),
		"cost":   pricing.Payment(amount).String(),
	})
}

func (s *Server) handleRatingBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	rater, err := parseAddress(req.Rater)
	if err != nil {
		writeError(w, 400, "invalid rater address")
		return
	}
	payment, err := parseBig(req.Payment)
	if err != nil {
		writeError(w, 400, "invalid payment")
		return
	}
	up, err := toRequests(req.Up)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	down, err := toRequests(req.Down)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	if err := s.proto.Engine.CreateRatings(rater, up, down, payment); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]interface{}{
		"up":   len(up),
		"down": len(down),
	})
}

func (s *Server) handlePreviewPayment(w http.ResponseWriter, r *http.Request) {
	amount, err := parseBig(r.URL.Query().Get("amount"))
	if err != nil {
		writeError(w, 400, "invalid amount")
		return
	}
	payment := s.proto.Engine.PreviewPayment(amount)
	writeJSON(w, 200, map[string]interface{}{
		"amount":       amount.String(),
		"payment":      payment.String(),
		"paymentEther": pricing.PaymentEther(amount).String(),
	})
}

func (s *Server) handleUserRatings(w http.ResponseWriter, r *http.Request) {
	user, err := parseAddress(pathParam(r, "address"))
	if err != nil {
		writeError(w, 400, "invalid user address")
		return
	}
	e := s.proto.Engine
	writeJSON(w, 200, map[string]interface{}{
		"user":      user.Hex(),
		"total":     e.GetUserRatings(user).String(),
		"upvotes":   e.Up().Votes(user).String(),
		"downvotes": e.Down().Votes(user).String(),
	})
}

func toRequests(items []batchItem) ([]protocol.RatingRequest, error) {
	out := make([]protocol.RatingRequest, 0, len(items))
	for _, it := range items {
		amount, err := parseBig(it.Amount)
		if err != nil {
			return nil, errors.New("invalid amount: " + it.Amount)
		}
		out = append(out, protocol.RatingRequest{URL: it.URL, Amount: amount})
	}
	return out, nil
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("not a hex address")
	}
	return common.HexToAddress(s), nil
}

func parseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.New("not a decimal integer")
	}
	return v, nil
}

// writeProtocolError 把协议错误映射到 HTTP 状态码
func writeProtocolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, protocol.ErrEmptyURL),
		errors.Is(err, protocol.ErrInvalidRatingAmount),
		errors.Is(err, protocol.ErrMaxRatingsExceeded),
		errors.Is(err, protocol.ErrZeroAddress):
		writeError(w, 400, err.Error())
	case errors.Is(err, protocol.ErrInsufficientPayment),
		errors.Is(err, protocol.ErrInsufficientBalance):
		writeError(w, 402, err.Error())
	case errors.Is(err, protocol.ErrUnauthorizedOwner),
		errors.Is(err, protocol.ErrUnauthorizedPendingOwner),
		errors.Is(err, protocol.ErrUnauthorizedRole):
		writeError(w, 403, err.Error())
	case errors.Is(err, protocol.ErrMarketAlreadyExists),
		errors.Is(err, protocol.ErrContractPaused):
		writeError(w, 409, err.Error())
	default:
		writeError(w, 500, err.Error())
	}
}
