package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAdminState(w http.ResponseWriter, r *http.Request) {
	e := s.proto.Engine
	writeJSON(w, 200, map[string]interface{}{
		"owner":        e.Owner().Hex(),
		"pendingOwner": e.PendingOwner().Hex(),
		"receiver":     e.Receiver().Hex(),
		"isPaused":     e.IsPaused(),
		"tokenUp":      e.TokenUp().Hex(),
		"tokenDown":    e.TokenDown().Hex(),
	})
}

type setReceiverRequest struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
}

func (s *Server) handleSetReceiver(w http.ResponseWriter, r *http.Request) {
	var req setReceiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, 400, "invalid caller address")
		return
	}
	receiver, err := parseAddress(req.Receiver)
	if err != nil {
		writeError(w, 400, "invalid receiver address")
		return
	}
	if err := s.proto.Engine.SetReceiver(caller, receiver); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"receiver": receiver.Hex()})
}

type setPausedRequest struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

func (s *Server) handleSetPaused(w http.ResponseWriter, r *http.Request) {
	var req setPausedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, 400, "invalid caller address")
		return
	}
	if err := s.proto.Engine.SetIsPaused(caller, req.Paused); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]bool{"isPaused": req.Paused})
}

type transferOwnershipRequest struct {
	Caller    string `json:"caller"`
	Candidate string `json:"candidate"`
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, 400, "invalid caller address")
		return
	}
	candidate, err := parseAddress(req.Candidate)
	if err != nil {
		writeError(w, 400, "invalid candidate address")
		return
	}
	if err := s.proto.Engine.TransferOwnership(caller, candidate); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"pendingOwner": candidate.Hex()})
}

type acceptOwnershipRequest struct {
	Caller string `json:"caller"`
}

func (s *Server) handleAcceptOwnership(w http.ResponseWriter, r *http.Request) {
	var req acceptOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, 400, "invalid caller address")
		return
	}
	if err := s.proto.Engine.AcceptOwnership(caller); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"owner": caller.Hex()})
}

type recoverRequest struct {
	Caller    string `json:"caller"`
	Token     string `json:"token"`
	Recipient string `json:"recipient"`
}

func (s *Server) handleRecoverERC20(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json body")
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, 400, "invalid caller address")
		return
	}
	tokenAddr, err := parseAddress(req.Token)
	if err != nil {
		writeError(w, 400, "invalid token address")
		return
	}
	recipient, err := parseAddress(req.Recipient)
	if err != nil {
		writeError(w, 400, "invalid recipient address")
		return
	}

	// 只认识协议自己的两个代币实例
	var foreign = s.proto.TokenUp
	switch tokenAddr {
	case s.proto.TokenUp.Address():
	case s.proto.TokenDown.Address():
		foreign = s.proto.TokenDown
	default:
		writeError(w, 404, "unknown token")
		return
	}

	if err := s.proto.Engine.RecoverERC20(caller, foreign, recipient); err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"recovered": tokenAddr.Hex()})
}
