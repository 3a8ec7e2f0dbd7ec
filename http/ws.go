package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"couponcast/app"
	"couponcast/features"
	"couponcast/present"
)

const liveWriteWait = 10 * time.Second

// LiveRequest is one message from the page: the current control values.
type LiveRequest struct {
	Fields map[string]string `json:"fields"`
}

// LiveReply answers a LiveRequest.
type LiveReply struct {
	OK      bool              `json:"ok"`
	Result  *present.Response `json:"result,omitempty"`
	Message *present.Message  `json:"message,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// handleLive answers each control change on the page. Fields the page does
// not send take their defaults, as in the dashboard.
func (h *handlers) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if h.maxBytes > 0 {
		conn.SetReadLimit(h.maxBytes)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req LiveRequest
		reply := LiveReply{}
		if err := json.Unmarshal(data, &req); err != nil {
			reply.Error = "invalid message: " + err.Error()
		} else {
			reply = h.live(r, req)
		}

		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("websocket write", zap.Error(err))
			return
		}
	}
}

func (h *handlers) live(r *http.Request, req LiveRequest) LiveReply {
	values, err := features.FromSettings(req.Fields)
	if err != nil {
		return h.liveError(r, err)
	}
	row, err := features.Build(values, features.Defaults())
	if err != nil {
		return h.liveError(r, err)
	}
	inf, err := h.app.Predict(r.Context(), app.SourceLive, row)
	if err != nil {
		return h.liveError(r, err)
	}
	result := present.NewResponse(inf)
	msg := present.Render(inf, row)
	return LiveReply{OK: true, Result: &result, Message: &msg, HTML: msg.HTML()}
}

func (h *handlers) liveError(r *http.Request, err error) LiveReply {
	if clientError(err) {
		return LiveReply{Error: err.Error()}
	}
	h.logger.Error("live prediction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err))
	return LiveReply{Error: "internal server error"}
}
