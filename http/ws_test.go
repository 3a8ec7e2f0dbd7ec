package http

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couponcast/app"
	"couponcast/ml"
	"couponcast/present"
)

func dialLive(t *testing.T, application *app.Application) *websocket.Conn {
	t.Helper()
	ts := newTestServer(t, application)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/predict", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func liveApp(t *testing.T) *app.Application {
	return &app.Application{Logger: zap.NewNop(), Invoker: ml.NewInvoker(familyModel(t))}
}

func TestLivePredictionUsesDefaults(t *testing.T) {
	conn := dialLive(t, liveApp(t))

	require.NoError(t, conn.WriteJSON(LiveRequest{Fields: map[string]string{}}))
	var reply LiveReply
	require.NoError(t, conn.ReadJSON(&reply))
	require.True(t, reply.OK, reply.Error)
	require.NotNil(t, reply.Result)
	assert.Equal(t, 0, reply.Result.Prediction)
	require.NotNil(t, reply.Message)
	assert.Equal(t, present.HeadlineNoRedeem, reply.Message.Headline)
	assert.Len(t, reply.Message.Advice, 5)
	assert.Contains(t, reply.HTML, "no-redeem")

	require.NoError(t, conn.WriteJSON(LiveRequest{Fields: map[string]string{"family_size": "6"}}))
	reply = LiveReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	require.True(t, reply.OK, reply.Error)
	assert.Equal(t, 1, reply.Result.Prediction)
	assert.Equal(t, present.HeadlineRedeem, reply.Message.Headline)
	assert.Equal(t, "92.41%", reply.Message.ProbabilityText)
}

func TestLivePredictionErrors(t *testing.T) {
	conn := dialLive(t, liveApp(t))

	require.NoError(t, conn.WriteJSON(LiveRequest{Fields: map[string]string{"family_size": "99"}}))
	var reply LiveReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.OK)
	assert.Contains(t, reply.Error, "family_size")
	assert.Nil(t, reply.Result)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	reply = LiveReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.OK)
	assert.True(t, strings.HasPrefix(reply.Error, "invalid message"), reply.Error)

	// the connection survives bad messages
	require.NoError(t, conn.WriteJSON(LiveRequest{Fields: map[string]string{"campaign_type": "Y"}}))
	reply = LiveReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.True(t, reply.OK, reply.Error)
}
