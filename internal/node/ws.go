package node

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// DialAndWaitForTx subscribes to Tx events for hash and blocks until the tx
// is committed or ctx ends.
func DialAndWaitForTx(ctx context.Context, wsURL, hash string) (TxResult, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return TxResult{}, err
	}
	if u.Path == "" {
		u.Path = "/websocket"
	}
	hash = strings.ToUpper(strings.TrimPrefix(hash, "0x"))

	d := websocket.Dialer{
		Subprotocols:     []string{"jsonrpc"},
		HandshakeTimeout: 5 * time.Second,
	}
	// nolint:bodyclose
	conn, _, err := d.DialContext(ctx, u.String(), map[string][]string{"Origin": {"http://localhost"}})
	if err != nil {
		return TxResult{}, err
	}
	defer func() {
		deadline := time.Now().Add(1500 * time.Millisecond)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
	}()

	sub := map[string]any{
		"jsonrpc": "2.0",
		"method":  "subscribe",
		"params":  map[string]string{"query": fmt.Sprintf("tm.event='Tx' AND tx.hash='%s'", hash)},
		"id":      1,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return TxResult{}, err
	}

	type readResult struct {
		res TxResult
		err error
	}
	done := make(chan readResult, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				done <- readResult{err: err}
				return
			}
			if res, ok, err := parseTxEvent(msg); err != nil || ok {
				res.Hash = hash
				done <- readResult{res: res, err: err}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		// unblock the reader
		_ = conn.SetReadDeadline(time.Now())
		return TxResult{}, ctx.Err()
	case r := <-done:
		return r.res, r.err
	}
}

// parseTxEvent reports ok for a Tx event frame and returns an error for a
// JSON-RPC error frame. Subscription acks are skipped.
func parseTxEvent(b []byte) (TxResult, bool, error) {
	var payload struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    string `json:"data"`
		} `json:"error"`
		Result struct {
			Data struct {
				Value struct {
					TxResult struct {
						Height string `json:"height"`
						Result struct {
							Code uint32 `json:"code"`
							Log  string `json:"log"`
						} `json:"result"`
					} `json:"TxResult"`
				} `json:"value"`
			} `json:"data"`
		} `json:"result"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return TxResult{}, false, nil
	}
	if payload.Error != nil {
		return TxResult{}, false, fmt.Errorf("subscribe: %s %s", payload.Error.Message, payload.Error.Data)
	}
	tr := payload.Result.Data.Value.TxResult
	if tr.Height == "" {
		return TxResult{}, false, nil
	}
	h, err := strconv.ParseInt(tr.Height, 10, 64)
	if err != nil {
		return TxResult{}, false, nil
	}
	return TxResult{Height: h, Code: tr.Result.Code, Log: tr.Result.Log}, true, nil
}
