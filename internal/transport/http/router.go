package http

import (
	"fmt"
	"net/http"

	"quizroom/internal/app"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
)

// NewRouter wires the HTTP surface: liveness, the websocket gateway, and
// a QR code for sharing a room's join link.
func NewRouter(service *app.GameService, wsHandler *WSHandler) *httprouter.Router {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	router.HandlerFunc(http.MethodGet, "/ws", wsHandler.ServeWS)

	router.GET("/rooms/:code/qr", func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		code := params.ByName("code")
		if _, ok := service.Snapshot(code); !ok {
			http.NotFound(w, r)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		joinURL := fmt.Sprintf("%s://%s/join/%s", scheme, r.Host, code)

		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render QR code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	return router
}
