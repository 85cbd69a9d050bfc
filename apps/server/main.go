package main

import (
	"log"
	"net/http"
	"os"

	"github.com/Grosth/BlackjackCS/apps/server/internal/auth"
	"github.com/Grosth/BlackjackCS/apps/server/internal/gateway"
	"github.com/Grosth/BlackjackCS/apps/server/internal/ledger"
	"github.com/Grosth/BlackjackCS/apps/server/internal/lobby"
)

func main() {
	authService, authMode, err := auth.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init auth manager: %v", err)
	}
	defer authService.Close()
	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv(authMode)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	lby := lobby.New(ledgerService)
	lby.StartReaper()
	defer lby.Stop()

	gw := gateway.New(lby, authService)
	authHTTP := auth.NewHTTPHandler(authService)
	ledgerHTTP := ledger.NewHTTPHandler(authService, ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHTTP.RegisterRoutes(mux)
	ledgerHTTP.RegisterRoutes(mux)

	addr := ":" + port()
	log.Printf("[Server] Auth mode: %s", authMode)
	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] Starting WebSocket server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}
