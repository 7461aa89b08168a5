// Command scriptsrv exposes script verification as an HTTP service,
// in the same gin-router shape richochetclementine1315-BTC-Lens's
// cmd/web server uses for its own JSON analysis endpoint.
package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bitcoinecho/script/internal/config"
	"github.com/bitcoinecho/script/pkg/bitcoin"
	"github.com/bitcoinecho/script/pkg/script"
)

type verifyRequest struct {
	ScriptSig    string `json:"script_sig"`
	ScriptPubKey string `json:"script_pubkey"`
	Preset       string `json:"preset"`
}

type verifyResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8533"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	bitcoin.SetLogger(logger.Sugar())

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/verify", handleVerify)

	fmt.Printf("http://127.0.0.1:%s\n", port)
	if err := r.Run(":" + port); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, verifyResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	scriptSig, err := hex.DecodeString(req.ScriptSig)
	if err != nil {
		c.JSON(http.StatusBadRequest, verifyResponse{Error: "invalid script_sig hex"})
		return
	}
	scriptPubKey, err := hex.DecodeString(req.ScriptPubKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, verifyResponse{Error: "invalid script_pubkey hex"})
		return
	}

	preset := req.Preset
	if preset == "" {
		preset = config.PresetStandard
	}
	v := viper.New()
	v.Set("preset", preset)
	cfg, err := config.Load(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, verifyResponse{Error: err.Error()})
		return
	}

	ctx := &script.Context{Flags: cfg.Flags, Hash: bitcoin.ScriptHasher{}, Trace: bitcoin.ScriptTracer{}}
	if err := script.VerifyScripts(scriptSig, scriptPubKey, ctx); err != nil {
		c.JSON(http.StatusOK, verifyResponse{OK: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, verifyResponse{OK: true})
}
