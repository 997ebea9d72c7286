package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"memeindex-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Inviter sends invitation messages on behalf of the trigger endpoint.
type Inviter interface {
	BotUsername() string
	SendInvitation(chat telegram.ChatRef, code string) (tgbotapi.Message, error)
}

type TriggerHandler struct {
	Bot    Inviter
	Logger *logrus.Entry
}

func NewTriggerHandler(bot Inviter, logger *logrus.Entry) *TriggerHandler {
	return &TriggerHandler{Bot: bot, Logger: logger}
}

var errInvalidChatID = errors.New("chatId must be a numeric id or an @channel username")

// SendTemplate pushes the invitation message for referralCode to chatId.
func (h *TriggerHandler) SendTemplate(c *gin.Context) {
	payload, err := decodeBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return
	}

	if code, ok := payload["referralCode"].(string); ok {
		payload["referralCode"] = strings.TrimSpace(code)
	}
	chatID := payload["chatId"]
	referralCode := payload["referralCode"]
	received := echoFields(payload, "chatId", "referralCode")

	if !present(chatID) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing chatId", "received": received})
		return
	}
	if !present(referralCode) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing referralCode", "received": received})
		return
	}

	botUsername := h.Bot.BotUsername()
	if botUsername == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Bot username not configured", "botUsername": nil})
		return
	}

	chat, err := parseChat(chatID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	code, err := parseCode(referralCode)
	if err != nil {
		h.serverError(c, err)
		return
	}

	sent, err := h.Bot.SendInvitation(chat, code)
	if err != nil {
		h.Logger.WithError(err).WithField("chat", chat.String()).Error("failed to send invitation")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send message",
			"details": telegram.DescribeError(err),
			"params":  gin.H{"chatId": chatID, "botUsername": botUsername},
		})
		return
	}

	var sentChat any = chatID
	if sent.Chat != nil {
		sentChat = sent.Chat.ID
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"messageId":      sent.MessageID,
		"chatId":         sentChat,
		"canBeForwarded": true,
	})
}

func (h *TriggerHandler) serverError(c *gin.Context, err error) {
	h.Logger.WithError(err).Error("send-template failed")
	c.JSON(http.StatusInternalServerError, ServerErrorBody(err.Error(), fmt.Sprintf("%T", err)))
}

// ServerErrorBody is the JSON returned for unexpected internal failures.
func ServerErrorBody(message, typ string) gin.H {
	return gin.H{
		"success": false,
		"error":   "Server error",
		"details": gin.H{"message": message, "type": typ},
	}
}

// decodeBody reads an optional JSON object, keeping numbers exact.
func decodeBody(c *gin.Context) (map[string]any, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// echoFields copies the named keys that appear in payload. Absent keys are
// left out rather than echoed as null.
func echoFields(payload map[string]any, keys ...string) gin.H {
	out := gin.H{}
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			out[k] = v
		}
	}
	return out
}

// present follows the loose notion of "provided" used by the backend
// callers: null, false, 0 and "" all count as missing.
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func parseChat(v any) (telegram.ChatRef, error) {
	switch val := v.(type) {
	case json.Number:
		id, err := val.Int64()
		if err != nil {
			return telegram.ChatRef{}, fmt.Errorf("%w: %s", errInvalidChatID, val)
		}
		return telegram.ChatByID(id), nil
	case string:
		s := strings.TrimSpace(val)
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return telegram.ChatByID(id), nil
		}
		if strings.HasPrefix(s, "@") && len(s) > 1 {
			return telegram.ChatRef{Username: s}, nil
		}
		return telegram.ChatRef{}, fmt.Errorf("%w: %q", errInvalidChatID, val)
	default:
		return telegram.ChatRef{}, fmt.Errorf("%w: got %T", errInvalidChatID, v)
	}
}

func parseCode(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	default:
		return "", fmt.Errorf("referralCode must be a string, got %T", v)
	}
}
