package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
)

// AuthHandler 访客认证处理器
type AuthHandler struct {
	tokens *auth.Manager
}

// GuestRequest 访客登录请求
type GuestRequest struct {
	Name string `json:"name"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/guest", h.handleGuest)
	mux.HandleFunc("/auth/validate", h.handleValidate)
}

// handleGuest 签发访客令牌
func (h *AuthHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req GuestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendResponse(w, http.StatusBadRequest, AuthResponse{Message: "无效的请求数据"})
			return
		}
	}

	token, claims, err := h.tokens.IssueGuest(req.Name)
	if err != nil {
		log.Printf("签发访客令牌失败: %v", err)
		h.sendResponse(w, http.StatusInternalServerError, AuthResponse{Message: "服务器内部错误"})
		return
	}

	log.Printf("访客登录: %s(%s)", claims.Name, claims.PlayerID)
	h.sendResponse(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "登录成功",
		Token:     token,
		PlayerID:  claims.PlayerID,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// handleValidate 验证令牌
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	claims, err := h.tokens.ParseSession(requestToken(r))
	if err != nil {
		h.sendResponse(w, http.StatusUnauthorized, AuthResponse{Message: "令牌无效或已过期"})
		return
	}

	h.sendResponse(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "令牌有效",
		PlayerID:  claims.PlayerID,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func (h *AuthHandler) sendResponse(w http.ResponseWriter, status int, resp AuthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// requestToken 从 Authorization 头或 token 查询参数读取令牌
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
